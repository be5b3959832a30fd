package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kieracarman/bakery-storefront/internal/events"
	"github.com/kieracarman/bakery-storefront/internal/models"
	"github.com/kieracarman/bakery-storefront/internal/orders"
	"github.com/kieracarman/bakery-storefront/internal/payment"
	"github.com/kieracarman/bakery-storefront/internal/router"
)

var customer = models.CustomerInfo{
	Name:    "Maria Souza",
	Email:   "maria@example.com",
	Phone:   "11 99999-0000",
	Address: "Rua das Flores, 10",
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestStorefront(t *testing.T) (*Storefront, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return New(Options{Events: pub}), pub
}

func TestAddToCart(t *testing.T) {
	s, _ := newTestStorefront(t)

	_, err := s.AddToCart("1")
	require.NoError(t, err)
	view, err := s.AddToCart("1")
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 2, view.ItemCount)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("91.80")))
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	s, _ := newTestStorefront(t)

	_, err := s.AddToCart("nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, s.Cart().Items)
}

func TestUpdateCartQuantity(t *testing.T) {
	s, _ := newTestStorefront(t)
	_, err := s.AddToCart("3")
	require.NoError(t, err)

	view := s.UpdateCartQuantity("3", 4)
	assert.Equal(t, 4, view.ItemCount)

	view = s.UpdateCartQuantity("3", -3)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestRemoveFromCart(t *testing.T) {
	s, _ := newTestStorefront(t)
	_, _ = s.AddToCart("1")
	_, _ = s.AddToCart("2")

	view := s.RemoveFromCart("1")
	require.Len(t, view.Items, 1)
	assert.Equal(t, "2", view.Items[0].ID)
}

func TestCheckout_CardPlacesOrder(t *testing.T) {
	s, pub := newTestStorefront(t)
	_, _ = s.AddToCart("1")
	_, _ = s.AddToCart("3")
	s.Navigate(router.Checkout)

	res, err := s.Checkout(context.Background(), customer, models.PaymentCard)
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Nil(t, res.Pix)

	assert.True(t, res.Order.Total.Equal(decimal.RequireFromString("74.80")))
	assert.Equal(t, models.StatusPending, res.Order.Status)
	assert.Empty(t, s.Cart().Items)
	assert.Equal(t, router.Confirmation, s.Page())
	assert.Len(t, s.Orders(), 1)
	assert.Equal(t, []string{events.OrderPlaced}, pub.types())
}

func TestCheckout_UnknownMethod(t *testing.T) {
	s, _ := newTestStorefront(t)
	_, _ = s.AddToCart("1")

	_, err := s.Checkout(context.Background(), customer, models.PaymentMethod("boleto"))
	assert.Error(t, err)
	assert.Empty(t, s.Orders())
	assert.Len(t, s.Cart().Items, 1)
}

func TestCheckout_PixWaitsForConfirmation(t *testing.T) {
	s, pub := newTestStorefront(t)
	_, _ = s.AddToCart("1")
	_, _ = s.AddToCart("3")
	s.Navigate(router.Checkout)

	res, err := s.Checkout(context.Background(), customer, models.PaymentPix)
	require.NoError(t, err)
	require.NotNil(t, res.Pix)
	assert.Nil(t, res.Order)
	assert.Equal(t, payment.DefaultPixKey, res.Pix.Key)
	assert.Equal(t, payment.DefaultPixBeneficiary, res.Pix.Beneficiary)
	assert.True(t, res.Pix.Amount.Equal(decimal.RequireFromString("74.80")))

	assert.Empty(t, s.Orders())
	assert.Len(t, s.Cart().Items, 2)
	assert.Equal(t, router.Checkout, s.Page())
	assert.Empty(t, pub.types())

	pending, ok := s.PendingPix()
	require.True(t, ok)
	assert.Equal(t, "R$ 74.80", pending.Label())

	o, err := s.ConfirmPix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPix, o.PaymentMethod)
	assert.Equal(t, customer, o.Customer)
	assert.Empty(t, s.Cart().Items)
	assert.Equal(t, router.Confirmation, s.Page())

	_, ok = s.PendingPix()
	assert.False(t, ok)
}

func TestCancelPix_KeepsCart(t *testing.T) {
	s, _ := newTestStorefront(t)
	_, _ = s.AddToCart("2")

	_, err := s.Checkout(context.Background(), customer, models.PaymentPix)
	require.NoError(t, err)
	s.CancelPix()

	_, err = s.ConfirmPix(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingPix)
	assert.Len(t, s.Cart().Items, 1)
	assert.Empty(t, s.Orders())
}

func TestConfirmPix_WithoutCheckout(t *testing.T) {
	s, _ := newTestStorefront(t)

	_, err := s.ConfirmPix(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingPix)
}

func TestPlaceOrder_ClearsCart(t *testing.T) {
	s, _ := newTestStorefront(t)
	_, _ = s.AddToCart("5")
	_, _ = s.AddToCart("5")

	o := s.PlaceOrder(context.Background(), customer, models.PaymentCash)

	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("31.80")))
	assert.Empty(t, s.Cart().Items)
}

func TestAdvanceOrder(t *testing.T) {
	s, pub := newTestStorefront(t)
	_, _ = s.AddToCart("1")
	o := s.PlaceOrder(context.Background(), customer, models.PaymentCard)

	got, err := s.AdvanceOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, []string{events.OrderPlaced, events.OrderStatusChanged}, pub.types())

	board := s.Board()
	require.Len(t, board, len(models.Pipeline))
	assert.Equal(t, models.StatusAccepted, board[1].Status)
	assert.Len(t, board[1].Orders, 1)
}

func TestUpdateOrderStatus_Strict(t *testing.T) {
	s, pub := newTestStorefront(t)
	o := s.PlaceOrder(context.Background(), customer, models.PaymentCard)

	_, err := s.UpdateOrderStatus(context.Background(), o.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, orders.ErrIllegalTransition)
	assert.Equal(t, models.StatusPending, s.Orders()[0].Status)
	assert.Equal(t, []string{events.OrderPlaced}, pub.types())
}

func TestUpdateOrderStatus_Permissive(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(Options{Orders: orders.NewStore(nil, orders.Permissive), Events: pub})
	o := s.PlaceOrder(context.Background(), customer, models.PaymentCard)

	got, err := s.UpdateOrderStatus(context.Background(), o.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	s, pub := newTestStorefront(t)

	_, err := s.UpdateOrderStatus(context.Background(), "missing", models.StatusAccepted)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = s.AdvanceOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, pub.types())
}

func TestPublishFailureDoesNotFailAction(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := New(Options{Events: pub})
	_, _ = s.AddToCart("1")

	res, err := s.Checkout(context.Background(), customer, models.PaymentCash)
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Len(t, s.Orders(), 1)
}

func TestCatalogAdmin(t *testing.T) {
	s, _ := newTestStorefront(t)
	before := len(s.Products())

	p := s.AddProduct(models.NewProduct{Name: "Pão de Queijo", Price: decimal.RequireFromString("12.50")})
	require.NotEmpty(t, p.ID)
	assert.Len(t, s.Products(), before+1)

	_, err := s.AddToCart(p.ID)
	require.NoError(t, err)

	assert.True(t, s.RemoveProduct(p.ID))
	assert.False(t, s.RemoveProduct(p.ID))
	assert.Len(t, s.Products(), before)
	// items already in the cart stay there
	assert.Len(t, s.Cart().Items, 1)
}

func TestNavigate(t *testing.T) {
	s, _ := newTestStorefront(t)
	assert.Equal(t, router.Home, s.Page())

	s.Navigate(router.Admin)
	assert.Equal(t, router.Admin, s.Page())
}

type stalledPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *stalledPublisher) Publish(ctx context.Context, _ events.Event) error {
	p.entered <- struct{}{}
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSlowPublisherDoesNotBlockOtherActions(t *testing.T) {
	pub := &stalledPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(Options{Events: pub})
	_, _ = s.AddToCart("1")

	placed := make(chan models.Order, 1)
	go func() {
		placed <- s.PlaceOrder(context.Background(), customer, models.PaymentCash)
	}()

	select {
	case <-pub.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("order event was never published")
	}

	actions := make(chan struct{})
	go func() {
		_, _ = s.AddToCart("2")
		_ = s.Orders()
		_ = s.Cart()
		close(actions)
	}()

	select {
	case <-actions:
	case <-time.After(2 * time.Second):
		t.Fatal("storefront actions blocked while an event was being published")
	}

	close(pub.release)
	o := <-placed
	assert.Equal(t, models.PaymentCash, o.PaymentMethod)
	assert.Len(t, s.Cart().Items, 1)
}

func TestPublishIsBounded(t *testing.T) {
	pub := &stalledPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(Options{Events: pub})
	s.publishTimeout = 20 * time.Millisecond

	done := make(chan struct{})
	go func() {
		s.PlaceOrder(context.Background(), customer, models.PaymentCard)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not give up after its timeout")
	}
	assert.Len(t, s.Orders(), 1)
}
