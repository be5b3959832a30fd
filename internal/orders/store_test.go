package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kieracarman/bakery-storefront/internal/models"
)

var customer = models.CustomerInfo{
	Name:    "Maria Souza",
	Email:   "maria@example.com",
	Phone:   "11 99999-0000",
	Address: "Rua das Flores, 10",
}

func sampleItems() []models.CartItem {
	return []models.CartItem{
		{Product: models.Product{ID: "1", Name: "Bolo de Chocolate Gourmet", Price: decimal.RequireFromString("45.90")}, Quantity: 1},
		{Product: models.Product{ID: "3", Name: "Cupcakes Sortidos", Price: decimal.RequireFromString("28.90")}, Quantity: 1},
	}
}

func newTestStore(policy Policy) *Store {
	s := NewStore(nil, policy)
	fixed := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s
}

func TestStore_Place(t *testing.T) {
	s := newTestStore(Strict)

	o := s.Place(sampleItems(), customer, models.PaymentCard)

	require.NotEmpty(t, o.ID)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("74.80")), "total was %s", o.Total)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, models.PaymentCard, o.PaymentMethod)
	assert.Equal(t, customer, o.Customer)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC), o.CreatedAt)
}

func TestStore_PlaceSnapshotsItems(t *testing.T) {
	s := newTestStore(Strict)
	items := sampleItems()

	o := s.Place(items, customer, models.PaymentCash)
	items[0].Quantity = 10
	items[0].Price = decimal.NewFromInt(1)

	stored, ok := s.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, 1, stored.Items[0].Quantity)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("74.80")))
}

func TestStore_PlaceNewestFirst(t *testing.T) {
	s := NewStore(nil, Strict)

	first := s.Place(sampleItems(), customer, models.PaymentCard)
	second := s.Place(sampleItems(), customer, models.PaymentPix)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStore_PlaceEmptyCartIsAllowed(t *testing.T) {
	s := newTestStore(Strict)

	o := s.Place(nil, customer, models.PaymentCash)

	assert.True(t, o.Total.IsZero())
	assert.NotNil(t, o.Items)
	assert.Empty(t, o.Items)
}

func TestStore_UpdateStatusStrictFollowsPipeline(t *testing.T) {
	s := newTestStore(Strict)
	o := s.Place(sampleItems(), customer, models.PaymentCard)

	for _, next := range models.Pipeline[1:] {
		updated, found, err := s.UpdateStatus(o.ID, next)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, next, updated.Status)
	}
}

func TestStore_UpdateStatusStrictRejectsSkips(t *testing.T) {
	s := newTestStore(Strict)
	o := s.Place(sampleItems(), customer, models.PaymentCard)

	_, found, err := s.UpdateStatus(o.ID, models.StatusCompleted)

	assert.True(t, found)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	stored, _ := s.Get(o.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestStore_UpdateStatusStrictRejectsBackwards(t *testing.T) {
	s := newTestStore(Strict)
	o := s.Place(sampleItems(), customer, models.PaymentCard)
	_, _, err := s.UpdateStatus(o.ID, models.StatusAccepted)
	require.NoError(t, err)

	_, _, err = s.UpdateStatus(o.ID, models.StatusPending)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, _, err = s.UpdateStatus(o.ID, models.StatusAccepted)
	assert.ErrorIs(t, err, ErrIllegalTransition, "same status is not a forward step")
}

func TestStore_UpdateStatusPermissiveAllowsJumps(t *testing.T) {
	s := newTestStore(Permissive)
	o := s.Place(sampleItems(), customer, models.PaymentCard)
	require.Equal(t, models.StatusPending, o.Status)

	updated, found, err := s.UpdateStatus(o.ID, models.StatusCompleted)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestStore_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	for _, policy := range []Policy{Strict, Permissive} {
		s := newTestStore(policy)
		o := s.Place(sampleItems(), customer, models.PaymentCard)

		_, _, err := s.UpdateStatus(o.ID, models.OrderStatus("cancelled"))
		assert.ErrorIs(t, err, ErrUnknownStatus, policy.String())
	}
}

func TestStore_UpdateStatusUnknownIDIsNoop(t *testing.T) {
	s := newTestStore(Strict)
	s.Place(sampleItems(), customer, models.PaymentCard)
	calls := 0
	s.Subscribe(func([]models.Order) { calls++ })

	_, found, err := s.UpdateStatus("missing", models.StatusAccepted)

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, s.List(), 1)
	assert.Zero(t, calls)
}

func TestStore_Advance(t *testing.T) {
	s := newTestStore(Strict)
	o := s.Place(sampleItems(), customer, models.PaymentCash)

	for _, want := range models.Pipeline[1:] {
		updated, found, err := s.Advance(o.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, updated.Status)
	}

	_, found, err := s.Advance(o.ID)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, found, err = s.Advance("missing")
	assert.False(t, found)
	assert.NoError(t, err)
}

func TestStore_Board(t *testing.T) {
	s := newTestStore(Strict)
	a := s.Place(sampleItems(), customer, models.PaymentCard)
	b := s.Place(sampleItems(), customer, models.PaymentCash)
	c := s.Place(sampleItems(), customer, models.PaymentPix)
	_, _, err := s.Advance(b.ID)
	require.NoError(t, err)

	board := s.Board()

	require.Len(t, board, len(models.Pipeline))
	for i, col := range board {
		assert.Equal(t, models.Pipeline[i], col.Status)
	}
	require.Len(t, board[0].Orders, 2)
	assert.Equal(t, c.ID, board[0].Orders[0].ID)
	assert.Equal(t, a.ID, board[0].Orders[1].ID)
	require.Len(t, board[1].Orders, 1)
	assert.Equal(t, b.ID, board[1].Orders[0].ID)
	assert.Empty(t, board[4].Orders)
}

func TestStore_SubscribeSeesPlaceAndStatus(t *testing.T) {
	s := newTestStore(Strict)
	var snaps [][]models.Order
	s.Subscribe(func(os []models.Order) { snaps = append(snaps, os) })

	o := s.Place(sampleItems(), customer, models.PaymentCard)
	_, _, err := s.UpdateStatus(o.ID, models.StatusAccepted)
	require.NoError(t, err)
	_, _, err = s.UpdateStatus(o.ID, models.StatusCompleted)
	require.Error(t, err)

	require.Len(t, snaps, 2)
	assert.Equal(t, models.StatusPending, snaps[0][0].Status)
	assert.Equal(t, models.StatusAccepted, snaps[1][0].Status)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	p, err = ParsePolicy("permissive")
	require.NoError(t, err)
	assert.Equal(t, Permissive, p)

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}
