// Package storefront is the application state container. It owns the
// catalog, cart and order stores plus the current page, and runs every user
// action to completion before the next one starts.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kieracarman/bakery-storefront/internal/cart"
	"github.com/kieracarman/bakery-storefront/internal/catalog"
	"github.com/kieracarman/bakery-storefront/internal/events"
	"github.com/kieracarman/bakery-storefront/internal/models"
	"github.com/kieracarman/bakery-storefront/internal/orders"
	"github.com/kieracarman/bakery-storefront/internal/payment"
	"github.com/kieracarman/bakery-storefront/internal/router"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrNoPendingPix    = errors.New("no pix payment awaiting confirmation")
)

// Options wires the storefront's collaborators. Nil fields get defaults.
type Options struct {
	Catalog *catalog.Store
	Cart    *cart.Store
	Orders  *orders.Store
	Router  *router.Router
	Pix     *payment.PixIssuer
	Events  events.Publisher
	Logger  *slog.Logger
}

// Storefront serializes all actions behind one lock, so there is a single
// logical actor just like a browser tab
type Storefront struct {
	mu      sync.Mutex
	catalog *catalog.Store
	cart    *cart.Store
	orders  *orders.Store
	router  *router.Router
	pix     *payment.PixIssuer
	events  events.Publisher
	logger  *slog.Logger
	now     func() time.Time

	publishTimeout time.Duration

	pending *pendingPix
}

type pendingPix struct {
	customer models.CustomerInfo
	method   models.PaymentMethod
}

// CartView is the cart page's data
type CartView struct {
	Items     []models.CartItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"itemCount"`
}

// CheckoutResult holds either the placed order (card, cash) or the PIX
// payload waiting for confirmation
type CheckoutResult struct {
	Order *models.Order       `json:"order,omitempty"`
	Pix   *payment.PixPayload `json:"pix,omitempty"`
}

// New creates a storefront
func New(opts Options) *Storefront {
	if opts.Catalog == nil {
		opts.Catalog = catalog.NewStore(catalog.Seed())
	}
	if opts.Cart == nil {
		opts.Cart = cart.NewStore(nil)
	}
	if opts.Orders == nil {
		opts.Orders = orders.NewStore(nil, orders.Strict)
	}
	if opts.Router == nil {
		opts.Router = router.New()
	}
	if opts.Pix == nil {
		opts.Pix = payment.NewPixIssuer("", "")
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Storefront{
		catalog: opts.Catalog,
		cart:    opts.Cart,
		orders:  opts.Orders,
		router:  opts.Router,
		pix:     opts.Pix,
		events:  opts.Events,
		logger:  opts.Logger,
		now:     time.Now,

		publishTimeout: 5 * time.Second,
	}
}

// Products lists the catalog
func (s *Storefront) Products() []models.Product {
	return s.catalog.List()
}

// AddToCart adds one unit of a catalog product to the cart
func (s *Storefront) AddToCart(productID string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.Get(productID)
	if !ok {
		return CartView{}, ErrProductNotFound
	}
	s.cart.Add(p)
	return s.cartView(), nil
}

// UpdateCartQuantity sets an item's quantity; zero or less removes it
func (s *Storefront) UpdateCartQuantity(id string, quantity int) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.UpdateQuantity(id, quantity)
	return s.cartView()
}

// RemoveFromCart drops an item from the cart
func (s *Storefront) RemoveFromCart(id string) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(id)
	return s.cartView()
}

// Cart returns the cart contents and totals
func (s *Storefront) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

func (s *Storefront) cartView() CartView {
	items := s.cart.Items()
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return CartView{
		Items:     items,
		Total:     cart.Total(items),
		ItemCount: count,
	}
}

// Navigate switches the current page
func (s *Storefront) Navigate(page router.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router.Navigate(page)
}

// Page returns the current page
func (s *Storefront) Page() router.Page {
	return s.router.Current()
}

// AddProduct adds a product to the catalog
func (s *Storefront) AddProduct(p models.NewProduct) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Add(p)
}

// RemoveProduct removes a product from the catalog. Items already in the
// cart or in orders are left alone.
func (s *Storefront) RemoveProduct(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Remove(id)
}

// Orders lists every order, newest first
func (s *Storefront) Orders() []models.Order {
	return s.orders.List()
}

// Board groups orders into the admin board columns
func (s *Storefront) Board() []orders.Column {
	return s.orders.Board()
}

// UpdateOrderStatus sets an order's status under the store's transition policy
func (s *Storefront) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	o, found, err := s.orders.UpdateStatus(id, status)
	s.mu.Unlock()

	return s.afterStatusChange(ctx, o, found, err)
}

// AdvanceOrder moves an order to the next status in the pipeline
func (s *Storefront) AdvanceOrder(ctx context.Context, id string) (models.Order, error) {
	s.mu.Lock()
	o, found, err := s.orders.Advance(id)
	s.mu.Unlock()

	return s.afterStatusChange(ctx, o, found, err)
}

// afterStatusChange runs without s.mu held
func (s *Storefront) afterStatusChange(ctx context.Context, o models.Order, found bool, err error) (models.Order, error) {
	if !found {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return o, err
	}
	s.publish(ctx, events.FromOrder(events.OrderStatusChanged, o, s.now()))
	return o, nil
}

// publish must not be called with s.mu held, so a slow broker never blocks
// other shoppers' actions. Publishing is bounded by publishTimeout.
func (s *Storefront) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish order event", "type", e.Type, "order", e.OrderID, "error", err)
	}
}
