package orders

import (
	"fmt"
	"sync"
	"time"

	"github.com/kieracarman/bakery-storefront/internal/cart"
	"github.com/kieracarman/bakery-storefront/internal/ids"
	"github.com/kieracarman/bakery-storefront/internal/models"
)

// Listener receives the full order history after every change
type Listener func(orders []models.Order)

// Column is one lane of the admin board
type Column struct {
	Status models.OrderStatus `json:"status"`
	Orders []models.Order     `json:"orders"`
}

// Store holds placed orders, newest first. Orders are never deleted.
type Store struct {
	mu        sync.RWMutex
	orders    []models.Order
	listeners []Listener
	policy    Policy
	now       func() time.Time
	newID     func() string
}

// NewStore creates an order store with the given history and transition policy
func NewStore(initial []models.Order, policy Policy) *Store {
	orders := make([]models.Order, len(initial))
	for i, o := range initial {
		orders[i] = models.CloneOrder(o)
	}

	return &Store{
		orders: orders,
		policy: policy,
		now:    time.Now,
		newID:  ids.New,
	}
}

// Policy returns the transition policy the store enforces
func (s *Store) Policy() Policy {
	return s.policy
}

// Subscribe registers a listener for order changes
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Place creates a pending order from a snapshot of the cart. The total is
// computed here once and never recomputed. An empty cart is not rejected.
func (s *Store) Place(items []models.CartItem, customer models.CustomerInfo, method models.PaymentMethod) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := models.CloneItems(items)
	if snapshot == nil {
		snapshot = []models.CartItem{}
	}

	order := models.Order{
		ID:            s.newID(),
		Items:         snapshot,
		Total:         cart.Total(snapshot),
		Customer:      customer,
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
		PaymentMethod: method,
	}

	// newest first
	s.orders = append([]models.Order{order}, s.orders...)
	s.notify()

	return models.CloneOrder(order)
}

// UpdateStatus moves the order to a new status if the policy allows it.
// The bool result is false when no order has that id; that case is a no-op.
func (s *Store) UpdateStatus(id string, status models.OrderStatus) (models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Order{}, false, nil
	}
	return s.setStatus(i, status)
}

// Advance moves the order one step forward in the pipeline
func (s *Store) Advance(id string) (models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Order{}, false, nil
	}

	current := s.orders[i].Status
	next, ok := current.Next()
	if !ok {
		return models.CloneOrder(s.orders[i]), true, fmt.Errorf("%w: %s is the last status", ErrIllegalTransition, current)
	}
	return s.setStatus(i, next)
}

// setStatus must be called with s.mu held
func (s *Store) setStatus(i int, status models.OrderStatus) (models.Order, bool, error) {
	if err := s.policy.Check(s.orders[i].Status, status); err != nil {
		return models.CloneOrder(s.orders[i]), true, err
	}

	s.orders[i].Status = status
	s.notify()

	return models.CloneOrder(s.orders[i]), true, nil
}

// Get looks up an order by id
func (s *Store) Get(id string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Order{}, false
	}
	return models.CloneOrder(s.orders[i]), true
}

// List returns every order, newest first
func (s *Store) List() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Board groups orders by status in pipeline order. Within a column orders
// keep their newest-first position.
func (s *Store) Board() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board := make([]Column, len(models.Pipeline))
	for i, status := range models.Pipeline {
		board[i] = Column{Status: status, Orders: []models.Order{}}
	}
	for _, o := range s.orders {
		for i := range board {
			if board[i].Status == o.Status {
				board[i].Orders = append(board[i].Orders, models.CloneOrder(o))
				break
			}
		}
	}
	return board
}

func (s *Store) indexOf(id string) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []models.Order {
	out := make([]models.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = models.CloneOrder(o)
	}
	return out
}

// notify must be called with s.mu held
func (s *Store) notify() {
	if len(s.listeners) == 0 {
		return
	}
	snap := s.snapshot()
	for _, fn := range s.listeners {
		fn(snap)
	}
}
