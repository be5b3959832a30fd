package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kieracarman/bakery-storefront/internal/models"
)

// Listener receives a full cart snapshot after every change
type Listener func(items []models.CartItem)

// Store holds the customer's selected items. There is at most one item per
// product id and every quantity is at least 1.
type Store struct {
	mu        sync.RWMutex
	items     []models.CartItem
	listeners []Listener
}

// NewStore creates a cart store with the given initial items
func NewStore(initial []models.CartItem) *Store {
	return &Store{items: models.CloneItems(initial)}
}

// Subscribe registers a listener for cart changes
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Add puts one unit of the product in the cart. If the product is already
// there its quantity goes up by one, otherwise it is appended.
func (s *Store) Add(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, models.CartItem{Product: p, Quantity: 1})
	}
	s.notify()
}

// UpdateQuantity sets the quantity of an item. Any quantity below 1 removes
// the item. Unknown ids are ignored.
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.Remove(id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items[i].Quantity = quantity
	s.notify()
}

// Remove deletes the item with the given id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.notify()
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.notify()
}

// Items returns a snapshot of the cart contents
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Total is the sum of price × quantity over the current items
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Total(s.items)
}

// ItemCount is the sum of quantities over the current items
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Total sums price × quantity over a slice of cart items
func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
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
