package catalog

import (
	"sync"

	"github.com/kieracarman/bakery-storefront/internal/ids"
	"github.com/kieracarman/bakery-storefront/internal/models"
)

// Listener receives a full catalog snapshot after every change
type Listener func(products []models.Product)

// Store holds the purchasable products
type Store struct {
	mu        sync.RWMutex
	products  []models.Product
	listeners []Listener
	newID     func() string
}

// NewStore creates a catalog store seeded with the given products
func NewStore(initial []models.Product) *Store {
	products := make([]models.Product, len(initial))
	copy(products, initial)

	return &Store{
		products: products,
		newID:    ids.New,
	}
}

// Subscribe registers a listener for catalog changes
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Add gives the product a fresh id and appends it to the catalog.
// Name and price are not checked here.
func (s *Store) Add(p models.NewProduct) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := models.Product{
		ID:          s.newID(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
	}
	s.products = append(s.products, product)
	s.notify()

	return product
}

// Remove deletes the product with the given id. Unknown ids are ignored.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i:i], s.products[i+1:]...)
			s.notify()
			return true
		}
	}
	return false
}

// Get looks up a product by id
func (s *Store) Get(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// List returns a snapshot of the catalog in insertion order
func (s *Store) List() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of products
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) snapshot() []models.Product {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// notify must be called with s.mu held so writes reach listeners in mutation order
func (s *Store) notify() {
	if len(s.listeners) == 0 {
		return
	}
	snap := s.snapshot()
	for _, fn := range s.listeners {
		fn(snap)
	}
}
