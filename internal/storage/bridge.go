package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kieracarman/bakery-storefront/internal/cart"
	"github.com/kieracarman/bakery-storefront/internal/catalog"
	"github.com/kieracarman/bakery-storefront/internal/models"
	"github.com/kieracarman/bakery-storefront/internal/orders"
)

// Slot keys. There is no schema version; a slot that fails validation is
// replaced by its default on the next write.
const (
	CartKey     = "bakery-cart"
	OrdersKey   = "bakery-orders"
	ProductsKey = "bakery-products"
)

// State is everything restored at startup
type State struct {
	Products []models.Product
	Cart     []models.CartItem
	Orders   []models.Order
}

// Bridge serializes whole collections into KV slots and reads them back
type Bridge struct {
	kv           KV
	logger       *slog.Logger
	writeTimeout time.Duration
}

// NewBridge creates a bridge over kv
func NewBridge(kv KV, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		kv:           kv,
		logger:       logger,
		writeTimeout: 5 * time.Second,
	}
}

// Load restores the three collections. Absent slots fall back to defaults
// (seed catalog, empty cart, no orders). A slot that is present but malformed
// also falls back to its default and logs a warning. Only backend failures
// are returned as errors.
func (b *Bridge) Load(ctx context.Context) (State, error) {
	products, err := loadSlot(ctx, b, ProductsKey, productsLoader, catalog.Seed(), checkProducts)
	if err != nil {
		return State{}, err
	}
	items, err := loadSlot(ctx, b, CartKey, cartLoader, []models.CartItem{}, checkCart)
	if err != nil {
		return State{}, err
	}
	history, err := loadSlot(ctx, b, OrdersKey, ordersLoader, []models.Order{}, checkOrders)
	if err != nil {
		return State{}, err
	}

	return State{
		Products: products,
		Cart:     items,
		Orders:   history,
	}, nil
}

// SaveCatalog writes the full product list
func (b *Bridge) SaveCatalog(ctx context.Context, products []models.Product) error {
	return b.save(ctx, ProductsKey, products)
}

// SaveCart writes the full cart
func (b *Bridge) SaveCart(ctx context.Context, items []models.CartItem) error {
	return b.save(ctx, CartKey, items)
}

// SaveOrders writes the full order history
func (b *Bridge) SaveOrders(ctx context.Context, history []models.Order) error {
	return b.save(ctx, OrdersKey, history)
}

// Attach subscribes the bridge to the stores so every mutation is written
// through. Write failures are logged; the in-memory state stays authoritative.
func (b *Bridge) Attach(c *catalog.Store, ct *cart.Store, o *orders.Store) {
	c.Subscribe(func(products []models.Product) {
		b.writeThrough(ProductsKey, func(ctx context.Context) error { return b.SaveCatalog(ctx, products) })
	})
	ct.Subscribe(func(items []models.CartItem) {
		b.writeThrough(CartKey, func(ctx context.Context) error { return b.SaveCart(ctx, items) })
	})
	o.Subscribe(func(history []models.Order) {
		b.writeThrough(OrdersKey, func(ctx context.Context) error { return b.SaveOrders(ctx, history) })
	})
}

func (b *Bridge) writeThrough(key string, write func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()

	if err := write(ctx); err != nil {
		b.logger.Warn("failed to persist snapshot", "key", key, "error", err)
	}
}

func (b *Bridge) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func loadSlot[T any](ctx context.Context, b *Bridge, key string, schema gojsonschema.JSONLoader, fallback T, check func(T) error) (T, error) {
	data, ok, err := b.kv.Get(ctx, key)
	if err != nil {
		return fallback, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}

	if err := validateShape(schema, data); err != nil {
		b.logger.Warn("persisted snapshot is malformed, using defaults", "key", key, "error", err)
		return fallback, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		b.logger.Warn("persisted snapshot could not be decoded, using defaults", "key", key, "error", err)
		return fallback, nil
	}
	if err := check(v); err != nil {
		b.logger.Warn("persisted snapshot breaks an invariant, using defaults", "key", key, "error", err)
		return fallback, nil
	}
	return v, nil
}

func checkProducts(products []models.Product) error {
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if seen[p.ID] {
			return fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

func checkCart(items []models.CartItem) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return fmt.Errorf("duplicate cart item %q", item.ID)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("cart item %q has quantity %d", item.ID, item.Quantity)
		}
		seen[item.ID] = true
	}
	return nil
}

func checkOrders(history []models.Order) error {
	seen := make(map[string]bool, len(history))
	for _, o := range history {
		if seen[o.ID] {
			return fmt.Errorf("duplicate order id %q", o.ID)
		}
		if !o.Status.Valid() {
			return fmt.Errorf("order %q has unknown status %q", o.ID, o.Status)
		}
		if o.CreatedAt.IsZero() {
			return fmt.Errorf("order %q has no creation time", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}
