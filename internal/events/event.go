// Package events announces order lifecycle changes to other processes,
// such as the kitchen display.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kieracarman/bakery-storefront/internal/models"
)

// Event types
const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

// Event describes something that happened to an order
type Event struct {
	Type          string               `json:"type"`
	OrderID       string               `json:"orderId"`
	Status        models.OrderStatus   `json:"status"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Customer      string               `json:"customer"`
	ItemCount     int                  `json:"itemCount"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// FromOrder builds an event of the given type for o
func FromOrder(eventType string, o models.Order, at time.Time) Event {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return Event{
		Type:          eventType,
		OrderID:       o.ID,
		Status:        o.Status,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		Customer:      o.Customer.Name,
		ItemCount:     count,
		OccurredAt:    at,
	}
}

// RoutingKey is order.placed for new orders and order.status.<status> for
// status changes, so consumers can bind to a single lane.
func (e Event) RoutingKey() string {
	if e.Type == OrderStatusChanged {
		return "order.status." + string(e.Status)
	}
	return e.Type
}

// Publisher sends order events
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber delivers order events matching a binding key to handler
type Subscriber interface {
	Subscribe(ctx context.Context, bindingKey string, handler func(Event) error) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, Event) error { return nil }
