package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Prices and totals travel as plain JSON numbers, the layout stored
// snapshots have always used
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents an item in the bakery catalog
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// NewProduct is a product that has not been given an id yet
type NewProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// CartItem is a product plus how many of it the customer wants.
// Its ID mirrors the product ID.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price × quantity for the line
func (c CartItem) Subtotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CustomerInfo holds the delivery details captured at checkout
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderStatus is a step in the order pipeline
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivery  OrderStatus = "delivery"
	StatusCompleted OrderStatus = "completed"
)

// Pipeline lists every status in the order an order moves through them
var Pipeline = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusDelivery,
	StatusCompleted,
}

// Valid reports whether s is one of the pipeline statuses
func (s OrderStatus) Valid() bool {
	for _, p := range Pipeline {
		if s == p {
			return true
		}
	}
	return false
}

// Next returns the status that follows s. The second result is false for
// completed and for unknown statuses.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, p := range Pipeline {
		if s == p && i+1 < len(Pipeline) {
			return Pipeline[i+1], true
		}
	}
	return "", false
}

// ParseOrderStatus converts raw text into an OrderStatus
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
	PaymentPix  PaymentMethod = "pix"
)

// ParsePaymentMethod converts raw text into a PaymentMethod
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case PaymentCard, PaymentCash, PaymentPix:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", raw)
	}
}

// Order represents a placed customer order. Items and Total are fixed at
// creation time; only Status changes afterwards.
type Order struct {
	ID            string          `json:"id"`
	Items         []CartItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Customer      CustomerInfo    `json:"customer"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

// CloneItems returns a copy of a cart item slice
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

// CloneOrder returns a copy of an order that shares no slices with o
func CloneOrder(o Order) Order {
	o.Items = CloneItems(o.Items)
	return o
}
