package storefront

import (
	"context"

	"github.com/kieracarman/bakery-storefront/internal/events"
	"github.com/kieracarman/bakery-storefront/internal/models"
	"github.com/kieracarman/bakery-storefront/internal/payment"
	"github.com/kieracarman/bakery-storefront/internal/router"
)

// Checkout submits the checkout form. Card and cash orders are placed
// immediately and the storefront moves to the confirmation page. PIX only
// returns the payment payload; the order is created by ConfirmPix.
func (s *Storefront) Checkout(ctx context.Context, customer models.CustomerInfo, method models.PaymentMethod) (CheckoutResult, error) {
	if _, err := models.ParsePaymentMethod(string(method)); err != nil {
		return CheckoutResult{}, err
	}

	s.mu.Lock()
	if payment.RequiresConfirmation(method) {
		s.pending = &pendingPix{customer: customer, method: method}
		payload := s.pix.Issue(s.cart.Total())
		s.mu.Unlock()
		return CheckoutResult{Pix: &payload}, nil
	}
	o := s.placeOrder(customer, method)
	s.mu.Unlock()

	s.publish(ctx, events.FromOrder(events.OrderPlaced, o, o.CreatedAt))
	return CheckoutResult{Order: &o}, nil
}

// PendingPix returns the payload of a PIX checkout awaiting confirmation.
// The amount follows the current cart.
func (s *Storefront) PendingPix() (payment.PixPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return payment.PixPayload{}, false
	}
	return s.pix.Issue(s.cart.Total()), true
}

// ConfirmPix places the order for a pending PIX checkout
func (s *Storefront) ConfirmPix(ctx context.Context) (models.Order, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return models.Order{}, ErrNoPendingPix
	}
	p := s.pending
	o := s.placeOrder(p.customer, p.method)
	s.mu.Unlock()

	s.publish(ctx, events.FromOrder(events.OrderPlaced, o, o.CreatedAt))
	return o, nil
}

// CancelPix goes back to the checkout form without placing an order.
// The cart is kept.
func (s *Storefront) CancelPix() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// PlaceOrder creates an order from the current cart straight away,
// regardless of payment method
func (s *Storefront) PlaceOrder(ctx context.Context, customer models.CustomerInfo, method models.PaymentMethod) models.Order {
	s.mu.Lock()
	o := s.placeOrder(customer, method)
	s.mu.Unlock()

	s.publish(ctx, events.FromOrder(events.OrderPlaced, o, o.CreatedAt))
	return o
}

// placeOrder must be called with s.mu held. The caller publishes the
// order.placed event once the lock is released.
func (s *Storefront) placeOrder(customer models.CustomerInfo, method models.PaymentMethod) models.Order {
	o := s.orders.Place(s.cart.Items(), customer, method)
	s.cart.Clear()
	s.pending = nil
	s.router.Navigate(router.Confirmation)

	s.logger.Info("order placed", "order", o.ID, "total", o.Total.StringFixed(2), "payment", o.PaymentMethod)
	return o
}
