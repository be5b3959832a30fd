package orders

import (
	"errors"
	"fmt"

	"github.com/kieracarman/bakery-storefront/internal/models"
)

var (
	// ErrIllegalTransition is returned when a status change skips or reverses the pipeline
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrUnknownStatus is returned for status values outside the pipeline
	ErrUnknownStatus = errors.New("unknown order status")
)

// Policy decides which status changes the store accepts
type Policy int

const (
	// Strict only allows moving to the next status in the pipeline
	Strict Policy = iota
	// Permissive allows jumping to any pipeline status
	Permissive
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Permissive:
		return "permissive"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a config value into a Policy
func ParsePolicy(raw string) (Policy, error) {
	switch raw {
	case "", "strict":
		return Strict, nil
	case "permissive":
		return Permissive, nil
	default:
		return Strict, fmt.Errorf("unknown transition policy %q", raw)
	}
}

// transitions is the forward-only table: current -> allowed next
var transitions = map[models.OrderStatus]models.OrderStatus{
	models.StatusPending:   models.StatusAccepted,
	models.StatusAccepted:  models.StatusPreparing,
	models.StatusPreparing: models.StatusDelivery,
	models.StatusDelivery:  models.StatusCompleted,
}

// Check returns nil when the policy allows moving from one status to another
func (p Policy) Check(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if p == Permissive {
		return nil
	}
	if next, ok := transitions[from]; ok && next == to {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
