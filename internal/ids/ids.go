// Package ids generates identifiers for products and orders.
package ids

import "github.com/google/uuid"

// New returns a time-ordered unique id (UUIDv7). Ids created later sort after
// ids created earlier, which keeps order ids time-derived.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		// v7 only fails when the random source does; fall back to v4
		return uuid.NewString()
	}
	return id.String()
}
