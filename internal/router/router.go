package router

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownPage is returned when parsing a page name that does not exist
var ErrUnknownPage = errors.New("unknown page")

// Page selects which screen of the storefront is active
type Page string

const (
	Home         Page = "home"
	Cart         Page = "cart"
	Checkout     Page = "checkout"
	Confirmation Page = "confirmation"
	Admin        Page = "admin"
)

// Pages lists every page
var Pages = []Page{Home, Cart, Checkout, Confirmation, Admin}

// ParsePage converts a page name into a Page
func ParsePage(raw string) (Page, error) {
	for _, p := range Pages {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, raw)
}

// Router holds the current page. Navigation is a plain assignment with no
// guards; checkout is reachable with an empty cart.
type Router struct {
	mu      sync.RWMutex
	current Page
}

// New creates a router on the home page
func New() *Router {
	return &Router{current: Home}
}

// Navigate switches to page
func (r *Router) Navigate(page Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = page
}

// Current returns the active page
func (r *Router) Current() Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
