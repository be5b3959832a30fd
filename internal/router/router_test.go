package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_StartsHome(t *testing.T) {
	assert.Equal(t, Home, New().Current())
}

func TestRouter_NavigateHasNoGuards(t *testing.T) {
	r := New()
	for _, p := range []Page{Checkout, Confirmation, Admin, Cart, Home} {
		r.Navigate(p)
		assert.Equal(t, p, r.Current())
	}
}

func TestParsePage(t *testing.T) {
	for _, p := range Pages {
		got, err := ParsePage(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePage("settings")
	assert.ErrorIs(t, err, ErrUnknownPage)
}
