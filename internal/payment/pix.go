package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kieracarman/bakery-storefront/internal/models"
)

// Default PIX receiver shown on the payment screen
const (
	DefaultPixKey         = "ge.bolos@email.com"
	DefaultPixBeneficiary = "Ge Bolos Gourmet"
)

// PixPayload is the static payment info displayed before a PIX order is
// confirmed. Nothing is sent to a bank; the customer pays out of band.
type PixPayload struct {
	Key         string          `json:"key"`
	Beneficiary string          `json:"beneficiary"`
	Amount      decimal.Decimal `json:"amount"`
}

// Label renders the amount the way the payment screen shows it
func (p PixPayload) Label() string {
	return fmt.Sprintf("R$ %s", p.Amount.StringFixed(2))
}

// PixIssuer builds PIX payloads for a fixed receiver
type PixIssuer struct {
	key         string
	beneficiary string
}

// NewPixIssuer creates an issuer; empty values fall back to the defaults
func NewPixIssuer(key, beneficiary string) *PixIssuer {
	if key == "" {
		key = DefaultPixKey
	}
	if beneficiary == "" {
		beneficiary = DefaultPixBeneficiary
	}
	return &PixIssuer{
		key:         key,
		beneficiary: beneficiary,
	}
}

// Issue returns the payload for an amount
func (i *PixIssuer) Issue(amount decimal.Decimal) PixPayload {
	return PixPayload{
		Key:         i.key,
		Beneficiary: i.beneficiary,
		Amount:      amount,
	}
}

// RequiresConfirmation reports whether the method needs a second step before
// the order is created. Card and cash are placed straight away.
func RequiresConfirmation(method models.PaymentMethod) bool {
	return method == models.PaymentPix
}
