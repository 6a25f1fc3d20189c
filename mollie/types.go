package mollie

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type NewPayment struct {
	Amount      decimal.Decimal
	Description string
	RedirectUrl string
	WebhookUrl  string
	Metadata    map[string]string
}

type createPaymentRequest struct {
	Amount      PaymentAmount     `json:"amount"`
	Description string            `json:"description"`
	RedirectUrl string            `json:"redirectUrl"`
	WebhookUrl  string            `json:"webhookUrl"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Payment struct {
	Id          string            `json:"id"`
	Status      string            `json:"status"`
	Amount      PaymentAmount     `json:"amount"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	PaidAt      *time.Time        `json:"paidAt"`
	Links       PaymentLinks      `json:"_links"`
}

type PaymentLinks struct {
	Checkout *Link `json:"checkout"`
}

type Link struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

// CheckoutUrl returns the hosted payment page, empty when Mollie did not
// include one (already-terminal payments).
func (p *Payment) CheckoutUrl() string {
	if p.Links.Checkout == nil {
		return ""
	}
	return p.Links.Checkout.Href
}
