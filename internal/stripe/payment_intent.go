package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// PaymentIntent is the subset of the Stripe object the gateway returns to the
// landing page (the client secret drives the embedded payment element).
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

type PaymentIntentParams struct {
	Amount       int64  // cents
	Currency     string // lower-case ISO code
	CustomerID   string
	ReceiptEmail string
	Metadata     map[string]string // event/session/lead/UTM attribution
}

// CreatePaymentIntent creates a PaymentIntent with automatic payment methods
// enabled, carrying the attribution metadata the CRM later reads back from
// checkout webhooks.
func (c *Client) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(p.Amount, 10))
	form.Set("currency", p.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if p.CustomerID != "" {
		form.Set("customer", p.CustomerID)
	}
	if p.ReceiptEmail != "" {
		form.Set("receipt_email", p.ReceiptEmail)
	}
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var pi PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payment_intents", form, &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}
