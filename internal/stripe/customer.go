package stripe

import (
	"context"
	"net/http"
	"net/url"

	"github.com/summitops/event-pay-gateway/internal/model"
)

type customerList struct {
	Data []model.CustomerRecord `json:"data"`
}

// FindCustomerByEmail returns the first Stripe customer with the given email,
// or nil when none exists. Email must already be normalized (lower-cased).
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*model.CustomerRecord, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("limit", "1")

	var list customerList
	if err := c.do(ctx, http.MethodGet, "/customers?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, nil
	}
	return &list.Data[0], nil
}

// CreateCustomer creates a Stripe customer for the attendee.
func (c *Client) CreateCustomer(ctx context.Context, name, email, phone string) (*model.CustomerRecord, error) {
	form := url.Values{}
	form.Set("email", email)
	if name != "" {
		form.Set("name", name)
	}
	if phone != "" {
		form.Set("phone", phone)
	}

	var cu model.CustomerRecord
	if err := c.do(ctx, http.MethodPost, "/customers", form, &cu); err != nil {
		return nil, err
	}
	return &cu, nil
}

// FindOrCreateCustomer resolves the customer for an email, creating it when
// no match exists. Callers cache the result to keep repeat attempts from
// hitting the API.
func (c *Client) FindOrCreateCustomer(ctx context.Context, name, email, phone string) (*model.CustomerRecord, error) {
	cu, err := c.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if cu != nil {
		return cu, nil
	}
	return c.CreateCustomer(ctx, name, email, phone)
}
