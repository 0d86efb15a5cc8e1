package http

import (
	"context"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/summitops/event-pay-gateway/internal/cache"
	"github.com/summitops/event-pay-gateway/internal/metrics"
	"github.com/summitops/event-pay-gateway/internal/model"
	"github.com/summitops/event-pay-gateway/internal/stripe"
	"github.com/summitops/event-pay-gateway/internal/validation"
)

// StripeGateway is the slice of the Stripe client the handler depends on.
type StripeGateway interface {
	FindOrCreateCustomer(ctx context.Context, name, email, phone string) (*model.CustomerRecord, error)
	CreatePaymentIntent(ctx context.Context, p stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func createPaymentIntentHandler(gw StripeGateway, customers *cache.CustomerCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload map[string]any
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "bad request"})
		}

		res := validation.ValidatePaymentRequest(payload)
		if !res.Valid {
			metrics.PaymentIntentsTotal.WithLabelValues("rejected").Inc()
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"errors": res.Errors,
			})
		}
		sp := res.Sanitized
		ctx := c.Request().Context()

		// Customer resolution: cache first, Stripe on miss. The cache entry
		// keeps repeat attempts for the same attendee from re-querying Stripe
		// within the TTL window.
		customer := customers.Get(sp.Email)
		if customer != nil {
			metrics.CustomerCacheTotal.WithLabelValues("hit").Inc()
		} else {
			metrics.CustomerCacheTotal.WithLabelValues("miss").Inc()
			var err error
			customer, err = gw.FindOrCreateCustomer(ctx, sp.FullName, sp.Email, sp.Phone)
			if err != nil {
				log.Errorf("stripe customer lookup failed: %v", err)
				metrics.PaymentIntentsTotal.WithLabelValues("failed").Inc()
				return c.JSON(http.StatusBadGateway, map[string]string{"error": "payment processor unavailable"})
			}
			customers.Set(sp.Email, customer)
		}

		meta := map[string]string{
			"event_id":        sp.EventID,
			"user_session_id": sp.UserSessionID,
			"lead_id":         sp.LeadID,
		}
		for k, v := range sp.UTM {
			meta[k] = v
		}

		pi, err := gw.CreatePaymentIntent(ctx, stripe.PaymentIntentParams{
			Amount:       sp.Amount,
			Currency:     sp.Currency,
			CustomerID:   customer.ID,
			ReceiptEmail: sp.Email,
			Metadata:     meta,
		})
		if err != nil {
			log.Errorf("create payment intent failed: %v", err)
			metrics.PaymentIntentsTotal.WithLabelValues("failed").Inc()
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "payment processor unavailable"})
		}

		metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()

		return c.JSON(http.StatusOK, map[string]any{
			"payment_intent_id": pi.ID,
			"client_secret":     pi.ClientSecret,
			"amount":            pi.Amount,
			"currency":          pi.Currency,
			"customer_id":       customer.ID,
		})
	}
}
