package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"event_id":        "0f4b1c2e-8a3d-4f6a-9b1e-2c3d4e5f6a7b",
		"user_session_id": "7a6f5e4d-3c2b-41a0-9f8e-7d6c5b4a3f2e",
		"full_name":       "Maria Silva",
		"email":           "Maria@Example.com",
		"phone":           "+351 912 345 678",
	}
}

func TestValidatePaymentRequest_Valid(t *testing.T) {
	res := ValidatePaymentRequest(validPayload())

	require.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	require.NotNil(t, res.Sanitized)

	s := res.Sanitized
	assert.Equal(t, "Maria Silva", s.FullName)
	assert.Equal(t, "maria@example.com", s.Email, "email is lower-cased")
	assert.Equal(t, "+351 912 345 678", s.Phone, "phone formatting preserved")
	assert.Equal(t, int64(DefaultAmountCents), s.Amount)
	assert.Equal(t, DefaultCurrency, s.Currency)
	assert.Equal(t, s.EventID, s.LeadID, "lead_id defaults to event_id")
	assert.Nil(t, s.UTM)
}

func TestValidatePaymentRequest_MissingFieldsShortCircuit(t *testing.T) {
	res := ValidatePaymentRequest(map[string]any{
		"full_name": "Maria Silva",
	})

	require.False(t, res.Valid)
	assert.Nil(t, res.Sanitized)
	assert.ElementsMatch(t, []string{
		"missing required field: event_id",
		"missing required field: user_session_id",
		"missing required field: email",
		"missing required field: phone",
	}, res.Errors)
}

func TestValidatePaymentRequest_BlankCountsAsMissing(t *testing.T) {
	p := validPayload()
	p["email"] = "   "

	res := ValidatePaymentRequest(p)

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "missing required field: email")
	// Presence failures short-circuit; format checks never ran.
	assert.Len(t, res.Errors, 1)
}

func TestValidatePaymentRequest_AccumulatesFormatErrors(t *testing.T) {
	p := validPayload()
	p["event_id"] = "not-a-uuid"
	p["full_name"] = "A"
	p["email"] = "nope"
	p["phone"] = "12"

	res := ValidatePaymentRequest(p)

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "event_id must be a valid UUID")
	assert.Contains(t, res.Errors, "full_name must be between 2 and 100 characters")
	assert.Contains(t, res.Errors, "invalid email format")
	assert.Contains(t, res.Errors, "phone must contain 7 to 15 digits")
}

func TestValidatePaymentRequest_PortugueseName(t *testing.T) {
	p := validPayload()
	p["full_name"] = "Conceição São-João d'Almeida Jr."

	res := ValidatePaymentRequest(p)

	require.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidatePaymentRequest_NameInvalidCharacters(t *testing.T) {
	p := validPayload()
	p["full_name"] = "Maria_Silva42"

	res := ValidatePaymentRequest(p)

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "full_name contains invalid characters")
}

func TestValidatePaymentRequest_Amount(t *testing.T) {
	tests := []struct {
		name    string
		amount  any
		wantErr string
		want    int64
	}{
		{name: "integer ok", amount: 25000, want: 25000},
		{name: "json number ok", amount: json.Number("25000"), want: 25000},
		{name: "string ok", amount: "25000", want: 25000},
		{name: "whole float ok", amount: float64(25000), want: 25000},
		{name: "fractional float", amount: 180.5, wantErr: "amount must be an integer"},
		{name: "not a number", amount: "abc", wantErr: "amount must be an integer"},
		{name: "below minimum", amount: 1, wantErr: "amount must be between 50 and 1000000 cents"},
		{name: "above maximum", amount: 2000000, wantErr: "amount must be between 50 and 1000000 cents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			p["amount"] = tt.amount

			res := ValidatePaymentRequest(p)

			if tt.wantErr != "" {
				require.False(t, res.Valid)
				assert.Contains(t, res.Errors, tt.wantErr)
				return
			}
			require.True(t, res.Valid, "errors: %v", res.Errors)
			assert.Equal(t, tt.want, res.Sanitized.Amount)
		})
	}
}

func TestValidatePaymentRequest_Currency(t *testing.T) {
	p := validPayload()
	p["currency"] = "GBP"

	res := ValidatePaymentRequest(p)
	require.True(t, res.Valid)
	assert.Equal(t, "gbp", res.Sanitized.Currency)

	p["currency"] = "XYZ"
	res = ValidatePaymentRequest(p)
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "currency must be one of: eur, usd, gbp")
}

func TestValidatePaymentRequest_UTM(t *testing.T) {
	p := validPayload()
	p["utm_source"] = "  instagram "
	p["utm_campaign"] = "early-bird"

	res := ValidatePaymentRequest(p)

	require.True(t, res.Valid)
	assert.Equal(t, map[string]string{
		"utm_source":   "instagram",
		"utm_campaign": "early-bird",
	}, res.Sanitized.UTM)
}

func TestValidatePaymentRequest_UTMTooLong(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	p := validPayload()
	p["utm_term"] = string(long)

	res := ValidatePaymentRequest(p)

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "utm_term must be a string of at most 255 characters")
}

func TestValidatePaymentRequest_Injection(t *testing.T) {
	cases := []string{
		"<script>alert(1)</script>",
		"javascript:alert(1)",
		"x onload=evil()",
		"SELECT secret FROM users",
	}
	for _, bad := range cases {
		t.Run(bad, func(t *testing.T) {
			p := validPayload()
			p["full_name"] = bad

			res := ValidatePaymentRequest(p)

			require.False(t, res.Valid)
			assert.Contains(t, res.Errors, "payload contains potentially malicious content")
		})
	}
}

func TestValidatePaymentRequest_DoesNotMutateInput(t *testing.T) {
	p := validPayload()
	_ = ValidatePaymentRequest(p)

	assert.Equal(t, "Maria@Example.com", p["email"])
}

func TestValidatePaymentRequest_SanitizedRoundTrips(t *testing.T) {
	res := ValidatePaymentRequest(validPayload())
	require.True(t, res.Valid)

	// Feeding the sanitized output back through validation still passes.
	again := ValidatePaymentRequest(map[string]any{
		"event_id":        res.Sanitized.EventID,
		"user_session_id": res.Sanitized.UserSessionID,
		"full_name":       res.Sanitized.FullName,
		"email":           res.Sanitized.Email,
		"phone":           res.Sanitized.Phone,
		"amount":          res.Sanitized.Amount,
		"currency":        res.Sanitized.Currency,
	})
	assert.True(t, again.Valid, "errors: %v", again.Errors)
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("+351 912-345-678"))
	assert.True(t, ValidPhone("(212) 555-0123"))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone("+351 91x 345 678"))
	assert.False(t, ValidPhone("12345678901234567890"))
}
