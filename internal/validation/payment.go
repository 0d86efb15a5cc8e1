package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Defaults applied to accepted payloads when the caller omits them.
const (
	DefaultAmountCents = 18000
	DefaultCurrency    = "eur"
)

const (
	minAmountCents = 50
	maxAmountCents = 1000000
	minNameLen     = 2
	maxNameLen     = 100
	maxEmailLen    = 254
	minPhoneDigits = 7
	maxPhoneDigits = 15
	maxUTMLen      = 255
)

var requiredFields = []string{"event_id", "user_session_id", "full_name", "email", "phone"}

var utmFields = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

var allowedCurrencies = map[string]struct{}{"eur": {}, "usd": {}, "gbp": {}}

var (
	uuidV4Re = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
	// Letters plus Latin-1 Supplement / Latin Extended-A so Portuguese names
	// (Conceição, João, Luís) pass, along with space, hyphen, apostrophe, period.
	nameRe       = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿĀ-ž' .-]+$`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe      = regexp.MustCompile(`^\+?[0-9]+$`)
	phoneStripRe = regexp.MustCompile(`[\s\-()]`)
)

// Best-effort denylist, not a security boundary: the real defense is output
// encoding and parameterized queries downstream of the gateway.
var injectionRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`(?i)\bselect\b.+\bfrom\b`),
}

// Sanitized is the normalized, defaulted payload safe to forward to Stripe
// and the marketing/CRM pipeline.
type Sanitized struct {
	EventID       string            `json:"event_id"`
	UserSessionID string            `json:"user_session_id"`
	LeadID        string            `json:"lead_id"`
	FullName      string            `json:"full_name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	UTM           map[string]string `json:"utm,omitempty"`
}

// Result is the outcome of validating one payment-intent payload. A non-empty
// Errors slice is a hard rejection; Sanitized is only set when Valid is true.
type Result struct {
	Valid     bool       `json:"is_valid"`
	Errors    []string   `json:"errors"`
	Sanitized *Sanitized `json:"sanitized,omitempty"`
}

// ValidatePaymentRequest checks an untrusted payment-intent payload and, on
// success, returns its sanitized form. Missing required fields short-circuit;
// all other violations accumulate so the caller can report them together.
// The input map is never mutated and the function never panics on
// expected-shape bad input.
func ValidatePaymentRequest(payload map[string]any) Result {
	var errs []string

	for _, f := range requiredFields {
		if stringField(payload, f) == "" {
			errs = append(errs, fmt.Sprintf("missing required field: %s", f))
		}
	}
	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}

	eventID := strings.TrimSpace(stringField(payload, "event_id"))
	sessionID := strings.TrimSpace(stringField(payload, "user_session_id"))
	fullName := strings.TrimSpace(stringField(payload, "full_name"))
	email := strings.ToLower(strings.TrimSpace(stringField(payload, "email")))
	phone := strings.TrimSpace(stringField(payload, "phone"))

	if !uuidV4Re.MatchString(eventID) {
		errs = append(errs, "event_id must be a valid UUID")
	}
	if !uuidV4Re.MatchString(sessionID) {
		errs = append(errs, "user_session_id must be a valid UUID")
	}

	// Length and character-set are separate checks; both may fire.
	if n := len([]rune(fullName)); n < minNameLen || n > maxNameLen {
		errs = append(errs, fmt.Sprintf("full_name must be between %d and %d characters", minNameLen, maxNameLen))
	}
	if fullName != "" && !nameRe.MatchString(fullName) {
		errs = append(errs, "full_name contains invalid characters")
	}

	if len(email) > maxEmailLen {
		errs = append(errs, fmt.Sprintf("email must be at most %d characters", maxEmailLen))
	}
	if !emailRe.MatchString(email) {
		errs = append(errs, "invalid email format")
	}

	if !validPhone(phone) {
		errs = append(errs, fmt.Sprintf("phone must contain %d to %d digits", minPhoneDigits, maxPhoneDigits))
	}

	amount := int64(DefaultAmountCents)
	if raw, ok := payload["amount"]; ok && raw != nil {
		n, ok := parseAmount(raw)
		switch {
		case !ok:
			errs = append(errs, "amount must be an integer")
		case n < minAmountCents || n > maxAmountCents:
			errs = append(errs, fmt.Sprintf("amount must be between %d and %d cents", minAmountCents, maxAmountCents))
		default:
			amount = n
		}
	}

	currency := DefaultCurrency
	if raw, ok := payload["currency"]; ok && raw != nil {
		s, isStr := raw.(string)
		cur := strings.ToLower(strings.TrimSpace(s))
		if _, allowed := allowedCurrencies[cur]; !isStr || !allowed {
			errs = append(errs, "currency must be one of: eur, usd, gbp")
		} else {
			currency = cur
		}
	}

	utm := map[string]string{}
	for _, f := range utmFields {
		raw, ok := payload[f]
		if !ok || raw == nil {
			continue
		}
		s, isStr := raw.(string)
		if !isStr || len(s) > maxUTMLen {
			errs = append(errs, fmt.Sprintf("%s must be a string of at most %d characters", f, maxUTMLen))
			continue
		}
		utm[f] = strings.TrimSpace(s)
	}

	if msg, bad := scanForInjection(fullName, email, phone, utm["utm_source"]); bad {
		errs = append(errs, msg)
	}

	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}

	leadID := strings.TrimSpace(stringField(payload, "lead_id"))
	if leadID == "" {
		leadID = eventID
	}
	if len(utm) == 0 {
		utm = nil
	}

	return Result{
		Valid:  true,
		Errors: []string{},
		Sanitized: &Sanitized{
			EventID:       eventID,
			UserSessionID: sessionID,
			LeadID:        leadID,
			FullName:      fullName,
			Email:         email,
			Phone:         phone, // original formatting preserved
			Amount:        amount,
			Currency:      currency,
			UTM:           utm,
		},
	}
}

// ValidEmail reports whether s (already trimmed/lower-cased) looks like a
// deliverable local@domain.tld address. Shared with the lead capture handler.
func ValidEmail(s string) bool {
	return len(s) <= maxEmailLen && emailRe.MatchString(s)
}

// ValidPhone reports whether s carries 7-15 digits once spaces, hyphens and
// parentheses are stripped, with at most one leading "+".
func ValidPhone(s string) bool {
	return validPhone(strings.TrimSpace(s))
}

func validPhone(s string) bool {
	stripped := phoneStripRe.ReplaceAllString(s, "")
	if !phoneRe.MatchString(stripped) {
		return false
	}
	digits := len(strings.TrimPrefix(stripped, "+"))
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

// stringField returns the field as a string with surrounding whitespace
// significant to presence checks removed; non-string values read as absent.
func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, isStr := v.(string)
	if !isStr || strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func parseAmount(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// scanForInjection stops at the first suspicious value; one shared error
// covers the whole payload.
func scanForInjection(values ...string) (string, bool) {
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, re := range injectionRes {
			if re.MatchString(v) {
				return "payload contains potentially malicious content", true
			}
		}
	}
	return "", false
}
