package model

// CustomerRecord is the Stripe-side customer reused across payment attempts.
// The lookup cache stores it by reference and never inspects it beyond the ID.
type CustomerRecord struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
