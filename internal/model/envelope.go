package model

// Envelope is the payload published to Kafka (via the Debezium outbox SMT).
type Envelope struct {
	ID      string  `json:"id"` // lead ULID
	Contact Contact `json:"contact"`
}
