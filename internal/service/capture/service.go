package capture

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/summitops/event-pay-gateway/internal/model"
	"github.com/summitops/event-pay-gateway/internal/repository"
	"github.com/summitops/event-pay-gateway/internal/util"
)

const LeadsKafkaTopic = "leads.captured"

// Service atomically persists captured leads together with their outbox
// events, so the CRM relay can never observe a lead that was not stored (or
// the other way around).
type Service struct {
	db     *sqlx.DB
	leads  repository.LeadsRepository
	outbox repository.OutboxRepository
}

// New constructs the capture service.
func New(db *sqlx.DB, leadsRepo repository.LeadsRepository, outboxRepo repository.OutboxRepository) *Service {
	return &Service{db: db, leads: leadsRepo, outbox: outboxRepo}
}

// Capture generates a ULID, then writes the `leads` row and the `outbox`
// envelope within a single transaction. Returns the generated lead ID.
func (s *Service) Capture(ctx context.Context, contact model.Contact) (string, error) {
	leadID := util.New()

	lead := model.Lead{
		ID:          leadID,
		EventID:     contact.EventID,
		SessionID:   contact.SessionID,
		FullName:    contact.FullName,
		Email:       contact.Email,
		Phone:       contact.Phone,
		UTMSource:   contact.UTMSource,
		UTMMedium:   contact.UTMMedium,
		UTMCampaign: contact.UTMCampaign,
		UTMTerm:     contact.UTMTerm,
		UTMContent:  contact.UTMContent,
		Status:      model.LeadCaptured,
	}

	env := model.Envelope{
		ID:      leadID,
		Contact: contact,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.leads.Insert(ctx, tx, lead); err != nil {
		return "", fmt.Errorf("insert lead: %w", err)
	}

	if err := s.outbox.Insert(ctx, tx, "lead", leadID, LeadsKafkaTopic, payload); err != nil {
		return "", fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return leadID, nil
}
