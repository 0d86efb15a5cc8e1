package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/summitops/event-pay-gateway/internal/model"
)

// CHLeadsRepository lists captured leads from ClickHouse (final view,
// populated by the CDC pipeline).
type CHLeadsRepository interface {
	List(ctx context.Context, email string, status model.LeadStatus, limit, offset int) ([]model.Lead, error)
}

type chLeadsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHLeadsRepository(ch *sqlx.DB) CHLeadsRepository {
	return &chLeadsRepository{ch: ch}
}

func (r *chLeadsRepository) List(ctx context.Context, email string, status model.LeadStatus, limit, offset int) ([]model.Lead, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT id, event_id, session_id, full_name, email, phone,
		       utm_source, utm_medium, utm_campaign, utm_term, utm_content,
		       status, created_at, updated_at
		FROM evpay.leads_latest
		WHERE 1 = 1
	`
	var args []any

	if status != "" {
		q += " AND status = ?"
		args = append(args, status.String())
	}
	if email != "" {
		q += " AND email = ?"
		args = append(args, email)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.Lead
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
