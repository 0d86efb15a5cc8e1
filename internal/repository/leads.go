package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/summitops/event-pay-gateway/internal/model"
)

// LeadsRepository defines persistence for the leads table.
type LeadsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, l model.Lead) error
	BatchUpdateStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.LeadStatus) error
}

type LeadsRepositoryImpl struct {
	db *sqlx.DB
}

func NewLeadsRepository(db *sqlx.DB) *LeadsRepositoryImpl {
	return &LeadsRepositoryImpl{db: db}
}

var _ LeadsRepository = (*LeadsRepositoryImpl)(nil)

func (r *LeadsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}
	return t.Commit()
}

// Insert writes a new lead row with status=captured.
func (r *LeadsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, l model.Lead) error {
	const q = `
		INSERT INTO leads
		    (id, event_id, session_id, full_name, email, phone,
		     utm_source, utm_medium, utm_campaign, utm_term, utm_content,
		     status, created_at, updated_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'captured', NOW(), NOW())
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			l.ID, l.EventID, l.SessionID, l.FullName, l.Email, l.Phone,
			l.UTMSource, l.UTMMedium, l.UTMCampaign, l.UTMTerm, l.UTMContent,
		)
		return err
	})
}

// BatchUpdateStatus updates status for many leads using a single statement.
func (r *LeadsRepositoryImpl) BatchUpdateStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.LeadStatus) error {
	if len(ids) == 0 {
		return nil
	}
	const base = `UPDATE leads SET status = ?, updated_at = NOW() WHERE id IN (?)`
	query, args, err := sqlx.In(base, status, ids)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)

	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}
