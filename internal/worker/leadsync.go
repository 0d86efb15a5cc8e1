package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/summitops/event-pay-gateway/internal/dispatcher"
	"github.com/summitops/event-pay-gateway/internal/kafka"
	"github.com/summitops/event-pay-gateway/internal/metrics"
	"github.com/summitops/event-pay-gateway/internal/model"
	"github.com/summitops/event-pay-gateway/internal/repository"
)

// LeadSync:
// - fetches captured-lead envelopes from Kafka,
// - fans each lead out to every enabled marketing/CRM provider,
// - batches lead status updates (synced|failed) into single transactions.
type LeadSync struct {
	// Dependencies
	DB       *sqlx.DB
	Consumer *kafka.Consumer
	Leads    repository.LeadsRepository
	Dispatch *dispatcher.Dispatcher

	// Behavior
	Workers   int           // number of goroutines pushing leads
	BatchSize int           // max buffered updates per flush (items)
	BatchWait time.Duration // max time to wait before flush
}

// NewLeadSync builds a worker with sane defaults.
func NewLeadSync(db *sqlx.DB, consumer *kafka.Consumer, leadsRepo repository.LeadsRepository, dispatch *dispatcher.Dispatcher) *LeadSync {
	return &LeadSync{
		DB:        db,
		Consumer:  consumer,
		Leads:     leadsRepo,
		Dispatch:  dispatch,
		Workers:   8,
		BatchSize: 100,
		BatchWait: 300 * time.Millisecond,
	}
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *LeadSync) Run(ctx context.Context) error {
	if w.Dispatch == nil {
		return errors.New("leadsync: no dispatcher")
	}
	if w.Workers <= 0 {
		w.Workers = 8
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 100
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 300 * time.Millisecond
	}

	// Channel for worker results → batch writer
	updates := make(chan statusItem, w.BatchSize*2)
	defer close(updates)

	go w.runBatchWriter(ctx, updates)

	// Fetch loop → fan-out to processors
	msgCh := make(chan kafka.Message, w.Workers*2)

	go func() {
		defer close(msgCh)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				m, err := w.Consumer.Fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("[leadsync] kafka fetch err: %v", err)
					time.Sleep(200 * time.Millisecond)
					continue
				}
				msgCh <- m
			}
		}
	}()

	for i := 0; i < w.Workers; i++ {
		go w.runProcessor(ctx, msgCh, updates)
	}

	<-ctx.Done()
	return nil
}

type statusItem struct {
	id     string
	status model.LeadStatus // synced | failed
}

func (w *LeadSync) runProcessor(ctx context.Context, in <-chan kafka.Message, out chan<- statusItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			w.processOne(ctx, m, out)
		}
	}
}

func (w *LeadSync) processOne(ctx context.Context, m kafka.Message, out chan<- statusItem) {
	// Parse envelope: { id, contact:{...} }
	var env model.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil || env.ID == "" {
		_ = w.Consumer.Commit(ctx, m) // poison → commit, skip
		if err != nil {
			log.Printf("[leadsync] bad envelope json: %v", err)
		} else {
			log.Printf("[leadsync] envelope missing id")
		}
		return
	}

	if err := w.Dispatch.Deliver(ctx, env.Contact); err != nil {
		log.Printf("[leadsync] deliver lead=%s err: %v", env.ID, err)
		metrics.LeadsTotal.WithLabelValues("failed").Inc()
		out <- statusItem{id: env.ID, status: model.LeadFailed}
	} else {
		metrics.LeadsTotal.WithLabelValues("synced").Inc()
		out <- statusItem{id: env.ID, status: model.LeadSynced}
	}

	// Always commit (at-least-once; providers upsert by email, so replays
	// are harmless)
	if err := w.Consumer.Commit(ctx, m); err != nil {
		log.Printf("[leadsync] commit err: %v", err)
	}
}

// runBatchWriter does size/time-based flush of lead status updates.
func (w *LeadSync) runBatchWriter(ctx context.Context, in <-chan statusItem) {
	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	var synced, failed []string

	reset := func() {
		synced = synced[:0]
		failed = failed[:0]
	}

	flush := func() {
		if len(synced) == 0 && len(failed) == 0 {
			return
		}

		tx, err := w.DB.BeginTxx(ctx, nil)
		if err != nil {
			log.Printf("[leadsync] begin tx err: %v", err)
			reset()
			return
		}
		defer func() { _ = tx.Rollback() }()

		if err := w.Leads.BatchUpdateStatus(ctx, tx, synced, model.LeadSynced); err != nil {
			log.Printf("[leadsync] batch update synced err: %v", err)
			return
		}
		if err := w.Leads.BatchUpdateStatus(ctx, tx, failed, model.LeadFailed); err != nil {
			log.Printf("[leadsync] batch update failed err: %v", err)
			return
		}

		if err := tx.Commit(); err != nil {
			log.Printf("[leadsync] tx commit err: %v", err)
			return
		}

		log.Printf("[leadsync] flushed: synced=%d failed=%d", len(synced), len(failed))

		reset()
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case u, ok := <-in:
			if !ok {
				flush()
				return
			}
			switch u.status {
			case model.LeadSynced:
				synced = append(synced, u.id)
			case model.LeadFailed:
				failed = append(failed, u.id)
			}

			if len(synced)+len(failed) >= w.BatchSize {
				flush()
			}

		case <-tick.C:
			flush()
		}
	}
}
