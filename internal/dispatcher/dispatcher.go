package dispatcher

import (
	"context"
	"fmt"

	"github.com/summitops/event-pay-gateway/internal/model"
)

var ErrNotReady = fmt.Errorf("provider not ready")

// Dispatcher fans a captured lead out to every registered provider. A lead
// only counts as synced when all providers accepted it; the worker marks it
// failed otherwise and operators replay from the reports view.
type Dispatcher struct {
	providers   []Provider
	maxAttempts int
}

func NewDispatcher(provs []Provider, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 2
	}
	return &Dispatcher{providers: provs, maxAttempts: maxAttempts}
}

// Deliver pushes the lead to each provider in turn, retrying per provider up
// to the attempt budget. The first failure is returned after all providers
// were tried, so one dead CRM does not starve the others.
func (d *Dispatcher) Deliver(ctx context.Context, lead model.Contact) error {
	var firstErr error
	for _, p := range d.providers {
		if err := d.deliverOne(ctx, p, lead); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Dispatcher) deliverOne(ctx context.Context, p Provider, lead model.Contact) error {
	var last error
	for i := 0; i < d.maxAttempts; i++ {
		if !p.Ready() || !p.Acquire() {
			last = fmt.Errorf("provider=%s: %w", p.Name(), ErrNotReady)
			continue
		}
		if err := p.Push(ctx, lead); err != nil {
			last = err
			continue
		}
		return nil
	}
	return last
}
