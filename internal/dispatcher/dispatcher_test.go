package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitops/event-pay-gateway/internal/model"
)

type fakeProvider struct {
	name     string
	pushes   int
	failLeft int // fail the first N pushes
	down     bool
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Ready() bool   { return !f.down }
func (f *fakeProvider) Acquire() bool { return !f.down }

func (f *fakeProvider) Push(context.Context, model.Contact) error {
	f.pushes++
	if f.failLeft > 0 {
		f.failLeft--
		return errors.New("push failed")
	}
	return nil
}

func testLead() model.Contact {
	return model.Contact{FullName: "Maria Silva", Email: "maria@example.com"}
}

func TestDeliver_AllProvidersReceiveLead(t *testing.T) {
	a := &fakeProvider{name: "mailerlite"}
	b := &fakeProvider{name: "crm"}
	d := NewDispatcher([]Provider{a, b}, 3)

	require.NoError(t, d.Deliver(context.Background(), testLead()))
	assert.Equal(t, 1, a.pushes)
	assert.Equal(t, 1, b.pushes)
}

func TestDeliver_RetriesWithinBudget(t *testing.T) {
	p := &fakeProvider{name: "mailerlite", failLeft: 2}
	d := NewDispatcher([]Provider{p}, 3)

	require.NoError(t, d.Deliver(context.Background(), testLead()))
	assert.Equal(t, 3, p.pushes, "two failures then the successful attempt")
}

func TestDeliver_OneDeadProviderDoesNotStarveOthers(t *testing.T) {
	dead := &fakeProvider{name: "crm", down: true}
	alive := &fakeProvider{name: "mailerlite"}
	d := NewDispatcher([]Provider{dead, alive}, 2)

	err := d.Deliver(context.Background(), testLead())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 1, alive.pushes, "healthy provider still got the lead")
}

func TestDeliver_ExhaustedBudgetReturnsLastError(t *testing.T) {
	p := &fakeProvider{name: "mailerlite", failLeft: 5}
	d := NewDispatcher([]Provider{p}, 2)

	err := d.Deliver(context.Background(), testLead())
	require.Error(t, err)
	assert.Equal(t, 2, p.pushes)
}
