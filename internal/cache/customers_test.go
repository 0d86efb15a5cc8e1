package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitops/event-pay-gateway/internal/model"
)

// fakeClock drives the cache's time source so TTL behavior is deterministic.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration, maxSize int) (*CustomerCache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCustomerCache(ttl, maxSize)
	c.now = clk.now
	return c, clk
}

func customer(id string) *model.CustomerRecord {
	return &model.CustomerRecord{ID: id, Email: id + "@example.com"}
}

func TestCustomerCache_HitWithinTTL(t *testing.T) {
	c, clk := newTestCache(10*time.Minute, 100)

	c.Set("maria@example.com", customer("cus_1"))
	clk.advance(10*time.Minute - time.Second)

	got := c.Get("maria@example.com")
	require.NotNil(t, got)
	assert.Equal(t, "cus_1", got.ID)
}

func TestCustomerCache_ExpiredEntryDeletedOnRead(t *testing.T) {
	c, clk := newTestCache(10*time.Minute, 100)

	c.Set("maria@example.com", customer("cus_1"))
	clk.advance(10*time.Minute + time.Second)

	assert.Nil(t, c.Get("maria@example.com"))
	assert.Equal(t, 0, c.Stats().Size, "expired entry removed by the read")
}

func TestCustomerCache_MissUnknownKey(t *testing.T) {
	c, _ := newTestCache(10*time.Minute, 100)
	assert.Nil(t, c.Get("nobody@example.com"))
}

func TestCustomerCache_SetReplaces(t *testing.T) {
	c, _ := newTestCache(10*time.Minute, 100)

	c.Set("maria@example.com", customer("cus_1"))
	c.Set("maria@example.com", customer("cus_2"))

	got := c.Get("maria@example.com")
	require.NotNil(t, got)
	assert.Equal(t, "cus_2", got.ID)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestCustomerCache_EvictsOldestTenthWhenFull(t *testing.T) {
	const maxSize = 100
	c, clk := newTestCache(time.Hour, maxSize)

	for i := 0; i < maxSize; i++ {
		c.Set(fmt.Sprintf("u%03d@example.com", i), customer(fmt.Sprintf("cus_%03d", i)))
		clk.advance(time.Second) // distinct creation timestamps
	}
	require.Equal(t, maxSize, c.Stats().Size)

	c.Set("new@example.com", customer("cus_new"))

	// 10% of the oldest entries went, then the new one came in.
	assert.Equal(t, maxSize-maxSize/10+1, c.Stats().Size)
	assert.Nil(t, c.Get("u000@example.com"), "oldest entry evicted")
	assert.Nil(t, c.Get("u009@example.com"), "tenth-oldest entry evicted")
	assert.NotNil(t, c.Get("u010@example.com"), "eleventh-oldest survives")
	assert.NotNil(t, c.Get("new@example.com"))
}

func TestCustomerCache_EvictionIgnoresAccessRecency(t *testing.T) {
	const maxSize = 10
	c, clk := newTestCache(time.Hour, maxSize)

	for i := 0; i < maxSize; i++ {
		c.Set(fmt.Sprintf("u%d@example.com", i), customer(fmt.Sprintf("cus_%d", i)))
		clk.advance(time.Second)
	}

	// Touch the oldest entry; creation-time eviction must still drop it.
	require.NotNil(t, c.Get("u0@example.com"))

	c.Set("new@example.com", customer("cus_new"))

	assert.Nil(t, c.Get("u0@example.com"), "recently read entry still evicted first")
}

func TestCustomerCache_TinyCapacityStaysBounded(t *testing.T) {
	c, clk := newTestCache(time.Hour, 3)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("u%d@example.com", i), customer(fmt.Sprintf("cus_%d", i)))
		clk.advance(time.Second)
	}

	assert.LessOrEqual(t, c.Stats().Size, 3)
}

func TestCustomerCache_SetSweepsExpired(t *testing.T) {
	c, clk := newTestCache(time.Minute, 100)

	c.Set("old1@example.com", customer("cus_1"))
	c.Set("old2@example.com", customer("cus_2"))
	clk.advance(2 * time.Minute)

	c.Set("fresh@example.com", customer("cus_3"))

	assert.Equal(t, 1, c.Stats().Size, "write sweeps out expired entries")
}

func TestCustomerCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(10*time.Minute, 100)

	c.Set("maria@example.com", customer("cus_1"))
	c.Invalidate("maria@example.com")
	c.Invalidate("absent@example.com") // no-op

	assert.Nil(t, c.Get("maria@example.com"))
}

func TestCustomerCache_DefaultsApplied(t *testing.T) {
	c := NewCustomerCache(0, 0)
	st := c.Stats()
	assert.Equal(t, DefaultMaxCustomers, st.MaxSize)
	assert.Equal(t, DefaultCustomerTTL, st.TTL)
}
