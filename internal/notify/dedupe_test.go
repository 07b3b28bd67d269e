// ABOUTME: Tests for the de-duplicating notifier
// ABOUTME: Uses a fake clock to cover the window, eviction and concurrent use

package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newDedupe(window time.Duration, maxSize int) (*Dedupe, Notifier, *Recorder, *fakeClock) {
	rec := &Recorder{}
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	d := NewDedupe(window, maxSize)
	d.now = clock.Now
	return d, d.Wrap(rec), rec, clock
}

func TestDedupe_DropsRepeatsWithinWindow(t *testing.T) {
	_, n, rec, clock := newDedupe(time.Second, 0)

	Error(n, "Network error")
	Error(n, "Network error")
	clock.Advance(500 * time.Millisecond)
	Error(n, "Network error")

	assert.Len(t, rec.All(), 1)

	clock.Advance(time.Second)
	Error(n, "Network error")
	assert.Len(t, rec.All(), 2)
}

func TestDedupe_LevelIsPartOfTheKey(t *testing.T) {
	_, n, rec, _ := newDedupe(time.Minute, 0)

	Error(n, "Saved")
	Success(n, "Saved")
	Success(n, "Saved")

	all := rec.All()
	require.Len(t, all, 2)
	assert.Equal(t, LevelError, all[0].Level)
	assert.Equal(t, LevelSuccess, all[1].Level)
}

func TestDedupe_EvictsOldestWhenFull(t *testing.T) {
	d, n, rec, _ := newDedupe(time.Minute, 2)

	Info(n, "a")
	Info(n, "b")
	Info(n, "c") // evicts a
	Info(n, "a")
	Info(n, "c")

	assert.Len(t, rec.All(), 4)
	assert.Len(t, d.seen, 2)
}

func TestDedupe_PrunesExpiredEntries(t *testing.T) {
	d, n, _, clock := newDedupe(time.Second, 0)

	for i := range 10 {
		Info(n, fmt.Sprintf("message %d", i))
	}
	clock.Advance(2 * time.Second)
	Info(n, "fresh")

	assert.Len(t, d.seen, 1)
	assert.Equal(t, 1, d.order.Len())
}

func TestDedupe_ConcurrentIdenticalNotifications(t *testing.T) {
	_, n, rec, _ := newDedupe(time.Minute, 0)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Error(n, "Request timed out")
		}()
	}
	wg.Wait()

	assert.Len(t, rec.All(), 1)
}

func TestScoped_OnlyFiltersWithinTheScope(t *testing.T) {
	rec := &Recorder{}

	Error(Scoped(context.Background(), rec), "File not found")
	Error(Scoped(context.Background(), rec), "File not found")
	assert.Len(t, rec.All(), 2, "calls outside a scope each notify")

	rec.Reset()
	ctx := WithDedupe(context.Background(), NewDedupe(time.Minute, 0))
	Error(Scoped(ctx, rec), "Network error")
	Error(Scoped(ctx, rec), "Network error")
	Error(Scoped(ctx, rec), "Request timed out")
	assert.Len(t, rec.All(), 2)

	other := WithDedupe(context.Background(), NewDedupe(time.Minute, 0))
	Error(Scoped(other, rec), "Network error")
	assert.Len(t, rec.All(), 3, "a new scope starts empty")
}
