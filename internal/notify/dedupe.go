// ABOUTME: Notification filter that drops repeats of the same message within a time window
// ABOUTME: Scoped to one fan-out through the context so separate calls still each notify

package notify

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type seenEntry struct {
	at      time.Time
	element *list.Element
}

// Dedupe remembers notifications (level and message) forwarded through it and
// drops identical ones seen less than window ago. At most maxSize recent
// notifications are remembered; the oldest is forgotten first.
type Dedupe struct {
	window  time.Duration
	maxSize int
	now     func() time.Time

	mu    sync.Mutex
	seen  map[string]*seenEntry
	order *list.List // oldest at front
}

// NewDedupe returns an empty filter. A maxSize below 1 means 64.
func NewDedupe(window time.Duration, maxSize int) *Dedupe {
	if maxSize < 1 {
		maxSize = 64
	}
	return &Dedupe{
		window:  window,
		maxSize: maxSize,
		now:     time.Now,
		seen:    make(map[string]*seenEntry),
		order:   list.New(),
	}
}

// Wrap returns a Notifier that forwards to next through d.
func (d *Dedupe) Wrap(next Notifier) Notifier {
	return &deduped{filter: d, next: next}
}

type deduped struct {
	filter *Dedupe
	next   Notifier
}

func (n *deduped) Notify(level Level, message string) {
	if n.filter.duplicate(string(level) + "\x00" + message) {
		return
	}
	n.next.Notify(level, message)
}

type dedupeKey struct{}

// WithDedupe returns a context whose notifications pass through d. Parallel
// calls sharing the context show an identical failure once.
func WithDedupe(ctx context.Context, d *Dedupe) context.Context {
	return context.WithValue(ctx, dedupeKey{}, d)
}

// Scoped returns next filtered by the Dedupe carried in ctx, or next itself.
func Scoped(ctx context.Context, next Notifier) Notifier {
	d, ok := ctx.Value(dedupeKey{}).(*Dedupe)
	if !ok {
		return next
	}
	return d.Wrap(next)
}

// duplicate reports whether key was seen within the window and records it otherwise.
func (d *Dedupe) duplicate(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if e, ok := d.seen[key]; ok {
		if now.Sub(e.at) < d.window {
			return true
		}
		e.at = now
		d.order.MoveToBack(e.element)
		return false
	}

	d.pruneLocked(now)
	if len(d.seen) >= d.maxSize {
		front := d.order.Front()
		d.order.Remove(front)
		delete(d.seen, front.Value.(string))
	}
	d.seen[key] = &seenEntry{at: now, element: d.order.PushBack(key)}
	return false
}

// pruneLocked drops expired entries from the front of the order list.
func (d *Dedupe) pruneLocked(now time.Time) {
	for front := d.order.Front(); front != nil; front = d.order.Front() {
		key := front.Value.(string)
		if now.Sub(d.seen[key].at) < d.window {
			return
		}
		d.order.Remove(front)
		delete(d.seen, key)
	}
}
