// Package instructor serves struggle alerts to instructors: a polled feed
// pushed over websocket, and a spreadsheet export.
package instructor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/learnflow/learnflow/internal/mastery"
	"github.com/learnflow/learnflow/internal/struggle"
)

const defaultSubscriberBuffer = 32

// Source lists the currently unresolved struggle alerts.
type Source interface {
	ListStruggles(ctx context.Context) ([]struggle.Alert, error)
}

// Feed polls the alert source and fans new alerts out to subscribers. A
// subscriber that falls behind loses alerts; the poller never blocks on it.
type Feed struct {
	source   Source
	interval time.Duration
	buffer   int

	mu     sync.Mutex
	seen   map[string]struct{}
	latest []mastery.StruggleClassification
	subs   map[*Subscription]struct{}
}

// Subscription receives alerts that appear after it was created.
type Subscription struct {
	C <-chan mastery.StruggleClassification

	ch      chan mastery.StruggleClassification
	dropped atomic.Int64
}

// Dropped returns how many alerts were lost because the buffer was full.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// NewFeed creates a feed polling source every interval.
func NewFeed(source Source, interval time.Duration) *Feed {
	return &Feed{
		source:   source,
		interval: interval,
		buffer:   defaultSubscriberBuffer,
		seen:     make(map[string]struct{}),
		subs:     make(map[*Subscription]struct{}),
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried on
// the next tick.
func (f *Feed) Run(ctx context.Context) {
	slog.Info("instructor feed started", "interval", f.interval)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if err := f.Poll(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("struggle alert poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			f.closeAll()
			slog.Info("instructor feed stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll fetches alerts once and publishes those not seen in the previous
// poll.
func (f *Feed) Poll(ctx context.Context) error {
	alerts, err := f.source.ListStruggles(ctx)
	if err != nil {
		return fmt.Errorf("poll struggles: %w", err)
	}

	f.mu.Lock()
	prev := f.seen
	f.mu.Unlock()

	current := make(map[string]struct{}, len(alerts))
	latest := make([]mastery.StruggleClassification, 0, len(alerts))
	var fresh []mastery.StruggleClassification
	for _, a := range alerts {
		if a.Resolved {
			continue
		}
		key := a.Key()
		if _, dup := current[key]; dup {
			continue
		}
		current[key] = struct{}{}

		c := mastery.ClassifyStruggle(a)
		latest = append(latest, c)
		if _, ok := prev[key]; !ok {
			fresh = append(fresh, c)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = current
	f.latest = latest
	for _, c := range fresh {
		f.publishLocked(c)
	}
	if len(fresh) > 0 {
		slog.Info("new struggle alerts", "count", len(fresh), "subscribers", len(f.subs))
	}
	return nil
}

func (f *Feed) publishLocked(c mastery.StruggleClassification) {
	for s := range f.subs {
		select {
		case s.ch <- c:
		default:
			s.dropped.Add(1)
			slog.Debug("dropping alert for slow subscriber", "user_id", c.Alert.UserID)
		}
	}
}

// Latest returns the alerts of the most recent successful poll.
func (f *Feed) Latest() []mastery.StruggleClassification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mastery.StruggleClassification{}, f.latest...)
}

// Subscribe registers a new subscriber.
func (f *Feed) Subscribe() *Subscription {
	ch := make(chan mastery.StruggleClassification, f.buffer)
	s := &Subscription{C: ch, ch: ch}

	f.mu.Lock()
	f.subs[s] = struct{}{}
	f.mu.Unlock()
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call twice.
func (f *Feed) Unsubscribe(s *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[s]; ok {
		delete(f.subs, s)
		close(s.ch)
	}
}

// Subscribers returns the number of live subscribers.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		delete(f.subs, s)
		close(s.ch)
	}
}
