package quiz

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type slot struct {
	userID   string
	moduleID string
}

type entry struct {
	session *Session
	seen    time.Time
}

// Registry holds one session per (user, module). Sessions in different
// slots share nothing.
type Registry struct {
	source Source

	mu       sync.Mutex
	sessions map[slot]*entry
	now      func() time.Time
}

// NewRegistry creates an empty registry whose sessions use source.
func NewRegistry(source Source) *Registry {
	return &Registry{source: source, sessions: make(map[slot]*entry), now: time.Now}
}

// SetClock replaces the time source. For tests.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Session returns the slot's session, creating an idle one if needed.
func (r *Registry) Session(userID, moduleID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := slot{userID, moduleID}
	e, ok := r.sessions[k]
	if !ok {
		e = &entry{session: NewSession(r.source)}
		r.sessions[k] = e
	}
	e.seen = r.now()
	return e.session
}

// Lookup returns the slot's session without creating one.
func (r *Registry) Lookup(userID, moduleID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[slot{userID, moduleID}]
	if !ok {
		return nil, false
	}
	e.seen = r.now()
	return e.session, true
}

// Discard drops the slot's session. Late responses for it are ignored.
func (r *Registry) Discard(userID, moduleID string) {
	r.mu.Lock()
	k := slot{userID, moduleID}
	e, ok := r.sessions[k]
	delete(r.sessions, k)
	r.mu.Unlock()

	if ok {
		e.session.Discard()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep discards sessions not looked up for longer than idle and returns
// how many it dropped. Sessions waiting on the quiz service are kept.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	cutoff := r.now().Add(-idle)
	var evicted []*Session
	for k, e := range r.sessions {
		if !e.seen.Before(cutoff) {
			continue
		}
		if st := e.session.State(); st == Loading || st == Submitting {
			continue
		}
		delete(r.sessions, k)
		evicted = append(evicted, e.session)
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.Discard()
	}
	return len(evicted)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				slog.Info("evicted idle quiz sessions", "evicted", n, "remaining", r.Len())
			}
		}
	}
}
