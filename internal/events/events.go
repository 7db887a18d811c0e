// Package events records learning analytics: quiz attempts loaded, graded,
// failed and discarded. The log is write-only from this service.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Event types.
const (
	QuizLoaded    = "quiz_loaded"
	QuizGraded    = "quiz_graded"
	QuizFailed    = "quiz_failed"
	QuizDiscarded = "quiz_discarded"
)

const dbTimeout = 5 * time.Second

// Event is one analytics event.
type Event struct {
	AttemptID string
	UserID    string
	ModuleID  string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

func (e Event) validate() error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

// Logger records events.
type Logger interface {
	LogEvent(ctx context.Context, event Event) error
}

// NopLogger ignores all events.
type NopLogger struct{}

func (NopLogger) LogEvent(context.Context, Event) error {
	return nil
}

// MemoryLogger stores events in memory for tests.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{events: []Event{}}
}

func (l *MemoryLogger) LogEvent(_ context.Context, event Event) error {
	if err := event.validate(); err != nil {
		return err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresLogger inserts events into the learning_events table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresLogger(pool *pgxpool.Pool) *PostgresLogger {
	return &PostgresLogger{pool: pool}
}

func (l *PostgresLogger) LogEvent(ctx context.Context, event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if err := event.validate(); err != nil {
		return err
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO learning_events (attempt_id, user_id, module_id, event_type, data, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		event.AttemptID,
		event.UserID,
		event.ModuleID,
		event.EventType,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"attempt_id", event.AttemptID,
		"user_id", event.UserID,
		"module_id", event.ModuleID,
	)
	return nil
}
