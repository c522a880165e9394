package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Event types written by the fixer. Record events summarize one explanation
// record; translation events carry a Locale.
const (
	EventPatched    = "record_patched"
	EventPartial    = "record_partial"
	EventUnresolved = "record_unresolved"
	EventStale      = "record_stale"

	EventTranslationInserted = "translation_inserted"
	EventTranslationMissing  = "translation_missing"
)

// Event is one outcome of a fix run.
type Event struct {
	RunID     string
	EventType string
	Address   string
	Locale    string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the fix_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.RunID == "" {
		return fmt.Errorf("run_id is required")
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

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := l.pool.Exec(ctx,
		`INSERT INTO fix_events (run_id, event_type, address, locale, data, created_at)
		 SELECT r.id, $2, $3, $4, $5::jsonb, $6
		 FROM fix_runs r
		 WHERE r.id = $1::uuid`,
		event.RunID,
		event.EventType,
		event.Address,
		event.Locale,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", event.RunID)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"run_id", event.RunID,
		"address", event.Address,
		"locale", event.Locale,
	)
	return nil
}

// ListEvents returns the events of a run in insertion order.
func (l *PostgresEventLogger) ListEvents(runID string) ([]Event, error) {
	if l == nil || l.pool == nil {
		return nil, fmt.Errorf("event logger pool is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := l.pool.Query(ctx,
		`SELECT run_id::text, event_type, address, locale, data, created_at
		 FROM fix_events
		 WHERE run_id = $1::uuid
		 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e    Event
			data []byte
		)
		if err := rows.Scan(&e.RunID, &e.EventType, &e.Address, &e.Locale, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.Data); err != nil {
				return nil, fmt.Errorf("decode event data: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
