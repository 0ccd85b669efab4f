package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS lead_events (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    score INTEGER NOT NULL DEFAULT 0,
    metadata TEXT,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_lead_events_user ON lead_events(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_lead_events_type ON lead_events(event_type);

CREATE TABLE IF NOT EXISTS assignments (
    test_id TEXT NOT NULL,
    visitor_id TEXT NOT NULL,
    variant_id TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    PRIMARY KEY (test_id, visitor_id)
);

CREATE TABLE IF NOT EXISTS ab_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    test_id TEXT NOT NULL,
    variant_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    visitor_id TEXT NOT NULL,
    value REAL NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_ab_events_test ON ab_events(test_id);
CREATE INDEX IF NOT EXISTS idx_ab_events_test_event ON ab_events(test_id, event_type);
CREATE UNIQUE INDEX IF NOT EXISTS idx_ab_events_dedup ON ab_events(test_id, visitor_id, event_type);

CREATE TABLE IF NOT EXISTS subscribers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT UNIQUE NOT NULL,
    first_name TEXT,
    last_name TEXT,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    message TEXT NOT NULL,
    company TEXT,
    phone TEXT,
    service TEXT,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendLeadEvent(ctx context.Context, e *LeadEvent) error {
	var metadataJSON sql.NullString
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = sql.NullString{String: string(b), Valid: true}
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lead_events (id, user_id, event_type, score, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Type, e.Score, metadataJSON, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLeadEvents(ctx context.Context, userID string) ([]*LeadEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_type, score, metadata, created_at
		 FROM lead_events WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead events: %w", err)
	}
	defer rows.Close()

	var events []*LeadEvent
	for rows.Next() {
		var e LeadEvent
		var metadataJSON sql.NullString
		var createdAt int64

		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Score, &metadataJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead event: %w", err)
		}

		if metadataJSON.Valid {
			if err := json.Unmarshal([]byte(metadataJSON.String), &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, &e)
	}

	return events, rows.Err()
}

func (s *SQLiteStore) ListLeadUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM lead_events ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (s *SQLiteStore) GetAssignment(ctx context.Context, testID, visitorID string) (string, error) {
	var variantID string
	err := s.db.QueryRowContext(ctx,
		`SELECT variant_id FROM assignments WHERE test_id = ? AND visitor_id = ?`,
		testID, visitorID,
	).Scan(&variantID)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query assignment: %w", err)
	}
	return variantID, nil
}

func (s *SQLiteStore) PutAssignment(ctx context.Context, testID, visitorID, variantID string) error {
	// First write wins: a concurrent assignment for the same pair keeps
	// the stored variant so bucketing stays sticky.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (test_id, visitor_id, variant_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (test_id, visitor_id) DO NOTHING`,
		testID, visitorID, variantID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordABEvent(ctx context.Context, e *ABEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Value == 0 {
		e.Value = 1
	}

	// Dedup per (test, visitor, event type): repeat exposures and repeat
	// conversions from the same visitor count once.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ab_events (test_id, variant_id, event_type, visitor_id, value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (test_id, visitor_id, event_type) DO NOTHING`,
		e.TestID, e.VariantID, e.EventType, e.VisitorID, e.Value, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ab event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetVariantStats(ctx context.Context, testID string) ([]VariantStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT variant_id,
		        COUNT(CASE WHEN event_type = 'impression' THEN 1 END) as impressions,
		        COUNT(CASE WHEN event_type = 'conversion' THEN 1 END) as conversions
		 FROM ab_events
		 WHERE test_id = ?
		 GROUP BY variant_id
		 ORDER BY variant_id`,
		testID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query variant stats: %w", err)
	}
	defer rows.Close()

	var stats []VariantStats
	for rows.Next() {
		var vs VariantStats
		if err := rows.Scan(&vs.VariantID, &vs.Impressions, &vs.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan variant stats: %w", err)
		}
		stats = append(stats, vs)
	}

	return stats, rows.Err()
}

func (s *SQLiteStore) GetABEvents(ctx context.Context, testID string) ([]*ABEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, test_id, variant_id, event_type, visitor_id, value, created_at
		 FROM ab_events WHERE test_id = ? ORDER BY created_at, id`,
		testID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ab events: %w", err)
	}
	defer rows.Close()

	var events []*ABEvent
	for rows.Next() {
		var e ABEvent
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.TestID, &e.VariantID, &e.EventType, &e.VisitorID, &e.Value, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan ab event: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, &e)
	}

	return events, rows.Err()
}

func (s *SQLiteStore) AddSubscriber(ctx context.Context, sub *Subscriber) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO subscribers (email, first_name, last_name, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		sub.Email, sub.FirstName, sub.LastName, sub.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	sub.ID = id
	return nil
}

func (s *SQLiteStore) AddContact(ctx context.Context, msg *ContactMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (name, email, message, company, phone, service, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.Name, msg.Email, msg.Message, msg.Company, msg.Phone, msg.Service, msg.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	msg.ID = id
	return nil
}

// DB exposes the underlying database for health checks.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}
