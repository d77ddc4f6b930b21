package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/events"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New creates a new SQLite storage backend
func New(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// GetStreak returns the failure streak for a task key. A key with no recorded
// failures returns a zero-count streak.
func (s *SQLiteStorage) GetStreak(ctx context.Context, taskKey string) (*types.FailureStreak, error) {
	if taskKey == "" {
		return nil, fmt.Errorf("task key is required")
	}

	streak := &types.FailureStreak{TaskKey: taskKey}
	err := s.db.QueryRowContext(ctx, `
		SELECT consecutive_failures, last_updated
		FROM failure_streaks WHERE task_key = ?
	`, taskKey).Scan(&streak.ConsecutiveFailures, &streak.LastUpdated)
	if err == sql.ErrNoRows {
		return streak, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query failure streak: %w", err)
	}

	return streak, nil
}

// IncrementStreak atomically increments the counter for a task key, capped at
// the given maximum. The upsert runs inside SQLite so two sequential gate
// runs can never lose an update to a stale in-process read.
func (s *SQLiteStorage) IncrementStreak(ctx context.Context, taskKey string, ceiling int) (*types.FailureStreak, error) {
	if taskKey == "" {
		return nil, fmt.Errorf("task key is required")
	}
	if ceiling < 1 {
		return nil, fmt.Errorf("streak cap must be positive (got %d)", ceiling)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failure_streaks (task_key, consecutive_failures, last_updated)
		VALUES (?, 1, ?)
		ON CONFLICT(task_key) DO UPDATE SET
			consecutive_failures = MIN(consecutive_failures + 1, ?),
			last_updated = ?
	`, taskKey, now, ceiling, now)
	if err != nil {
		return nil, fmt.Errorf("failed to increment failure streak: %w", err)
	}

	return s.GetStreak(ctx, taskKey)
}

// ResetStreak sets the counter for a task key back to zero.
func (s *SQLiteStorage) ResetStreak(ctx context.Context, taskKey string) (*types.FailureStreak, error) {
	if taskKey == "" {
		return nil, fmt.Errorf("task key is required")
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failure_streaks (task_key, consecutive_failures, last_updated)
		VALUES (?, 0, ?)
		ON CONFLICT(task_key) DO UPDATE SET
			consecutive_failures = 0,
			last_updated = ?
	`, taskKey, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to reset failure streak: %w", err)
	}

	return s.GetStreak(ctx, taskKey)
}

// RecordRun appends a gate run summary to the run history.
func (s *SQLiteStorage) RecordRun(ctx context.Context, rec *GateRunRecord) error {
	if rec.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if rec.TaskKey == "" {
		return fmt.Errorf("task key is required")
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gate_runs
			(run_id, task_key, status, check_count, blocking_count, warning_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.TaskKey, rec.Status, rec.CheckCount, rec.BlockingCount,
		rec.WarningCount, rec.DurationMs, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record gate run: %w", err)
	}

	return nil
}

// RecentRuns returns the most recent run records, newest first.
func (s *SQLiteStorage) RecentRuns(ctx context.Context, taskKey string, limit int) ([]*GateRunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT run_id, task_key, status, check_count, blocking_count, warning_count, duration_ms, created_at
		FROM gate_runs`
	args := []interface{}{}
	if taskKey != "" {
		query += ` WHERE task_key = ?`
		args = append(args, taskKey)
	}
	query += ` ORDER BY created_at DESC, run_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gate runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*GateRunRecord
	for rows.Next() {
		rec := &GateRunRecord{}
		if err := rows.Scan(&rec.RunID, &rec.TaskKey, &rec.Status, &rec.CheckCount,
			&rec.BlockingCount, &rec.WarningCount, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gate run: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// StoreEvent appends an event to the gate activity feed.
func (s *SQLiteStorage) StoreEvent(ctx context.Context, event *events.GateEvent) error {
	if event.ID == "" {
		return fmt.Errorf("event id is required")
	}

	var dataJSON []byte
	if event.Data != nil {
		var err error
		dataJSON, err = json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("failed to serialize event data: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gate_events (id, type, timestamp, run_id, task_key, severity, message, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, string(event.Type), event.Timestamp, event.RunID, event.TaskKey,
		string(event.Severity), event.Message, string(dataJSON))
	if err != nil {
		return fmt.Errorf("failed to store gate event: %w", err)
	}

	return nil
}

// GetEvents returns activity feed events matching the filter, oldest first.
func (s *SQLiteStorage) GetEvents(ctx context.Context, filter events.Filter) ([]*events.GateEvent, error) {
	query := `
		SELECT id, type, timestamp, run_id, task_key, severity, message, data
		FROM gate_events WHERE 1=1`
	args := []interface{}{}

	if filter.TaskKey != "" {
		query += ` AND task_key = ?`
		args = append(args, filter.TaskKey)
	}
	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if !filter.AfterTime.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filter.AfterTime)
	}

	query += ` ORDER BY timestamp ASC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gate events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*events.GateEvent
	for rows.Next() {
		event := &events.GateEvent{}
		var eventType, severity string
		var runID, dataJSON sql.NullString

		if err := rows.Scan(&event.ID, &eventType, &event.Timestamp, &runID,
			&event.TaskKey, &severity, &event.Message, &dataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan gate event: %w", err)
		}

		event.Type = events.EventType(eventType)
		event.Severity = events.EventSeverity(severity)
		if runID.Valid {
			event.RunID = runID.String
		}
		if dataJSON.Valid && dataJSON.String != "" {
			if err := json.Unmarshal([]byte(dataJSON.String), &event.Data); err != nil {
				return nil, fmt.Errorf("failed to parse event data for %s: %w", event.ID, err)
			}
		}

		result = append(result, event)
	}

	return result, rows.Err()
}
