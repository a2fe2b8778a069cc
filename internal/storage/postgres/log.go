package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LogEntry is one line of the session log: an in-game-dated record of a
// travel, foraging, hunting, navigation, encounter, weather, or time event.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID *int64    `json:"session_id"`
	LogYear   int       `json:"log_year"`
	LogMonth  int       `json:"log_month"`
	LogDay    int       `json:"log_day"`
	Hour      float64   `json:"hour"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
}

// LogRepository provides session-log persistence.
type LogRepository struct {
	db *pgxpool.Pool
}

// NewLogRepository creates a LogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewLogRepository(db *pgxpool.Pool) *LogRepository {
	return &LogRepository{db: db}
}

// Append inserts a log entry and returns its ID.
func (r *LogRepository) Append(ctx context.Context, e LogEntry) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO session_log (session_id, log_year, log_month, log_day, hour, category, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.SessionID, e.LogYear, e.LogMonth, e.LogDay, e.Hour, e.Category, e.Message,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("appending log entry: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries in chronological order, optionally
// filtered to one session.
func (r *LogRepository) Recent(ctx context.Context, limit int, sessionID *int64) ([]LogEntry, error) {
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, timestamp, session_id, log_year, log_month, log_day, hour, category, message
		FROM session_log`
	args := []any{limit}
	if sessionID != nil {
		query += ` WHERE session_id = $2`
		args = append(args, *sessionID)
	}
	query += ` ORDER BY id DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing log entries: %w", err)
	}
	defer rows.Close()

	entries := make([]LogEntry, 0, limit)
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID,
			&e.LogYear, &e.LogMonth, &e.LogDay, &e.Hour, &e.Category, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first query, oldest-first response.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// All returns every entry for the given session in chronological order.
// Session exports use it; unlike Recent it applies no limit.
func (r *LogRepository) All(ctx context.Context, sessionID int64) ([]LogEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, timestamp, session_id, log_year, log_month, log_day, hour, category, message
		FROM session_log
		WHERE session_id = $1
		ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing session log entries: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID,
			&e.LogYear, &e.LogMonth, &e.LogDay, &e.Hour, &e.Category, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// MaxID returns the highest log entry ID, or 0 when the log is empty.
// The undo history uses it as a watermark.
func (r *LogRepository) MaxID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM session_log`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("getting max log id: %w", err)
	}
	return id, nil
}

// DeleteAfter removes every entry with an ID greater than the watermark.
// Restoring a snapshot calls this to drop the entries the undone actions
// wrote.
func (r *LogRepository) DeleteAfter(ctx context.Context, watermark int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM session_log WHERE id > $1`, watermark)
	if err != nil {
		return fmt.Errorf("deleting log entries after %d: %w", watermark, err)
	}
	return nil
}
