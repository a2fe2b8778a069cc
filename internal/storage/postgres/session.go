package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSessionNotFound is returned when a session lookup yields no results.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoActiveSession is returned when no session is currently active.
var ErrNoActiveSession = errors.New("no active session")

// Session is one play session. At most one session is active at a time;
// starting a new session closes the previous one with the campaign
// clock's current date.
type Session struct {
	ID            int64     `json:"id"`
	SessionNumber int       `json:"session_number"`
	Name          string    `json:"name"`
	StartedAt     time.Time `json:"started_at"`
	StartYear     int       `json:"start_year"`
	StartMonth    int       `json:"start_month"`
	StartDay      int       `json:"start_day"`
	StartHour     float64   `json:"start_hour"`
	EndYear       *int      `json:"end_year"`
	EndMonth      *int      `json:"end_month"`
	EndDay        *int      `json:"end_day"`
	EndHour       *float64  `json:"end_hour"`
	IsActive      bool      `json:"is_active"`
}

// SessionNote is a free-form referee note attached to a session, stamped
// with the in-game date.
type SessionNote struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	LogYear   int       `json:"log_year"`
	LogMonth  int       `json:"log_month"`
	LogDay    int       `json:"log_day"`
	Hour      float64   `json:"hour"`
	HexID     string    `json:"hex_id,omitempty"`
	Message   string    `json:"message"`
}

// SessionRepository provides play-session and note persistence.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, session_number, COALESCE(name, ''), started_at,
	COALESCE(start_year, 0), COALESCE(start_month, 0), COALESCE(start_day, 0), COALESCE(start_hour, 0),
	end_year, end_month, end_day, end_hour, is_active`

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.SessionNumber, &s.Name, &s.StartedAt,
		&s.StartYear, &s.StartMonth, &s.StartDay, &s.StartHour,
		&s.EndYear, &s.EndMonth, &s.EndDay, &s.EndHour, &s.IsActive,
	)
	return s, err
}

// List returns all sessions, most recent first.
func (r *SessionRepository) List(ctx context.Context) ([]Session, error) {
	rows, err := r.db.Query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY session_number DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Get returns the session with the given ID.
//
// Postcondition: Returns the session or ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, id int64) (Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("getting session %d: %w", id, err)
	}
	return s, nil
}

// Active returns the currently active session.
//
// Postcondition: Returns the active session or ErrNoActiveSession.
func (r *SessionRepository) Active(ctx context.Context) (Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE is_active`))
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNoActiveSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("getting active session: %w", err)
	}
	return s, nil
}

// ActiveID returns the active session's ID, or nil when none is active.
// Log appends use it to tag entries with their session.
func (r *SessionRepository) ActiveID(ctx context.Context) (*int64, error) {
	s, err := r.Active(ctx)
	if errors.Is(err, ErrNoActiveSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s.ID, nil
}

// Start closes any active session at the given campaign clock position
// and opens the next-numbered session starting there.
func (r *SessionRepository) Start(ctx context.Context, s State) (Session, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("beginning session start: %w", err)
	}
	defer tx.Rollback(ctx)

	// Numbering follows the highest existing session, not the active one,
	// so ended or deleted sessions never cause a UNIQUE collision.
	var nextNumber int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(session_number), 0) + 1 FROM sessions`).
		Scan(&nextNumber); err != nil {
		return Session{}, fmt.Errorf("computing next session number: %w", err)
	}

	var activeID int64
	err = tx.QueryRow(ctx, `SELECT id FROM sessions WHERE is_active`).Scan(&activeID)
	switch {
	case err == nil:
		if _, err := tx.Exec(ctx, `
			UPDATE sessions SET is_active = FALSE,
				end_year = $2, end_month = $3, end_day = $4, end_hour = $5
			WHERE id = $1`,
			activeID, s.CurrentYear, s.CurrentMonth, s.CurrentDayOfMonth, s.CurrentHour,
		); err != nil {
			return Session{}, fmt.Errorf("closing session %d: %w", activeID, err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		// First session of the campaign.
	default:
		return Session{}, fmt.Errorf("finding active session: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO sessions (session_number, is_active, start_year, start_month, start_day, start_hour)
		VALUES ($1, TRUE, $2, $3, $4, $5)
		RETURNING id`,
		nextNumber, s.CurrentYear, s.CurrentMonth, s.CurrentDayOfMonth, s.CurrentHour,
	).Scan(&id); err != nil {
		return Session{}, fmt.Errorf("inserting session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, fmt.Errorf("committing session start: %w", err)
	}
	return r.Get(ctx, id)
}

// Rename sets a session's display name.
//
// Postcondition: Returns ErrSessionNotFound when no row was updated.
func (r *SessionRepository) Rename(ctx context.Context, id int64, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE sessions SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("renaming session %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session. Its notes go with it and its log entries
// are detached, both enforced by the schema's foreign keys.
//
// Postcondition: Returns ErrSessionNotFound when no row was deleted.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Notes returns a session's notes in chronological order.
func (r *SessionRepository) Notes(ctx context.Context, sessionID int64) ([]SessionNote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, timestamp, log_year, log_month, log_day, hour, COALESCE(hex_id, ''), message
		FROM session_notes WHERE session_id = $1 ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing session notes: %w", err)
	}
	defer rows.Close()

	notes := make([]SessionNote, 0)
	for rows.Next() {
		var n SessionNote
		if err := rows.Scan(&n.ID, &n.SessionID, &n.Timestamp,
			&n.LogYear, &n.LogMonth, &n.LogDay, &n.Hour, &n.HexID, &n.Message); err != nil {
			return nil, fmt.Errorf("scanning session note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// AddNote appends a note to a session and returns it with its ID set.
func (r *SessionRepository) AddNote(ctx context.Context, n SessionNote) (SessionNote, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO session_notes (session_id, log_year, log_month, log_day, hour, hex_id, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, timestamp`,
		n.SessionID, n.LogYear, n.LogMonth, n.LogDay, n.Hour, n.HexID, n.Message,
	).Scan(&n.ID, &n.Timestamp)
	if err != nil {
		return SessionNote{}, fmt.Errorf("inserting session note: %w", err)
	}
	return n, nil
}

// DeleteNote removes one note.
func (r *SessionRepository) DeleteNote(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM session_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session note %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
