package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
)

// ErrMonthNotFound is returned when a month patch targets an unknown
// month number.
var ErrMonthNotFound = errors.New("calendar month not found")

// MonthUpdate is the explicit optional-field patch for a single month.
// The month number itself is immutable; renumbering requires a wholesale
// replacement.
type MonthUpdate struct {
	Name   *string          `json:"name,omitempty"`
	Season *calendar.Season `json:"season,omitempty"`
	Days   *int             `json:"days,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (u MonthUpdate) Empty() bool {
	return u == (MonthUpdate{})
}

// CalendarRepository persists the calendar configuration: the era label
// and the ordered month table.
type CalendarRepository struct {
	db *pgxpool.Pool
}

// NewCalendarRepository creates a CalendarRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCalendarRepository(db *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Load reads the full calendar configuration and builds a Calendar from
// it. An unseeded table yields a Calendar that answers every query with
// its documented defaults.
func (r *CalendarRepository) Load(ctx context.Context) (*calendar.Calendar, error) {
	var era string
	err := r.db.QueryRow(ctx, `SELECT era_name FROM calendar_config WHERE id = 1`).Scan(&era)
	if errors.Is(err, pgx.ErrNoRows) {
		era = ""
	} else if err != nil {
		return nil, fmt.Errorf("loading calendar config: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT month_number, name, season, days FROM calendar_months ORDER BY month_number`)
	if err != nil {
		return nil, fmt.Errorf("loading calendar months: %w", err)
	}
	defer rows.Close()

	months := make([]calendar.Month, 0)
	for rows.Next() {
		var m calendar.Month
		if err := rows.Scan(&m.Number, &m.Name, &m.Season, &m.Days); err != nil {
			return nil, fmt.Errorf("scanning calendar month: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return calendar.New(months, era), nil
}

// ReplaceMonths swaps the whole month table for the given set in one
// transaction.
//
// Precondition: months must pass calendar.ValidateMonths.
func (r *CalendarRepository) ReplaceMonths(ctx context.Context, months []calendar.Month) error {
	if err := calendar.ValidateMonths(months); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning month replacement: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM calendar_months`); err != nil {
		return fmt.Errorf("clearing calendar months: %w", err)
	}
	for _, m := range months {
		if _, err := tx.Exec(ctx,
			`INSERT INTO calendar_months (month_number, name, season, days) VALUES ($1, $2, $3, $4)`,
			m.Number, m.Name, m.Season, m.Days,
		); err != nil {
			return fmt.Errorf("inserting month %d: %w", m.Number, err)
		}
	}

	return tx.Commit(ctx)
}

// UpdateMonth applies an optional-field patch to one month.
//
// Postcondition: Returns the updated month or ErrMonthNotFound.
func (r *CalendarRepository) UpdateMonth(ctx context.Context, number int, patch MonthUpdate) (calendar.Month, error) {
	var m calendar.Month
	err := r.db.QueryRow(ctx,
		`SELECT month_number, name, season, days FROM calendar_months WHERE month_number = $1`,
		number,
	).Scan(&m.Number, &m.Name, &m.Season, &m.Days)
	if errors.Is(err, pgx.ErrNoRows) {
		return calendar.Month{}, ErrMonthNotFound
	}
	if err != nil {
		return calendar.Month{}, fmt.Errorf("getting month %d: %w", number, err)
	}

	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Season != nil {
		if !patch.Season.Valid() {
			return calendar.Month{}, fmt.Errorf("calendar: unknown season %q", *patch.Season)
		}
		m.Season = *patch.Season
	}
	if patch.Days != nil {
		if *patch.Days < 1 {
			return calendar.Month{}, fmt.Errorf("calendar: day count must be positive, got %d", *patch.Days)
		}
		m.Days = *patch.Days
	}

	if _, err := r.db.Exec(ctx,
		`UPDATE calendar_months SET name = $2, season = $3, days = $4 WHERE month_number = $1`,
		m.Number, m.Name, m.Season, m.Days,
	); err != nil {
		return calendar.Month{}, fmt.Errorf("updating month %d: %w", number, err)
	}
	return m, nil
}

// SetEra updates the era label on the singleton config row, creating the
// row when the table is empty.
func (r *CalendarRepository) SetEra(ctx context.Context, era string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO calendar_config (id, era_name) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET era_name = EXCLUDED.era_name`, era)
	if err != nil {
		return fmt.Errorf("setting era: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the default month set and era when the calendar
// tables have no rows yet.
func (r *CalendarRepository) SeedIfEmpty(ctx context.Context, months []calendar.Month, era string) error {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM calendar_months`).Scan(&count); err != nil {
		return fmt.Errorf("counting calendar months: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := r.ReplaceMonths(ctx, months); err != nil {
		return err
	}
	return r.SetEra(ctx, era)
}
