package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forbiddennorth/hexcrawl/internal/game/travel"
)

// State is the single persisted campaign-state row (id = 1): where the
// party is, the campaign clock, and today's travel counters. JSON field
// names match the tracker's wire format.
type State struct {
	CurrentHexID       string  `json:"current_hex_id"`
	CurrentTerrainID   *int64  `json:"current_terrain_id"`
	HoursTraveledToday float64 `json:"hours_traveled_today"`
	HexesTraveledToday int     `json:"hexes_traveled_today"`
	CurrentYear        int     `json:"current_year"`
	CurrentMonth       int     `json:"current_month"`
	CurrentDayOfMonth  int     `json:"current_day_of_month"`
	CurrentHour        float64 `json:"current_hour"`
	MovementRate       float64 `json:"movement_rate"`
}

// Clock converts the persisted state into a travel.Clock.
func (s State) Clock() travel.Clock {
	return travel.Clock{
		Year:         s.CurrentYear,
		Month:        s.CurrentMonth,
		Day:          s.CurrentDayOfMonth,
		Hour:         s.CurrentHour,
		HoursToday:   s.HoursTraveledToday,
		HexesToday:   s.HexesTraveledToday,
		MovementRate: s.MovementRate,
	}
}

// WithClock returns a copy of the state with the clock fields replaced.
func (s State) WithClock(c travel.Clock) State {
	s.CurrentYear = c.Year
	s.CurrentMonth = c.Month
	s.CurrentDayOfMonth = c.Day
	s.CurrentHour = c.Hour
	s.HoursTraveledToday = c.HoursToday
	s.HexesTraveledToday = c.HexesToday
	return s
}

// StateUpdate is the explicit optional-field patch for manual state
// edits; only non-nil fields are applied.
type StateUpdate struct {
	CurrentHexID       *string  `json:"current_hex_id,omitempty"`
	CurrentTerrainID   *int64   `json:"current_terrain_id,omitempty"`
	HoursTraveledToday *float64 `json:"hours_traveled_today,omitempty"`
	HexesTraveledToday *int     `json:"hexes_traveled_today,omitempty"`
	CurrentYear        *int     `json:"current_year,omitempty"`
	CurrentMonth       *int     `json:"current_month,omitempty"`
	CurrentDayOfMonth  *int     `json:"current_day_of_month,omitempty"`
	CurrentHour        *float64 `json:"current_hour,omitempty"`
	MovementRate       *float64 `json:"movement_rate,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (u StateUpdate) Empty() bool {
	return u == (StateUpdate{})
}

// Apply copies the patch's non-nil fields onto s and returns the result.
func (u StateUpdate) Apply(s State) State {
	if u.CurrentHexID != nil {
		s.CurrentHexID = *u.CurrentHexID
	}
	if u.CurrentTerrainID != nil {
		s.CurrentTerrainID = u.CurrentTerrainID
	}
	if u.HoursTraveledToday != nil {
		s.HoursTraveledToday = *u.HoursTraveledToday
	}
	if u.HexesTraveledToday != nil {
		s.HexesTraveledToday = *u.HexesTraveledToday
	}
	if u.CurrentYear != nil {
		s.CurrentYear = *u.CurrentYear
	}
	if u.CurrentMonth != nil {
		s.CurrentMonth = *u.CurrentMonth
	}
	if u.CurrentDayOfMonth != nil {
		s.CurrentDayOfMonth = *u.CurrentDayOfMonth
	}
	if u.CurrentHour != nil {
		s.CurrentHour = *u.CurrentHour
	}
	if u.MovementRate != nil {
		s.MovementRate = *u.MovementRate
	}
	return s
}

// CampaignRepository provides access to the singleton campaign-state row.
// Writers must be serialized by the caller; two concurrent writes based
// on the same snapshot are last-write-wins.
type CampaignRepository struct {
	db *pgxpool.Pool
}

// NewCampaignRepository creates a CampaignRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Get returns the campaign state.
//
// Postcondition: Returns the singleton row; the migration guarantees it
// exists.
func (r *CampaignRepository) Get(ctx context.Context) (State, error) {
	var s State
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(current_hex_id, ''), current_terrain_id,
		       hours_traveled_today, hexes_traveled_today,
		       current_year, current_month, current_day_of_month, current_hour,
		       movement_rate
		FROM campaign_state WHERE id = 1`,
	).Scan(
		&s.CurrentHexID, &s.CurrentTerrainID,
		&s.HoursTraveledToday, &s.HexesTraveledToday,
		&s.CurrentYear, &s.CurrentMonth, &s.CurrentDayOfMonth, &s.CurrentHour,
		&s.MovementRate,
	)
	if err != nil {
		return State{}, fmt.Errorf("getting campaign state: %w", err)
	}
	return s, nil
}

// Put overwrites the campaign state with s.
func (r *CampaignRepository) Put(ctx context.Context, s State) error {
	_, err := r.db.Exec(ctx, `
		UPDATE campaign_state SET
			current_hex_id = $1, current_terrain_id = $2,
			hours_traveled_today = $3, hexes_traveled_today = $4,
			current_year = $5, current_month = $6, current_day_of_month = $7,
			current_hour = $8, movement_rate = $9
		WHERE id = 1`,
		s.CurrentHexID, s.CurrentTerrainID,
		s.HoursTraveledToday, s.HexesTraveledToday,
		s.CurrentYear, s.CurrentMonth, s.CurrentDayOfMonth,
		s.CurrentHour, s.MovementRate,
	)
	if err != nil {
		return fmt.Errorf("updating campaign state: %w", err)
	}
	return nil
}

// Patch applies an explicit optional-field update and returns the new state.
func (r *CampaignRepository) Patch(ctx context.Context, u StateUpdate) (State, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return State{}, err
	}
	s = u.Apply(s)
	if err := r.Put(ctx, s); err != nil {
		return State{}, err
	}
	return s, nil
}
