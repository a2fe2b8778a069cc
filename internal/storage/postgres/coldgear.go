package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrColdGearNotFound is returned when a cold-gear lookup yields no results.
var ErrColdGearNotFound = errors.New("cold gear item not found")

// ColdGearItem is one cold-weather gear option. TempShift moves the
// effective temperature band by that many steps; NegatesGear marks
// conditions such as being wet that cancel worn gear entirely.
type ColdGearItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	TempShift   int    `json:"temp_shift"`
	NegatesGear bool   `json:"negates_gear"`
}

// DefaultColdGear returns the gear options the campaign ships with.
func DefaultColdGear() []ColdGearItem {
	return []ColdGearItem{
		{Name: "No cold gear", TempShift: 0},
		{Name: "Light cold gear", TempShift: 1},
		{Name: "Heavy cold gear", TempShift: 2},
		{Name: "Wet", TempShift: -1, NegatesGear: true},
	}
}

// ColdGearRepository provides cold-weather gear persistence.
type ColdGearRepository struct {
	db *pgxpool.Pool
}

// NewColdGearRepository creates a ColdGearRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewColdGearRepository(db *pgxpool.Pool) *ColdGearRepository {
	return &ColdGearRepository{db: db}
}

// List returns all items, warmest first.
func (r *ColdGearRepository) List(ctx context.Context) ([]ColdGearItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, temp_shift, negates_gear
		FROM cold_gear_items ORDER BY temp_shift DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing cold gear: %w", err)
	}
	defer rows.Close()

	items := make([]ColdGearItem, 0)
	for rows.Next() {
		var item ColdGearItem
		if err := rows.Scan(&item.ID, &item.Name, &item.TempShift, &item.NegatesGear); err != nil {
			return nil, fmt.Errorf("scanning cold gear item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Create inserts an item and returns it with its ID set.
func (r *ColdGearRepository) Create(ctx context.Context, item ColdGearItem) (ColdGearItem, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO cold_gear_items (name, temp_shift, negates_gear)
		VALUES ($1, $2, $3)
		RETURNING id`,
		item.Name, item.TempShift, item.NegatesGear,
	).Scan(&item.ID)
	if err != nil {
		return ColdGearItem{}, fmt.Errorf("inserting cold gear item: %w", err)
	}
	return item, nil
}

// Delete removes one item.
//
// Postcondition: Returns ErrColdGearNotFound when no row was deleted.
func (r *ColdGearRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cold_gear_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting cold gear item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrColdGearNotFound
	}
	return nil
}

// SeedIfEmpty inserts the given items when the table has no rows.
func (r *ColdGearRepository) SeedIfEmpty(ctx context.Context, items []ColdGearItem) error {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cold_gear_items`).Scan(&count); err != nil {
		return fmt.Errorf("counting cold gear items: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, item := range items {
		if _, err := r.Create(ctx, item); err != nil {
			return fmt.Errorf("seeding cold gear %q: %w", item.Name, err)
		}
	}
	return nil
}
