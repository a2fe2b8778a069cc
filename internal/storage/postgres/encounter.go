package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forbiddennorth/hexcrawl/internal/game/encounter"
)

// ErrEncounterTableNotFound is returned when an encounter table lookup
// yields no results.
var ErrEncounterTableNotFound = errors.New("encounter table not found")

// ErrEncounterEntryNotFound is returned when an encounter entry lookup
// yields no results.
var ErrEncounterEntryNotFound = errors.New("encounter entry not found")

// EncounterRepository provides encounter table and entry persistence.
type EncounterRepository struct {
	db *pgxpool.Pool
}

// NewEncounterRepository creates an EncounterRepository backed by the
// given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterRepository(db *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{db: db}
}

// TablesForTerrain returns the encounter tables attached to a terrain type.
func (r *EncounterRepository) TablesForTerrain(ctx context.Context, terrainID int64) ([]encounter.Table, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, terrain_id, name, dice_expression
		FROM encounter_tables WHERE terrain_id = $1 ORDER BY id ASC`, terrainID)
	if err != nil {
		return nil, fmt.Errorf("listing encounter tables: %w", err)
	}
	defer rows.Close()

	tables := make([]encounter.Table, 0)
	for rows.Next() {
		var t encounter.Table
		if err := rows.Scan(&t.ID, &t.TerrainID, &t.Name, &t.DiceExpression); err != nil {
			return nil, fmt.Errorf("scanning encounter table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetTable returns one encounter table.
//
// Postcondition: Returns the table or ErrEncounterTableNotFound.
func (r *EncounterRepository) GetTable(ctx context.Context, id int64) (encounter.Table, error) {
	var t encounter.Table
	err := r.db.QueryRow(ctx, `
		SELECT id, terrain_id, name, dice_expression
		FROM encounter_tables WHERE id = $1`, id).
		Scan(&t.ID, &t.TerrainID, &t.Name, &t.DiceExpression)
	if errors.Is(err, pgx.ErrNoRows) {
		return encounter.Table{}, ErrEncounterTableNotFound
	}
	if err != nil {
		return encounter.Table{}, fmt.Errorf("getting encounter table %d: %w", id, err)
	}
	return t, nil
}

// Entries returns a table's entries ordered by roll range.
func (r *EncounterRepository) Entries(ctx context.Context, tableID int64) ([]encounter.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, table_id, roll_min, roll_max, description, COALESCE(number_appearing, ''), COALESCE(notes, '')
		FROM encounter_table_entries WHERE table_id = $1 ORDER BY roll_min ASC, id ASC`, tableID)
	if err != nil {
		return nil, fmt.Errorf("listing encounter entries: %w", err)
	}
	defer rows.Close()

	entries := make([]encounter.Entry, 0)
	for rows.Next() {
		var e encounter.Entry
		if err := rows.Scan(&e.ID, &e.TableID, &e.RollMin, &e.RollMax,
			&e.Description, &e.NumberAppearing, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning encounter entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateEntry adds an entry to a table and returns it with its ID set.
func (r *EncounterRepository) CreateEntry(ctx context.Context, e encounter.Entry) (encounter.Entry, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO encounter_table_entries (table_id, roll_min, roll_max, description, number_appearing, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id`,
		e.TableID, e.RollMin, e.RollMax, e.Description, e.NumberAppearing, e.Notes,
	).Scan(&e.ID)
	if err != nil {
		return encounter.Entry{}, fmt.Errorf("inserting encounter entry: %w", err)
	}
	return e, nil
}

// UpdateEntry replaces an entry's fields.
//
// Postcondition: Returns ErrEncounterEntryNotFound when no row was updated.
func (r *EncounterRepository) UpdateEntry(ctx context.Context, e encounter.Entry) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE encounter_table_entries
		SET roll_min = $2, roll_max = $3, description = $4,
			number_appearing = NULLIF($5, ''), notes = NULLIF($6, '')
		WHERE id = $1`,
		e.ID, e.RollMin, e.RollMax, e.Description, e.NumberAppearing, e.Notes)
	if err != nil {
		return fmt.Errorf("updating encounter entry %d: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEncounterEntryNotFound
	}
	return nil
}

// DeleteEntry removes one entry.
func (r *EncounterRepository) DeleteEntry(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM encounter_table_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting encounter entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEncounterEntryNotFound
	}
	return nil
}

// CreateTable adds an encounter table for a terrain.
func (r *EncounterRepository) CreateTable(ctx context.Context, t encounter.Table) (encounter.Table, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO encounter_tables (terrain_id, name, dice_expression)
		VALUES ($1, $2, $3)
		RETURNING id`,
		t.TerrainID, t.Name, t.DiceExpression,
	).Scan(&t.ID)
	if err != nil {
		return encounter.Table{}, fmt.Errorf("inserting encounter table: %w", err)
	}
	return t, nil
}

// DeleteTable removes a table and, via ON DELETE CASCADE, its entries.
func (r *EncounterRepository) DeleteTable(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM encounter_tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting encounter table %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEncounterTableNotFound
	}
	return nil
}
