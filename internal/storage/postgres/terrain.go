package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forbiddennorth/hexcrawl/internal/game/terrain"
)

// ErrTerrainNotFound is returned when a terrain lookup yields no results.
var ErrTerrainNotFound = errors.New("terrain not found")

const terrainColumns = `
	id, name, COALESCE(hex_type, ''), description,
	travel_speed_modifier, COALESCE(travel_speed_notes, ''),
	COALESCE(visibility, ''), visibility_miles,
	COALESCE(losing_direction_frequency, ''), COALESCE(losing_direction_chance, ''),
	COALESCE(losing_direction_notes, ''),
	COALESCE(foraging_chance, ''), COALESCE(foraging_yield, ''), COALESCE(foraging_notes, ''),
	COALESCE(hunting_chance, ''), COALESCE(hunting_yield, ''),
	COALESCE(fishing_chance, ''), COALESCE(fishing_yield, ''),
	COALESCE(wandering_monster_frequency, ''), COALESCE(wandering_monster_chance, ''),
	COALESCE(encounter_distance, ''), COALESCE(evasion_modifier, ''),
	COALESCE(special_rules, ''), color`

// TerrainRepository provides terrain-type persistence operations.
type TerrainRepository struct {
	db *pgxpool.Pool
}

// NewTerrainRepository creates a TerrainRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTerrainRepository(db *pgxpool.Pool) *TerrainRepository {
	return &TerrainRepository{db: db}
}

func scanTerrain(row pgx.Row) (terrain.Terrain, error) {
	var t terrain.Terrain
	err := row.Scan(
		&t.ID, &t.Name, &t.HexType, &t.Description,
		&t.TravelSpeedModifier, &t.TravelSpeedNotes,
		&t.Visibility, &t.VisibilityMiles,
		&t.LosingDirectionFrequency, &t.LosingDirectionChance, &t.LosingDirectionNotes,
		&t.ForagingChance, &t.ForagingYield, &t.ForagingNotes,
		&t.HuntingChance, &t.HuntingYield,
		&t.FishingChance, &t.FishingYield,
		&t.WanderingMonsterFrequency, &t.WanderingMonsterChance,
		&t.EncounterDistance, &t.EvasionModifier,
		&t.SpecialRules, &t.Color,
	)
	return t, err
}

// List returns all terrain types ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *TerrainRepository) List(ctx context.Context) ([]terrain.Terrain, error) {
	rows, err := r.db.Query(ctx, `SELECT `+terrainColumns+` FROM terrain_types ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing terrains: %w", err)
	}
	defer rows.Close()

	terrains := make([]terrain.Terrain, 0)
	for rows.Next() {
		t, err := scanTerrain(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning terrain row: %w", err)
		}
		terrains = append(terrains, t)
	}
	return terrains, rows.Err()
}

// Get returns the terrain with the given ID.
//
// Postcondition: Returns the terrain or ErrTerrainNotFound.
func (r *TerrainRepository) Get(ctx context.Context, id int64) (terrain.Terrain, error) {
	t, err := scanTerrain(r.db.QueryRow(ctx,
		`SELECT `+terrainColumns+` FROM terrain_types WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return terrain.Terrain{}, ErrTerrainNotFound
	}
	if err != nil {
		return terrain.Terrain{}, fmt.Errorf("getting terrain %d: %w", id, err)
	}
	return t, nil
}

// Create inserts a new terrain type and returns it with its ID set.
//
// Precondition: t must pass terrain.Validate.
func (r *TerrainRepository) Create(ctx context.Context, t terrain.Terrain) (terrain.Terrain, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO terrain_types
			(name, hex_type, description, travel_speed_modifier, travel_speed_notes,
			 visibility, visibility_miles,
			 losing_direction_frequency, losing_direction_chance, losing_direction_notes,
			 foraging_chance, foraging_yield, foraging_notes,
			 hunting_chance, hunting_yield, fishing_chance, fishing_yield,
			 wandering_monster_frequency, wandering_monster_chance,
			 encounter_distance, evasion_modifier, special_rules, color)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		RETURNING id`,
		t.Name, t.HexType, t.Description, t.TravelSpeedModifier, t.TravelSpeedNotes,
		t.Visibility, t.VisibilityMiles,
		t.LosingDirectionFrequency, t.LosingDirectionChance, t.LosingDirectionNotes,
		t.ForagingChance, t.ForagingYield, t.ForagingNotes,
		t.HuntingChance, t.HuntingYield, t.FishingChance, t.FishingYield,
		t.WanderingMonsterFrequency, t.WanderingMonsterChance,
		t.EncounterDistance, t.EvasionModifier, t.SpecialRules, t.Color,
	).Scan(&t.ID)
	if err != nil {
		return terrain.Terrain{}, fmt.Errorf("inserting terrain: %w", err)
	}
	return t, nil
}

// Update applies an explicit optional-field patch to the terrain with the
// given ID and returns the updated row. The single-writer model makes the
// read-modify-write safe.
//
// Postcondition: fields absent from the patch are unchanged.
func (r *TerrainRepository) Update(ctx context.Context, id int64, patch terrain.Update) (terrain.Terrain, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return terrain.Terrain{}, err
	}

	t := patch.Apply(current)
	if err := t.Validate(); err != nil {
		return terrain.Terrain{}, err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE terrain_types SET
			name = $2, hex_type = $3, description = $4,
			travel_speed_modifier = $5, travel_speed_notes = $6,
			visibility = $7, visibility_miles = $8,
			losing_direction_frequency = $9, losing_direction_chance = $10,
			losing_direction_notes = $11,
			foraging_chance = $12, foraging_yield = $13, foraging_notes = $14,
			hunting_chance = $15, hunting_yield = $16,
			fishing_chance = $17, fishing_yield = $18,
			wandering_monster_frequency = $19, wandering_monster_chance = $20,
			encounter_distance = $21, evasion_modifier = $22,
			special_rules = $23, color = $24
		WHERE id = $1`,
		id, t.Name, t.HexType, t.Description,
		t.TravelSpeedModifier, t.TravelSpeedNotes,
		t.Visibility, t.VisibilityMiles,
		t.LosingDirectionFrequency, t.LosingDirectionChance, t.LosingDirectionNotes,
		t.ForagingChance, t.ForagingYield, t.ForagingNotes,
		t.HuntingChance, t.HuntingYield,
		t.FishingChance, t.FishingYield,
		t.WanderingMonsterFrequency, t.WanderingMonsterChance,
		t.EncounterDistance, t.EvasionModifier, t.SpecialRules, t.Color,
	)
	if err != nil {
		return terrain.Terrain{}, fmt.Errorf("updating terrain %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return terrain.Terrain{}, ErrTerrainNotFound
	}
	return t, nil
}

// Delete removes the terrain with the given ID.
//
// Postcondition: Returns ErrTerrainNotFound when no row was deleted.
func (r *TerrainRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM terrain_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting terrain %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTerrainNotFound
	}
	return nil
}

// Count returns the number of terrain types. Used by the seeder to avoid
// overwriting an already-populated table.
func (r *TerrainRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM terrain_types`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting terrains: %w", err)
	}
	return n, nil
}
