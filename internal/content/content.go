// Package content loads seed content for a campaign from YAML files:
// terrain type definitions and the campaign calendar. Seed files are
// validated before use so a broken file fails at load time rather than
// surfacing as odd behavior mid-session.
package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/game/terrain"
)

// yamlTerrainFile is the top-level YAML structure for terrain seed files.
type yamlTerrainFile struct {
	Terrains []yamlTerrain `yaml:"terrains"`
}

// yamlTerrain is the YAML representation of a terrain type.
type yamlTerrain struct {
	Name                      string  `yaml:"name"`
	HexType                   string  `yaml:"hex_type"`
	Description               string  `yaml:"description"`
	TravelSpeedModifier       float64 `yaml:"travel_speed_modifier"`
	TravelSpeedNotes          string  `yaml:"travel_speed_notes"`
	Visibility                string  `yaml:"visibility"`
	VisibilityMiles           float64 `yaml:"visibility_miles"`
	LosingDirectionFrequency  string  `yaml:"losing_direction_frequency"`
	LosingDirectionChance     string  `yaml:"losing_direction_chance"`
	LosingDirectionNotes      string  `yaml:"losing_direction_notes"`
	ForagingChance            string  `yaml:"foraging_chance"`
	ForagingYield             string  `yaml:"foraging_yield"`
	ForagingNotes             string  `yaml:"foraging_notes"`
	HuntingChance             string  `yaml:"hunting_chance"`
	HuntingYield              string  `yaml:"hunting_yield"`
	FishingChance             string  `yaml:"fishing_chance"`
	FishingYield              string  `yaml:"fishing_yield"`
	WanderingMonsterFrequency string  `yaml:"wandering_monster_frequency"`
	WanderingMonsterChance    string  `yaml:"wandering_monster_chance"`
	EncounterDistance         string  `yaml:"encounter_distance"`
	EvasionModifier           string  `yaml:"evasion_modifier"`
	SpecialRules              string  `yaml:"special_rules"`
	Color                     string  `yaml:"color"`
}

// yamlCalendarFile is the top-level YAML structure for calendar seed files.
type yamlCalendarFile struct {
	Calendar yamlCalendar `yaml:"calendar"`
}

// yamlCalendar is the YAML representation of a campaign calendar.
type yamlCalendar struct {
	Era    string           `yaml:"era"`
	Months []calendar.Month `yaml:"months"`
}

// LoadTerrainsFromFile reads and validates a terrain seed YAML file.
//
// Precondition: path must point to a valid YAML terrain file.
// Postcondition: Returns at least one validated terrain or a non-nil error.
func LoadTerrainsFromFile(path string) ([]terrain.Terrain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terrain file %s: %w", path, err)
	}
	return LoadTerrainsFromBytes(data)
}

// LoadTerrainsFromBytes parses and validates terrain types from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the terrain schema.
// Postcondition: Returns at least one validated terrain or a non-nil error.
func LoadTerrainsFromBytes(data []byte) ([]terrain.Terrain, error) {
	var file yamlTerrainFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing terrain YAML: %w", err)
	}
	if len(file.Terrains) == 0 {
		return nil, fmt.Errorf("terrain file defines no terrains")
	}

	seen := make(map[string]bool, len(file.Terrains))
	terrains := make([]terrain.Terrain, 0, len(file.Terrains))
	for _, yt := range file.Terrains {
		t := terrain.Terrain{
			Name:                      yt.Name,
			HexType:                   yt.HexType,
			Description:               yt.Description,
			TravelSpeedModifier:       yt.TravelSpeedModifier,
			TravelSpeedNotes:          yt.TravelSpeedNotes,
			Visibility:                yt.Visibility,
			VisibilityMiles:           yt.VisibilityMiles,
			LosingDirectionFrequency:  yt.LosingDirectionFrequency,
			LosingDirectionChance:     yt.LosingDirectionChance,
			LosingDirectionNotes:      yt.LosingDirectionNotes,
			ForagingChance:            yt.ForagingChance,
			ForagingYield:             yt.ForagingYield,
			ForagingNotes:             yt.ForagingNotes,
			HuntingChance:             yt.HuntingChance,
			HuntingYield:              yt.HuntingYield,
			FishingChance:             yt.FishingChance,
			FishingYield:              yt.FishingYield,
			WanderingMonsterFrequency: yt.WanderingMonsterFrequency,
			WanderingMonsterChance:    yt.WanderingMonsterChance,
			EncounterDistance:         yt.EncounterDistance,
			EvasionModifier:           yt.EvasionModifier,
			SpecialRules:              yt.SpecialRules,
			Color:                     yt.Color,
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("validating terrain %q: %w", yt.Name, err)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate terrain name %q", t.Name)
		}
		seen[t.Name] = true
		terrains = append(terrains, t)
	}
	return terrains, nil
}

// LoadCalendarFromFile reads and validates a calendar seed YAML file.
//
// Precondition: path must point to a valid YAML calendar file.
// Postcondition: Returns a validated Calendar or a non-nil error.
func LoadCalendarFromFile(path string) (*calendar.Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calendar file %s: %w", path, err)
	}
	return LoadCalendarFromBytes(data)
}

// LoadCalendarFromBytes parses and validates a calendar from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the calendar schema.
// Postcondition: Returns a validated Calendar or a non-nil error.
func LoadCalendarFromBytes(data []byte) (*calendar.Calendar, error) {
	var file yamlCalendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing calendar YAML: %w", err)
	}

	if err := calendar.ValidateMonths(file.Calendar.Months); err != nil {
		return nil, fmt.Errorf("validating calendar months: %w", err)
	}

	return calendar.New(file.Calendar.Months, file.Calendar.Era), nil
}
