// Package terrain defines the terrain-type model consumed by the travel
// and chance engines, and the explicit patch struct used for partial
// updates.
package terrain

import "fmt"

// ChanceAuto is the sentinel chance string meaning an activity always
// succeeds in this terrain (e.g. foraging in farmlands). An empty chance
// string means the activity is impossible there, which is a non-error
// "not possible" outcome.
const ChanceAuto = "auto"

// Terrain is one terrain type. Chance fields use "target:sides" strings,
// yield and distance fields use dice expressions; all of them may be
// empty when the rule does not apply to the terrain.
type Terrain struct {
	ID                        int64   `json:"id"`
	Name                      string  `json:"name"`
	HexType                   string  `json:"hex_type,omitempty"`
	Description               string  `json:"description"`
	TravelSpeedModifier       float64 `json:"travel_speed_modifier"`
	TravelSpeedNotes          string  `json:"travel_speed_notes,omitempty"`
	Visibility                string  `json:"visibility,omitempty"`
	VisibilityMiles           float64 `json:"visibility_miles"`
	LosingDirectionFrequency  string  `json:"losing_direction_frequency,omitempty"`
	LosingDirectionChance     string  `json:"losing_direction_chance,omitempty"`
	LosingDirectionNotes      string  `json:"losing_direction_notes,omitempty"`
	ForagingChance            string  `json:"foraging_chance,omitempty"`
	ForagingYield             string  `json:"foraging_yield,omitempty"`
	ForagingNotes             string  `json:"foraging_notes,omitempty"`
	HuntingChance             string  `json:"hunting_chance,omitempty"`
	HuntingYield              string  `json:"hunting_yield,omitempty"`
	FishingChance             string  `json:"fishing_chance,omitempty"`
	FishingYield              string  `json:"fishing_yield,omitempty"`
	WanderingMonsterFrequency string  `json:"wandering_monster_frequency,omitempty"`
	WanderingMonsterChance    string  `json:"wandering_monster_chance,omitempty"`
	EncounterDistance         string  `json:"encounter_distance,omitempty"`
	EvasionModifier           string  `json:"evasion_modifier,omitempty"`
	SpecialRules              string  `json:"special_rules,omitempty"`
	Color                     string  `json:"color"`
}

// Validate checks the invariants required to store a terrain.
func (t Terrain) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("terrain: name must not be empty")
	}
	if t.TravelSpeedModifier < -1 {
		return fmt.Errorf("terrain: travel speed modifier must be >= -1, got %g", t.TravelSpeedModifier)
	}
	return nil
}

// Update is an explicit optional-field patch: only non-nil fields are
// applied. This replaces the dynamic "any field present" patch bodies of
// earlier trackers with a validated, per-field struct.
type Update struct {
	Name                      *string  `json:"name,omitempty"`
	HexType                   *string  `json:"hex_type,omitempty"`
	Description               *string  `json:"description,omitempty"`
	TravelSpeedModifier       *float64 `json:"travel_speed_modifier,omitempty"`
	TravelSpeedNotes          *string  `json:"travel_speed_notes,omitempty"`
	Visibility                *string  `json:"visibility,omitempty"`
	VisibilityMiles           *float64 `json:"visibility_miles,omitempty"`
	LosingDirectionFrequency  *string  `json:"losing_direction_frequency,omitempty"`
	LosingDirectionChance     *string  `json:"losing_direction_chance,omitempty"`
	LosingDirectionNotes      *string  `json:"losing_direction_notes,omitempty"`
	ForagingChance            *string  `json:"foraging_chance,omitempty"`
	ForagingYield             *string  `json:"foraging_yield,omitempty"`
	ForagingNotes             *string  `json:"foraging_notes,omitempty"`
	HuntingChance             *string  `json:"hunting_chance,omitempty"`
	HuntingYield              *string  `json:"hunting_yield,omitempty"`
	FishingChance             *string  `json:"fishing_chance,omitempty"`
	FishingYield              *string  `json:"fishing_yield,omitempty"`
	WanderingMonsterFrequency *string  `json:"wandering_monster_frequency,omitempty"`
	WanderingMonsterChance    *string  `json:"wandering_monster_chance,omitempty"`
	EncounterDistance         *string  `json:"encounter_distance,omitempty"`
	EvasionModifier           *string  `json:"evasion_modifier,omitempty"`
	SpecialRules              *string  `json:"special_rules,omitempty"`
	Color                     *string  `json:"color,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (u Update) Empty() bool {
	return u == (Update{})
}

// Apply copies the patch's non-nil fields onto t and returns the result.
//
// Postcondition: fields with nil patch values are unchanged.
func (u Update) Apply(t Terrain) Terrain {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.HexType != nil {
		t.HexType = *u.HexType
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.TravelSpeedModifier != nil {
		t.TravelSpeedModifier = *u.TravelSpeedModifier
	}
	if u.TravelSpeedNotes != nil {
		t.TravelSpeedNotes = *u.TravelSpeedNotes
	}
	if u.Visibility != nil {
		t.Visibility = *u.Visibility
	}
	if u.VisibilityMiles != nil {
		t.VisibilityMiles = *u.VisibilityMiles
	}
	if u.LosingDirectionFrequency != nil {
		t.LosingDirectionFrequency = *u.LosingDirectionFrequency
	}
	if u.LosingDirectionChance != nil {
		t.LosingDirectionChance = *u.LosingDirectionChance
	}
	if u.LosingDirectionNotes != nil {
		t.LosingDirectionNotes = *u.LosingDirectionNotes
	}
	if u.ForagingChance != nil {
		t.ForagingChance = *u.ForagingChance
	}
	if u.ForagingYield != nil {
		t.ForagingYield = *u.ForagingYield
	}
	if u.ForagingNotes != nil {
		t.ForagingNotes = *u.ForagingNotes
	}
	if u.HuntingChance != nil {
		t.HuntingChance = *u.HuntingChance
	}
	if u.HuntingYield != nil {
		t.HuntingYield = *u.HuntingYield
	}
	if u.FishingChance != nil {
		t.FishingChance = *u.FishingChance
	}
	if u.FishingYield != nil {
		t.FishingYield = *u.FishingYield
	}
	if u.WanderingMonsterFrequency != nil {
		t.WanderingMonsterFrequency = *u.WanderingMonsterFrequency
	}
	if u.WanderingMonsterChance != nil {
		t.WanderingMonsterChance = *u.WanderingMonsterChance
	}
	if u.EncounterDistance != nil {
		t.EncounterDistance = *u.EncounterDistance
	}
	if u.EvasionModifier != nil {
		t.EvasionModifier = *u.EvasionModifier
	}
	if u.SpecialRules != nil {
		t.SpecialRules = *u.SpecialRules
	}
	if u.Color != nil {
		t.Color = *u.Color
	}
	return t
}
