// Package weather implements the seasonal d12 weather tables: each
// season maps a 1d12 roll to a fixed (weather, air, day temperature,
// night temperature) tuple. The table contents are a data asset from the
// reference ruleset and must be reproduced verbatim, not derived.
package weather

import (
	"fmt"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
)

// Weather kinds.
const (
	Clear    = "Clear"
	Clouds   = "Clouds"
	Fog      = "Fog"
	Rain     = "Rain"
	Snow     = "Snow"
	Storm    = "Storm"
	Blizzard = "Blizzard"
)

// Air movement kinds.
const (
	Calm   = "Calm"
	Breeze = "Breeze"
	Wind   = "Wind"
	Gale   = "Gale"
)

// Temperature bands, mildest to harshest.
const (
	Mild     = "Mild"
	Cold     = "Cold"
	VeryCold = "Very Cold"
	Severe   = "Severe"
	Extreme  = "Extreme"
)

// Reading is the outcome of one weather roll.
type Reading struct {
	Roll      int             `json:"roll"`
	Weather   string          `json:"weather"`
	Air       string          `json:"air"`
	DayTemp   string          `json:"dayTemp"`
	NightTemp string          `json:"nightTemp"`
	Season    calendar.Season `json:"season"`
}

type row struct {
	weather, air, dayTemp, nightTemp string
}

// Per-season tables; index 0-11 corresponds to rolls 1-12.
var tables = map[calendar.Season][]row{
	calendar.SeasonSummer: {
		{Clear, Calm, Mild, Mild},     // 1
		{Clear, Calm, Mild, Mild},     // 2
		{Clear, Calm, Mild, Mild},     // 3
		{Clear, Breeze, Mild, Mild},   // 4
		{Clear, Breeze, Mild, Mild},   // 5
		{Clouds, Calm, Mild, Mild},    // 6
		{Clouds, Breeze, Mild, Mild},  // 7
		{Clouds, Breeze, Mild, Mild},  // 8
		{Fog, Calm, Mild, Mild},       // 9
		{Rain, Calm, Mild, Mild},      // 10
		{Rain, Breeze, Mild, Mild},    // 11
		{Storm, Gale, Mild, Cold},     // 12
	},
	calendar.SeasonFall: {
		{Clear, Calm, Mild, Mild},     // 1
		{Clear, Calm, Mild, Mild},     // 2
		{Clear, Calm, Mild, Mild},     // 3
		{Clear, Breeze, Mild, Mild},   // 4
		{Clear, Wind, Mild, Cold},     // 5
		{Clouds, Calm, Mild, Cold},    // 6
		{Clouds, Breeze, Mild, Cold},  // 7
		{Clouds, Wind, Mild, Cold},    // 8
		{Rain, Calm, Cold, Cold},      // 9
		{Rain, Breeze, Cold, Cold},    // 10
		{Rain, Wind, Cold, Cold},      // 11
		{Storm, Gale, Cold, Severe},   // 12
	},
	calendar.SeasonWinter: {
		{Clear, Calm, VeryCold, Severe},      // 1
		{Clear, Calm, VeryCold, Severe},      // 2
		{Clear, Breeze, VeryCold, Severe},    // 3
		{Clear, Breeze, VeryCold, Severe},    // 4
		{Clouds, Calm, VeryCold, Severe},     // 5
		{Clouds, Calm, VeryCold, Severe},     // 6
		{Clouds, Breeze, VeryCold, Severe},   // 7
		{Clouds, Wind, VeryCold, Severe},     // 8
		{Snow, Calm, Cold, VeryCold},         // 9
		{Snow, Breeze, Cold, VeryCold},       // 10
		{Blizzard, Calm, Severe, Extreme},    // 11
		{Blizzard, Gale, Severe, Extreme},    // 12
	},
	calendar.SeasonSpring: {
		{Clear, Calm, Cold, VeryCold},  // 1
		{Clear, Calm, Cold, Cold},      // 2
		{Clear, Calm, Cold, Cold},      // 3
		{Clear, Breeze, Cold, Cold},    // 4
		{Clear, Breeze, Mild, Cold},    // 5
		{Clear, Wind, Mild, Cold},      // 6
		{Fog, Calm, Mild, Cold},        // 7
		{Clouds, Calm, Mild, Cold},     // 8
		{Clouds, Breeze, Mild, Mild},   // 9
		{Rain, Calm, Mild, Mild},       // 10
		{Rain, Wind, Mild, Mild},       // 11
		{Storm, Gale, Mild, Mild},      // 12
	},
}

// Roll rolls 1d12 on the table for the given season.
//
// Postcondition: Returns a Reading with Roll in [1, 12], or an error for
// an unknown season.
func Roll(season calendar.Season, src dice.Source) (Reading, error) {
	table, ok := tables[season]
	if !ok {
		return Reading{}, fmt.Errorf("weather: unknown season %q", season)
	}

	result, err := dice.RollExpr("1d12", src)
	if err != nil {
		return Reading{}, err
	}

	entry := table[result.Total-1]
	return Reading{
		Roll:      result.Total,
		Weather:   entry.weather,
		Air:       entry.air,
		DayTemp:   entry.dayTemp,
		NightTemp: entry.nightTemp,
		Season:    season,
	}, nil
}
