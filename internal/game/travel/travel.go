// Package travel implements the overland travel rules: terrain-adjusted
// travel speed, campaign clock advancement with calendar rollover, forced
// march detection, and losing-direction checks.
package travel

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
)

const (
	// HexMiles is the fixed edge-to-edge width of one map hex.
	HexMiles = 6.0
	// MaxTravelHours is the nominal daily travel budget; exceeding it is a
	// forced march.
	MaxTravelHours = 8.0
	// DefaultMovementRate is the party movement rate in feet used when no
	// rate is configured.
	DefaultMovementRate = 120.0
	// DayStartHour is the clock hour a rested party breaks camp.
	DayStartHour = 6.0
)

// Speed is the computed travel speed for one terrain and movement rate.
// All values are rounded to 2 decimals. HoursPerHex is +Inf when the
// terrain is impassable (speed modifier -1.0); that is a legitimate
// "cannot traverse" signal, not an error.
type Speed struct {
	MilesPerDay float64 `json:"milesPerDay"`
	HexesPerDay float64 `json:"hexesPerDay"`
	HoursPerHex float64 `json:"hoursPerHex"`
}

// MarshalJSON renders an infinite HoursPerHex as null, matching how the
// tracker's clients expect impassable terrain to serialize.
func (s Speed) MarshalJSON() ([]byte, error) {
	hoursPerHex := "null"
	if !math.IsInf(s.HoursPerHex, 0) {
		hoursPerHex = fmt.Sprintf("%g", s.HoursPerHex)
	}
	return []byte(fmt.Sprintf(`{"milesPerDay":%g,"hexesPerDay":%g,"hoursPerHex":%s}`,
		s.MilesPerDay, s.HexesPerDay, hoursPerHex)), nil
}

// Traversable reports whether the terrain can be crossed at all.
func (s Speed) Traversable() bool {
	return !math.IsInf(s.HoursPerHex, 1)
}

// CalculateSpeed converts a terrain speed modifier and a party movement
// rate (feet) into miles/day, hexes/day, and hours/hex. A modifier of 0
// is full speed, +0.5 is half again as fast, and -1.0 makes the terrain
// impassable. A movementRate <= 0 falls back to DefaultMovementRate.
//
// Postcondition: all fields rounded half-away-from-zero to 2 decimals;
// HoursPerHex == +Inf iff HexesPerDay == 0.
func CalculateSpeed(modifier, movementRate float64) Speed {
	if movementRate <= 0 {
		movementRate = DefaultMovementRate
	}

	baseMilesPerDay := movementRate / 5
	effectiveMilesPerDay := baseMilesPerDay * (1 + modifier)
	hexesPerDay := effectiveMilesPerDay / HexMiles
	hoursPerHex := MaxTravelHours / hexesPerDay

	return Speed{
		MilesPerDay: round2(effectiveMilesPerDay),
		HexesPerDay: round2(hexesPerDay),
		HoursPerHex: round2(hoursPerHex),
	}
}

// Clock is the campaign clock: the in-game date and hour plus the running
// travel counters for the current day.
//
// Invariant: Hour stays in [0, 24) and Day never exceeds the day count of
// its month once the clock has passed through AdvanceTime.
type Clock struct {
	Year         int
	Month        int
	Day          int
	Hour         float64
	HoursToday   float64
	HexesToday   int
	MovementRate float64
}

// Date returns the clock's calendar date.
func (c Clock) Date() calendar.Date {
	return calendar.Date{Year: c.Year, Month: c.Month, Day: c.Day}
}

// AdvanceTime moves the clock forward by the hours needed to enter one
// hex. The hex counter always increments by exactly 1 per call; this
// models "entering one hex", not an arbitrary distance, so callers must
// invoke it once per hex rather than batching multiple days of travel
// into one call.
//
// When the new hour crosses midnight, the day rolls over through the
// calendar (handling heterogeneous month lengths and year wrap) and the
// "today" counters are reset to just this traversal's hours and one hex:
// only the most recent day's partial progress survives a rollover.
//
// Postcondition: result.Hour in [0, 24), rounded to 2 decimals along
// with HoursToday; result.HexesToday == c.HexesToday + 1 or 1.
func AdvanceTime(cal *calendar.Calendar, c Clock, hoursToTraverse float64) Clock {
	newHour := c.Hour + hoursToTraverse
	hoursToday := c.HoursToday + hoursToTraverse
	hexesToday := c.HexesToday + 1

	daysToAdvance := 0
	for newHour >= 24 {
		newHour -= 24
		daysToAdvance++
		hoursToday = hoursToTraverse
		hexesToday = 1
	}

	date := c.Date()
	if daysToAdvance > 0 {
		date = cal.Advance(date, daysToAdvance)
	}

	return Clock{
		Year:         date.Year,
		Month:        date.Month,
		Day:          date.Day,
		Hour:         round2(newHour),
		HoursToday:   round2(hoursToday),
		HexesToday:   hexesToday,
		MovementRate: c.MovementRate,
	}
}

// IsForcedMarch reports whether the party has exceeded the daily travel
// budget. Exactly 8 hours is a full day's travel, not a forced march.
func IsForcedMarch(hoursToday float64) bool {
	return hoursToday > MaxTravelHours
}

// DirectionChance is a parsed losing-direction chance with any weather
// modifier applied. AdjustedTarget may exceed Sides, which simply means
// the party is always lost; it is deliberately left unclamped so callers
// can display it as-is.
type DirectionChance struct {
	BaseTarget     int `json:"baseTarget"`
	AdjustedTarget int `json:"adjustedTarget"`
	Sides          int `json:"sides"`
}

// ParseDirectionChance parses a "target:sides" chance string and adds the
// weather modifier (fog and storms make getting lost likelier) to the
// target.
//
// Postcondition: Returns a DirectionChance or a parse error.
func ParseDirectionChance(chance string, weatherModifier int) (DirectionChance, error) {
	target, sides, err := dice.ParseChance(chance)
	if err != nil {
		return DirectionChance{}, err
	}
	return DirectionChance{
		BaseTarget:     target,
		AdjustedTarget: target + weatherModifier,
		Sides:          sides,
	}, nil
}

// IsLost evaluates a direction check: the party is lost iff the roll is
// at or under the adjusted target.
func IsLost(roll int, chance DirectionChance) bool {
	return roll <= chance.AdjustedTarget
}

// round2 rounds half away from zero at the second decimal.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ json.Marshaler = Speed{}
