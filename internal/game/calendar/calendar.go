// Package calendar implements the campaign's in-game calendar: a
// configurable ordered list of named months with heterogeneous day
// counts and season tags, plus date arithmetic with month and year
// rollover. Months have no fixed length, so every date advance walks
// month by month instead of using a fixed modulus.
package calendar

import (
	"fmt"
	"sort"
)

// Season is one of the four seasons a month can be tagged with.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// Valid reports whether s is one of the four known seasons.
func (s Season) Valid() bool {
	switch s {
	case SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall:
		return true
	}
	return false
}

// ParseSeason converts a string into a Season.
//
// Postcondition: Returns a valid Season or a descriptive error.
func ParseSeason(s string) (Season, error) {
	season := Season(s)
	if !season.Valid() {
		return "", fmt.Errorf("calendar: unknown season %q", s)
	}
	return season, nil
}

// Month is one configured month of the campaign calendar.
//
// Invariant (enforced by ValidateMonths on wholesale replacement):
// Number values are contiguous 1..N, Season is one of the four known
// seasons, and Days is positive.
type Month struct {
	Number int    `json:"month_number" yaml:"month_number"`
	Name   string `json:"name" yaml:"name"`
	Season Season `json:"season" yaml:"season"`
	Days   int    `json:"days" yaml:"days"`
}

// Lookup defaults for partially-seeded calendars. Unknown months resolve
// to forgiving fallbacks instead of errors; callers rely on this.
const (
	DefaultEra       = "P.I."
	DefaultMonthDays = 30

	unknownMonthName      = "???"
	fallbackMonthsPerYear = 12
	fallbackUnknownSeason = SeasonSummer
)

// Date is an in-game calendar date.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Calendar answers month-name, day-count, season, and date-arithmetic
// queries against one configured month set and era label. It is an
// immutable value; rebuild it when the configuration changes.
type Calendar struct {
	months   []Month
	byNumber map[int]Month
	era      string
}

// New builds a Calendar from the given months and era label. Months are
// sorted by Number; insertion order is irrelevant. An empty era falls
// back to DefaultEra.
func New(months []Month, era string) *Calendar {
	sorted := make([]Month, len(months))
	copy(sorted, months)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	byNumber := make(map[int]Month, len(sorted))
	for _, m := range sorted {
		byNumber[m.Number] = m
	}

	if era == "" {
		era = DefaultEra
	}
	return &Calendar{months: sorted, byNumber: byNumber, era: era}
}

// Months returns the configured months in numeric order.
func (c *Calendar) Months() []Month {
	out := make([]Month, len(c.months))
	copy(out, c.months)
	return out
}

// MonthName returns the configured name for a 1-based month number, or
// "???" for unknown month numbers (including 0 and numbers beyond the
// configured count).
func (c *Calendar) MonthName(month int) string {
	if m, ok := c.byNumber[month]; ok {
		return m.Name
	}
	return unknownMonthName
}

// DaysInMonth returns the configured day count for a month, or 30 when
// the month is unknown.
func (c *Calendar) DaysInMonth(month int) int {
	if m, ok := c.byNumber[month]; ok {
		return m.Days
	}
	return DefaultMonthDays
}

// MonthsPerYear returns the number of configured months, falling back to
// 12 when the month table is empty so date formatting stays defined.
func (c *Calendar) MonthsPerYear() int {
	if len(c.months) == 0 {
		return fallbackMonthsPerYear
	}
	return len(c.months)
}

// Era returns the era label appended to formatted dates.
func (c *Calendar) Era() string {
	return c.era
}

// FormatDate renders a date as "<day> <monthName>, <year> <era>".
func (c *Calendar) FormatDate(day, month, year int) string {
	return fmt.Sprintf("%d %s, %d %s", day, c.MonthName(month), year, c.era)
}

// SeasonOf returns the configured season for a month, defaulting to
// summer when the month is unknown.
func (c *Calendar) SeasonOf(month int) Season {
	if m, ok := c.byNumber[month]; ok {
		return m.Season
	}
	return fallbackUnknownSeason
}

// Advance moves a date forward by the given number of days, handling
// month and year rollover. Months have heterogeneous day counts, so the
// remaining day total is re-checked against each month in turn; a single
// call may roll over multiple months and years. days == 0 is a no-op.
//
// Precondition: days >= 0.
func (c *Calendar) Advance(date Date, days int) Date {
	d := date.Day + days
	m := date.Month
	y := date.Year

	dim := c.DaysInMonth(m)
	for d > dim {
		d -= dim
		m++
		if m > c.MonthsPerYear() {
			m = 1
			y++
		}
		dim = c.DaysInMonth(m)
	}

	return Date{Year: y, Month: m, Day: d}
}

// ValidateMonths checks the invariants required for a wholesale month
// replacement: at least one month, numbers contiguous 1..N with no gaps
// or duplicates, known seasons, positive day counts.
//
// Postcondition: Returns nil when ms is a valid month set.
func ValidateMonths(ms []Month) error {
	if len(ms) == 0 {
		return fmt.Errorf("calendar: month set must not be empty")
	}

	seen := make(map[int]bool, len(ms))
	for _, m := range ms {
		if m.Number < 1 || m.Number > len(ms) {
			return fmt.Errorf("calendar: month number %d out of range 1..%d", m.Number, len(ms))
		}
		if seen[m.Number] {
			return fmt.Errorf("calendar: duplicate month number %d", m.Number)
		}
		seen[m.Number] = true
		if !m.Season.Valid() {
			return fmt.Errorf("calendar: month %d has unknown season %q", m.Number, m.Season)
		}
		if m.Days < 1 {
			return fmt.Errorf("calendar: month %d must have a positive day count, got %d", m.Number, m.Days)
		}
		if m.Name == "" {
			return fmt.Errorf("calendar: month %d must have a name", m.Number)
		}
	}
	return nil
}
