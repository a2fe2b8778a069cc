// Package encounter resolves wandering-monster encounter tables: a roll
// on the table's dice expression selects the entry whose roll range
// contains the total, and the entry's number-appearing expression is
// rolled when present.
package encounter

import (
	"fmt"

	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
)

// Table is an encounter table attached to a terrain type.
type Table struct {
	ID             int64  `json:"id"`
	TerrainID      int64  `json:"terrain_id"`
	Name           string `json:"name"`
	DiceExpression string `json:"dice_expression"`
}

// Entry is one row of an encounter table, covering rolls in
// [RollMin, RollMax].
type Entry struct {
	ID              int64  `json:"id"`
	TableID         int64  `json:"table_id"`
	RollMin         int    `json:"roll_min"`
	RollMax         int    `json:"roll_max"`
	Description     string `json:"description"`
	NumberAppearing string `json:"number_appearing,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Contains reports whether the entry covers the given roll total.
func (e Entry) Contains(roll int) bool {
	return e.RollMin <= roll && roll <= e.RollMax
}

// Result is a resolved encounter roll. Entry is a synthesized "no
// encounter" row when the total falls outside every configured range;
// an off-table roll is a quiet hex, not an error.
type Result struct {
	Table           Table        `json:"table"`
	Roll            dice.Result  `json:"diceResult"`
	Entry           Entry        `json:"entry"`
	NumberAppearing *dice.Result `json:"numberAppearing,omitempty"`
}

// Resolve rolls on the table and picks the matching entry.
//
// Precondition: src must be non-nil; entries belong to table.
// Postcondition: Returns a Result, or an error when the table's dice
// expression or a matched entry's number-appearing expression is
// malformed.
func Resolve(table Table, entries []Entry, src dice.Source) (Result, error) {
	roll, err := dice.RollExpr(table.DiceExpression, src)
	if err != nil {
		return Result{}, fmt.Errorf("encounter: rolling on table %q: %w", table.Name, err)
	}

	result := Result{
		Table: table,
		Roll:  roll,
		Entry: Entry{Description: "No encounter (roll not on table)"},
	}

	for _, e := range entries {
		if !e.Contains(roll.Total) {
			continue
		}
		result.Entry = e
		if e.NumberAppearing != "" {
			num, err := dice.RollExpr(e.NumberAppearing, src)
			if err != nil {
				return Result{}, fmt.Errorf("encounter: rolling number appearing %q: %w", e.NumberAppearing, err)
			}
			result.NumberAppearing = &num
		}
		break
	}

	return result, nil
}
