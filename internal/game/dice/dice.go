// Package dice provides the randomness abstraction and roll-result types
// for the hex-crawl rules engine: tabletop dice expressions ("2d6+1",
// "4d6 × 10") and chance checks in "target:sides" notation ("2:6").
package dice

import "fmt"

// Result holds the full audit trail for a single dice expression evaluation.
//
// For a multiply-form expression ("4d6 × 10") Subtotal carries the inner
// total before the multiplier is applied and Multiplier is > 0. For the
// plain dice and integer forms both fields are zero.
//
// Postcondition: Total == sum(Rolls) + Modifier, times Multiplier when set.
type Result struct {
	Expression string `json:"expression"`
	Rolls      []int  `json:"rolls"`
	Modifier   int    `json:"modifier"`
	Subtotal   int    `json:"subtotal,omitempty"`
	Multiplier int    `json:"multiplier,omitempty"`
	Total      int    `json:"total"`
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r Result) String() string {
	if r.Expression == "" {
		panic("dice: Result.String() precondition violated: Expression must be non-empty")
	}
	if r.Multiplier > 0 {
		return fmt.Sprintf("%s → %v %+d = %d × %d = %d",
			r.Expression, r.Rolls, r.Modifier, r.Subtotal, r.Multiplier, r.Total)
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Rolls, r.Modifier, r.Total)
}

// ChanceCheck is the outcome of evaluating a "target:sides" chance string.
// Success is true iff Roll <= Target.
type ChanceCheck struct {
	Success    bool   `json:"success"`
	Roll       int    `json:"roll"`
	Target     int    `json:"target"`
	Sides      int    `json:"sides"`
	Expression string `json:"expression"`
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
