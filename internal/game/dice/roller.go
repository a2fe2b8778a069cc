package dice

// Roll evaluates a parsed Expression using the given Source.
//
// Each die consumes exactly one draw from src and is uniform over
// [1, Sides]. The flat form consumes no entropy.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Rolls) == expr.Count;
// result.Total == (sum(Rolls) + Modifier) * max(1, Multiplier).
func Roll(expr Expression, src Source) Result {
	if expr.Count == 0 {
		r := Result{Expression: expr.Raw, Rolls: []int{}, Total: expr.Flat}
		return applyMultiplier(r, expr.Multiplier)
	}

	rolls := make([]int, expr.Count)
	total := expr.Modifier
	for i := range rolls {
		rolls[i] = src.Intn(expr.Sides) + 1
		total += rolls[i]
	}

	r := Result{
		Expression: expr.Raw,
		Rolls:      rolls,
		Modifier:   expr.Modifier,
		Total:      total,
	}
	return applyMultiplier(r, expr.Multiplier)
}

func applyMultiplier(r Result, multiplier int) Result {
	if multiplier > 0 {
		r.Subtotal = r.Total
		r.Multiplier = multiplier
		r.Total *= multiplier
	}
	return r
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a Result or a parse error.
func RollExpr(expr string, src Source) (Result, error) {
	e, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}
	return Roll(e, src), nil
}

// RollChance parses a "target:sides" chance string, draws one die, and
// reports success iff roll <= target.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a ChanceCheck with Roll in [1, sides], or a
// parse error.
func RollChance(chance string, src Source) (ChanceCheck, error) {
	target, sides, err := ParseChance(chance)
	if err != nil {
		return ChanceCheck{}, err
	}
	roll := src.Intn(sides) + 1
	return ChanceCheck{
		Success:    roll <= target,
		Roll:       roll,
		Target:     target,
		Sides:      sides,
		Expression: chance,
	}, nil
}
