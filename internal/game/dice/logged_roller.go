package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, rolls, modifier,
// and total, so a referee can audit every check after the fact.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source {
	return r.src
}

// RollExpr parses and rolls a dice expression, logging the result.
//
// Postcondition: result logged at debug level; returns a Result or a
// parse error.
func (r *Roller) RollExpr(expr string) (Result, error) {
	result, err := RollExpr(expr, r.src)
	if err != nil {
		return Result{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("rolls", result.Rolls),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// RollChance evaluates a "target:sides" chance string, logging the outcome.
//
// Postcondition: check logged at debug level; returns a ChanceCheck or a
// parse error.
func (r *Roller) RollChance(chance string) (ChanceCheck, error) {
	check, err := RollChance(chance, r.src)
	if err != nil {
		return ChanceCheck{}, err
	}
	r.logger.Debug("chance check",
		zap.String("expression", check.Expression),
		zap.Int("roll", check.Roll),
		zap.Int("target", check.Target),
		zap.Int("sides", check.Sides),
		zap.Bool("success", check.Success),
	)
	return check, nil
}
