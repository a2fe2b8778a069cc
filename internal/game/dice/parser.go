package dice

import (
	"fmt"
	"regexp"
	"strconv"
)

// Expression represents a parsed dice expression ready to be rolled.
//
// Exactly one of two shapes holds after a successful Parse:
//   - dice form: Count >= 1, Sides >= 1, optional Modifier
//   - flat form: Count == 0 and Flat carries a bare integer value
//
// Multiplier > 0 marks the multiply form ("<inner> × K"); the inner
// expression is itself restricted to the dice or flat form. Nesting
// multiply forms is rejected by Parse.
type Expression struct {
	Raw        string // original input string
	Count      int    // number of dice (0 for the flat form)
	Sides      int    // faces per die
	Modifier   int    // flat modifier (may be negative)
	Flat       int    // bare integer value when Count == 0
	Multiplier int    // if > 0, the total is multiplied by this value
}

var (
	multiplyRe = regexp.MustCompile(`(?i)^(.+?)\s*[×x*]\s*([0-9]+)$`)
	diceRe     = regexp.MustCompile(`(?i)^([0-9]+)d([0-9]+)([+-][0-9]+)?$`)
)

// Parse parses a dice expression string into an Expression.
// Supported forms, tried in order: "<inner> × K" (also "x" or "*"),
// "NdS", "NdS+M", "NdS-M", and a bare integer.
//
// Postcondition: Returns a valid Expression or a descriptive error.
// Malformed input is an error, never a panic; callers treat it as
// "no action".
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	if m := multiplyRe.FindStringSubmatch(expr); m != nil {
		inner, err := parseSimple(m[1])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid multiplied expression %q: %w", expr, err)
		}
		mult, err := strconv.Atoi(m[2])
		if err != nil || mult < 1 {
			return Expression{}, fmt.Errorf("dice: invalid multiplier in %q", expr)
		}
		inner.Raw = expr
		inner.Multiplier = mult
		return inner, nil
	}

	return parseSimple(expr)
}

// parseSimple handles the dice and flat forms only. The multiply form is
// not recognized here, which is what rejects nested multipliers.
func parseSimple(expr string) (Expression, error) {
	if m := diceRe.FindStringSubmatch(expr); m != nil {
		count, err := strconv.Atoi(m[1])
		if err != nil || count < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", expr)
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die sides in %q", expr)
		}
		modifier := 0
		if m[3] != "" {
			modifier, err = strconv.Atoi(m[3])
			if err != nil {
				return Expression{}, fmt.Errorf("dice: invalid modifier in %q", expr)
			}
		}
		return Expression{Raw: expr, Count: count, Sides: sides, Modifier: modifier}, nil
	}

	// Fall back to a bare integer ("10" is a fixed yield of 10).
	if n, err := strconv.Atoi(expr); err == nil {
		return Expression{Raw: expr, Flat: n}, nil
	}

	return Expression{}, fmt.Errorf("dice: unparseable expression %q", expr)
}

var chanceRe = regexp.MustCompile(`^([0-9]+):([0-9]+)$`)

// ParseChance parses a "target:sides" chance string.
//
// Postcondition: Returns target >= 1 and sides >= 1, or an error.
func ParseChance(chance string) (target, sides int, err error) {
	m := chanceRe.FindStringSubmatch(chance)
	if m == nil {
		return 0, 0, fmt.Errorf("dice: invalid chance string %q", chance)
	}
	target, err = strconv.Atoi(m[1])
	if err != nil || target < 1 {
		return 0, 0, fmt.Errorf("dice: invalid chance target in %q", chance)
	}
	sides, err = strconv.Atoi(m[2])
	if err != nil || sides < 1 {
		return 0, 0, fmt.Errorf("dice: invalid chance sides in %q", chance)
	}
	return target, sides, nil
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
