package odds

import (
	"errors"
	"fmt"
	"math"

	"odds-arb-calculator/internal/mathutil"
)

// ErrInvalidInput is returned for non-numeric, zero or out-of-domain odds.
var ErrInvalidInput = errors.New("invalid odds input")

// Continued-fraction limits for ProbabilityToFractional.
const (
	fractionTolerance = 1e-9
	fractionMaxIters  = 100
)

// Fraction is fractional odds n/d (profit n per stake d).
type Fraction struct {
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
}

func (f Fraction) String() string {
	return fmt.Sprintf("%g/%g", f.Numerator, f.Denominator)
}

// ValidProbability reports whether p lies strictly inside (0,1).
func ValidProbability(p float64) bool {
	return !math.IsNaN(p) && p > 0 && p < 1
}

// AmericanToProbability converts American odds to implied probability.
// Example: -150 → 0.6 (60%), +150 → 0.4 (40%)
func AmericanToProbability(odds float64) (float64, error) {
	if odds == 0 || !mathutil.IsFinite(odds) {
		return 0, fmt.Errorf("american odds %v: %w", odds, ErrInvalidInput)
	}

	if odds > 0 {
		// Underdog: probability = 100 / (odds + 100)
		return 100.0 / (odds + 100.0), nil
	}
	// Favorite: probability = |odds| / (|odds| + 100)
	return math.Abs(odds) / (math.Abs(odds) + 100.0), nil
}

// DecimalToProbability converts decimal odds (≥ 1) to implied probability.
func DecimalToProbability(decimal float64) (float64, error) {
	if decimal < 1 || !mathutil.IsFinite(decimal) {
		return 0, fmt.Errorf("decimal odds %v: %w", decimal, ErrInvalidInput)
	}
	return 1.0 / decimal, nil
}

// FractionalToProbability converts fractional odds n/d to implied probability.
func FractionalToProbability(numerator, denominator float64) (float64, error) {
	if !(numerator > 0) || !(denominator > 0) || !mathutil.IsFinite(numerator) || !mathutil.IsFinite(denominator) {
		return 0, fmt.Errorf("fractional odds %v/%v: %w", numerator, denominator, ErrInvalidInput)
	}
	return denominator / (numerator + denominator), nil
}

// PercentageToProbability converts a percentage in (0,100) to a probability.
func PercentageToProbability(pct float64) (float64, error) {
	if !(pct > 0 && pct < 100) {
		return 0, fmt.Errorf("percentage %v: %w", pct, ErrInvalidInput)
	}
	return pct / 100.0, nil
}

// ProbabilityToAmerican converts a probability to American odds.
// Favorites (p ≥ 0.5) come out negative, so 0.5 maps to -100.
func ProbabilityToAmerican(p float64) (float64, error) {
	if !ValidProbability(p) {
		return 0, fmt.Errorf("probability %v: %w", p, ErrInvalidInput)
	}
	if p >= 0.5 {
		return -(p * 100.0) / (1 - p), nil
	}
	return 100.0 * (1 - p) / p, nil
}

// ProbabilityToDecimal converts a probability to decimal odds.
func ProbabilityToDecimal(p float64) (float64, error) {
	if !ValidProbability(p) {
		return 0, fmt.Errorf("probability %v: %w", p, ErrInvalidInput)
	}
	return 1.0 / p, nil
}

// ProbabilityToPercentage converts a probability to a percentage.
func ProbabilityToPercentage(p float64) (float64, error) {
	if !ValidProbability(p) {
		return 0, fmt.Errorf("probability %v: %w", p, ErrInvalidInput)
	}
	return p * 100.0, nil
}

// ProbabilityToFractional approximates decimal-1 as a rational n/d using
// continued-fraction convergents. Iteration stops once the convergent is
// within a relative 1e-9 of the target, the expansion terminates, or after
// 100 terms, whichever comes first.
func ProbabilityToFractional(p float64) (Fraction, error) {
	decimal, err := ProbabilityToDecimal(p)
	if err != nil {
		return Fraction{}, err
	}
	target := decimal - 1

	// h/k are the current convergent, h2/k2 the previous one.
	h1, h2 := 1.0, 0.0
	k1, k2 := 0.0, 1.0
	b := target

	for i := 0; i < fractionMaxIters; i++ {
		a := math.Floor(b)
		h1, h2 = a*h1+h2, h1
		k1, k2 = a*k1+k2, k1

		if mathutil.ApproxEqual(target, h1/k1, target*fractionTolerance) {
			break
		}
		if b-a == 0 {
			break
		}
		b = 1 / (b - a)
	}

	if k1 == 0 || !mathutil.IsFinite(h1) || !mathutil.IsFinite(k1) {
		return Fraction{}, fmt.Errorf("probability %v has no fractional form: %w", p, ErrInvalidInput)
	}
	return Fraction{Numerator: h1, Denominator: k1}, nil
}
