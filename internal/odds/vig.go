package odds

import (
	"fmt"
	"math"
)

// VigMethod selects how a two-way overround is removed.
type VigMethod string

const (
	// VigProportional scales both sides by the same factor.
	VigProportional VigMethod = "proportional"
	// VigPower raises both sides to a common exponent, which deflates the
	// longshot more than the favorite.
	VigPower VigMethod = "power"
)

// RemoveVig normalizes a two-way pair of implied probabilities with the
// chosen method so that the pair sums to 1.
func RemoveVig(method VigMethod, impliedA, impliedB float64) (float64, float64, error) {
	if !(impliedA > 0) || !(impliedB > 0) {
		return 0, 0, fmt.Errorf("implied pair %v/%v: %w", impliedA, impliedB, ErrInvalidInput)
	}

	switch method {
	case VigProportional, "":
		total := impliedA + impliedB
		return impliedA / total, impliedB / total, nil
	case VigPower:
		if impliedA >= 1 || impliedB >= 1 {
			return 0, 0, fmt.Errorf("power method needs both sides below 1: %w", ErrInvalidInput)
		}
		if math.Abs(impliedA+impliedB-1.0) < 1e-9 {
			return impliedA, impliedB, nil
		}
		k := powerExponent(impliedA, impliedB)
		return math.Pow(impliedA, k), math.Pow(impliedB, k), nil
	}
	return 0, 0, fmt.Errorf("vig method %q: %w", method, ErrInvalidInput)
}

// powerExponent bisects for k with p1^k + p2^k = 1. For p in (0,1) the sum
// falls as k grows, so an overround pair needs k > 1 and an underround pair k < 1.
func powerExponent(p1, p2 float64) float64 {
	const (
		tolerance = 1e-9
		maxIters  = 100
	)

	low, high := 0.01, 10.0
	for i := 0; i < maxIters; i++ {
		mid := (low + high) / 2
		sum := math.Pow(p1, mid) + math.Pow(p2, mid)

		if math.Abs(sum-1.0) < tolerance {
			return mid
		}
		if sum > 1 {
			low = mid
		} else {
			high = mid
		}
	}
	return (low + high) / 2
}
