package odds

import (
	"fmt"
	"strings"

	"odds-arb-calculator/internal/mathutil"
)

// Format identifies one representation of a win probability.
type Format string

const (
	FormatPercentage Format = "percentage"
	FormatAmerican   Format = "american"
	FormatDecimal    Format = "decimal"
	FormatFractional Format = "fractional"
)

// Formats lists every representation in display order.
var Formats = []Format{FormatPercentage, FormatAmerican, FormatDecimal, FormatFractional}

// ParseFormat maps a user-supplied name (case-insensitive, a few aliases) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage", "percent", "probability", "prob", "pct":
		return FormatPercentage, nil
	case "american", "us", "moneyline":
		return FormatAmerican, nil
	case "decimal", "dec", "eu":
		return FormatDecimal, nil
	case "fractional", "fraction", "frac", "uk":
		return FormatFractional, nil
	}
	return "", fmt.Errorf("unknown odds format %q", s)
}

// Quote is a tagged union over the four representations. Value holds the
// number for percentage, american and decimal quotes; Fraction holds the
// parts of a fractional quote.
type Quote struct {
	Format   Format   `json:"format"`
	Value    float64  `json:"value,omitempty"`
	Fraction Fraction `json:"fraction"`
}

func American(odds float64) Quote   { return Quote{Format: FormatAmerican, Value: odds} }
func Decimal(odds float64) Quote    { return Quote{Format: FormatDecimal, Value: odds} }
func Percentage(pct float64) Quote  { return Quote{Format: FormatPercentage, Value: pct} }
func Fractional(n, d float64) Quote { return Quote{Format: FormatFractional, Fraction: Fraction{n, d}} }

// Probability converts q to its implied probability.
func (q Quote) Probability() (float64, error) {
	switch q.Format {
	case FormatAmerican:
		return AmericanToProbability(q.Value)
	case FormatDecimal:
		return DecimalToProbability(q.Value)
	case FormatFractional:
		return FractionalToProbability(q.Fraction.Numerator, q.Fraction.Denominator)
	case FormatPercentage:
		return PercentageToProbability(q.Value)
	}
	return 0, fmt.Errorf("quote format %q: %w", q.Format, ErrInvalidInput)
}

// DecimalOdds returns q expressed as decimal odds.
func (q Quote) DecimalOdds() (float64, error) {
	if q.Format == FormatDecimal {
		if _, err := DecimalToProbability(q.Value); err != nil {
			return 0, err
		}
		return q.Value, nil
	}
	p, err := q.Probability()
	if err != nil {
		return 0, err
	}
	return ProbabilityToDecimal(p)
}

// QuoteFromProbability renders p in the given format.
func QuoteFromProbability(format Format, p float64) (Quote, error) {
	switch format {
	case FormatAmerican:
		v, err := ProbabilityToAmerican(p)
		return American(v), err
	case FormatDecimal:
		v, err := ProbabilityToDecimal(p)
		return Decimal(v), err
	case FormatFractional:
		f, err := ProbabilityToFractional(p)
		return Quote{Format: FormatFractional, Fraction: f}, err
	case FormatPercentage:
		v, err := ProbabilityToPercentage(p)
		return Percentage(v), err
	}
	return Quote{}, fmt.Errorf("quote format %q: %w", format, ErrInvalidInput)
}

// ParseQuote parses the raw text of a single field. Fractional odds are
// written "n/d" and both parts must be positive numbers.
func ParseQuote(format Format, raw string) (Quote, error) {
	if format == FormatFractional {
		parts := strings.Split(raw, "/")
		if len(parts) != 2 {
			return Quote{}, fmt.Errorf("fractional odds %q: %w", raw, ErrInvalidInput)
		}
		n, okN := mathutil.ParseFloat(parts[0])
		d, okD := mathutil.ParseFloat(parts[1])
		if !okN || !okD || n <= 0 || d <= 0 {
			return Quote{}, fmt.Errorf("fractional odds %q: %w", raw, ErrInvalidInput)
		}
		return Fractional(n, d), nil
	}

	v, ok := mathutil.ParseFloat(raw)
	if !ok {
		return Quote{}, fmt.Errorf("%s odds %q: %w", format, raw, ErrInvalidInput)
	}
	q := Quote{Format: format, Value: v}
	if _, err := q.Probability(); err != nil {
		return Quote{}, err
	}
	return q, nil
}
