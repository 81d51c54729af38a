package odds

import (
	"fmt"
	"sync"

	"odds-arb-calculator/internal/mathutil"
)

// Display precision per representation.
const (
	PercentagePlaces = 2
	AmericanPlaces   = 0
	DecimalPlaces    = 2
)

// Outcome describes what an update did to the converter state.
type Outcome string

const (
	// OutcomeApplied: the source parsed and siblings were regenerated.
	OutcomeApplied Outcome = "applied"
	// OutcomeRejected: the source did not parse; every field kept its value.
	OutcomeRejected Outcome = "rejected"
	// OutcomeCleared: the source parsed to a probability outside (0,1);
	// siblings were cleared.
	OutcomeCleared Outcome = "cleared"
)

// Field is one representation in the converter. Value is the unrounded
// number, Display the value rounded for that field's display precision.
// Fractional fields carry their parts in Fraction and n/d in Value.
type Field struct {
	Value    float64  `json:"value"`
	Display  float64  `json:"display"`
	Fraction Fraction `json:"fraction"`
	Valid    bool     `json:"valid"`
}

// State holds all four representations of one probability.
type State struct {
	Percentage Field `json:"percentage"`
	American   Field `json:"american"`
	Decimal    Field `json:"decimal"`
	Fractional Field `json:"fractional"`
}

func (s *State) field(f Format) *Field {
	switch f {
	case FormatPercentage:
		return &s.Percentage
	case FormatAmerican:
		return &s.American
	case FormatDecimal:
		return &s.Decimal
	case FormatFractional:
		return &s.Fractional
	}
	return nil
}

// Field returns the field for format f.
func (s State) Field(f Format) (Field, bool) {
	p := s.field(f)
	if p == nil {
		return Field{}, false
	}
	return *p, true
}

// Conversion is the result of one converter update.
type Conversion struct {
	Source      Format  `json:"source"`
	Raw         string  `json:"raw"`
	Outcome     Outcome `json:"outcome"`
	Probability float64 `json:"probability"`
	State       State   `json:"state"`
	Err         error   `json:"-"`
}

// Converter keeps the four representations consistent. A bad source value
// leaves every field untouched, a source that parses but yields a probability
// outside (0,1) clears them, and a derived conversion that fails is skipped.
type Converter struct {
	mu    sync.Mutex
	state State
}

// NewConverter returns a converter seeded with -110 (52.38%, 1.91, 10/11).
func NewConverter() *Converter {
	c := &Converter{}
	c.Set(FormatAmerican, "-110")
	return c
}

// NewConverterFromState returns a converter holding a caller-supplied state,
// for stateless callers that round-trip the state between requests.
func NewConverterFromState(s State) *Converter {
	return &Converter{state: s}
}

// State returns a copy of the current state.
func (c *Converter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set applies raw as the new value of the format field.
func (c *Converter) Set(format Format, raw string) Conversion {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv := Conversion{Source: format, Raw: raw}
	src := c.state.field(format)
	if src == nil {
		conv.Outcome = OutcomeRejected
		conv.Err = fmt.Errorf("odds format %q: %w", format, ErrInvalidInput)
		conv.State = c.state
		return conv
	}

	q, err := ParseQuote(format, raw)
	if err != nil {
		conv.Outcome = OutcomeRejected
		conv.Err = err
		conv.State = c.state
		return conv
	}

	*src = sourceField(q)

	p, err := q.Probability()
	if err != nil || !ValidProbability(p) {
		src.Valid = false
		for _, f := range Formats {
			if f != format {
				*c.state.field(f) = Field{}
			}
		}
		conv.Outcome = OutcomeCleared
		conv.Err = fmt.Errorf("probability %v: %w", p, ErrInvalidInput)
		conv.State = c.state
		return conv
	}

	for _, f := range Formats {
		if f == format {
			continue
		}
		if derived, ok := derivedField(f, p); ok {
			*c.state.field(f) = derived
		}
	}

	conv.Outcome = OutcomeApplied
	conv.Probability = p
	conv.State = c.state
	return conv
}

func sourceField(q Quote) Field {
	if q.Format == FormatFractional {
		ratio := q.Fraction.Numerator / q.Fraction.Denominator
		return Field{Value: ratio, Display: ratio, Fraction: q.Fraction, Valid: true}
	}
	return Field{Value: q.Value, Display: q.Value, Valid: true}
}

// derivedField renders p in format f. Each field is rounded from the
// unrounded probability, never from another field's display value.
func derivedField(f Format, p float64) (Field, bool) {
	switch f {
	case FormatPercentage:
		v, err := ProbabilityToPercentage(p)
		if err != nil {
			return Field{}, false
		}
		return Field{Value: v, Display: mathutil.Round(v, PercentagePlaces), Valid: true}, true

	case FormatAmerican:
		v, err := ProbabilityToAmerican(p)
		if err != nil || !mathutil.IsFinite(v) {
			return Field{}, false
		}
		return Field{Value: v, Display: mathutil.Round(v, AmericanPlaces), Valid: true}, true

	case FormatDecimal:
		v, err := ProbabilityToDecimal(p)
		if err != nil || !mathutil.IsFinite(v) || v < 1 {
			return Field{}, false
		}
		return Field{Value: v, Display: mathutil.Round(v, DecimalPlaces), Valid: true}, true

	case FormatFractional:
		frac, err := ProbabilityToFractional(p)
		if err != nil || frac.Denominator == 0 {
			return Field{}, false
		}
		ratio := frac.Numerator / frac.Denominator
		return Field{Value: ratio, Display: ratio, Fraction: frac, Valid: true}, true
	}
	return Field{}, false
}
