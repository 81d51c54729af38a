package arb

import (
	"math"

	"odds-arb-calculator/internal/market"
	"odds-arb-calculator/internal/mathutil"
	"odds-arb-calculator/internal/odds"
)

// RawInputs are the calculator's fields as the user typed them.
type RawInputs struct {
	BufferBps        string `json:"buffer_bps"`
	SportsbookFormat string `json:"sportsbook_format"`
	SportsbookOdds   string `json:"sportsbook_odds"`
	SportsbookMax    string `json:"sportsbook_max_stake"`
	NotionalFee      string `json:"notional_fee"`
	ProfitFee        string `json:"profit_fee"`
	YesPrice         string `json:"yes_price"`
	YesQuantity      string `json:"yes_quantity"`
	NoPrice          string `json:"no_price"`
	NoQuantity       string `json:"no_quantity"`
}

// DefaultRawInputs is the calculator's starting position: a -110 sportsbook
// line against a 52/48 market with a 2% profit fee, which is not an arb.
func DefaultRawInputs() RawInputs {
	return RawInputs{
		BufferBps:        "20",
		SportsbookFormat: string(odds.FormatDecimal),
		SportsbookOdds:   "1.91",
		SportsbookMax:    "2500",
		NotionalFee:      "0",
		ProfitFee:        "0.02",
		YesPrice:         "0.52",
		YesQuantity:      "6000",
		NoPrice:          "0.48",
		NoQuantity:       "8000",
	}
}

// WithDefaults fills empty fields from DefaultRawInputs. Fields the user
// cleared on purpose should be sent as whitespace, not omitted.
func (r RawInputs) WithDefaults() RawInputs {
	d := DefaultRawInputs()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&r.BufferBps, d.BufferBps)
	fill(&r.SportsbookFormat, d.SportsbookFormat)
	fill(&r.SportsbookOdds, d.SportsbookOdds)
	fill(&r.SportsbookMax, d.SportsbookMax)
	fill(&r.NotionalFee, d.NotionalFee)
	fill(&r.ProfitFee, d.ProfitFee)
	fill(&r.YesPrice, d.YesPrice)
	fill(&r.YesQuantity, d.YesQuantity)
	fill(&r.NoPrice, d.NoPrice)
	fill(&r.NoQuantity, d.NoQuantity)
	return r
}

// SyncComplement fills an omitted YES or NO price with the complement of the
// other, keeping the decimal places typed ("0.52" gives "0.48"). A field
// that is present, even as whitespace, is left alone.
func (r RawInputs) SyncComplement() RawInputs {
	switch {
	case r.NoPrice == "" && r.YesPrice != "":
		if c, ok := market.Complement(r.YesPrice); ok {
			r.NoPrice = c
		}
	case r.YesPrice == "" && r.NoPrice != "":
		if c, ok := market.Complement(r.NoPrice); ok {
			r.YesPrice = c
		}
	}
	return r
}

// ParseInputs turns raw fields into engine inputs. Parsing is lenient so a
// half-typed form still produces a result: an unreadable buffer is 0 bps,
// unreadable fees are 0, unreadable sportsbook odds count as decimal 1 (no
// edge) while out-of-range odds such as decimal 0.5 leave that leg unusable,
// unreadable stake or quantity caps are unbounded, and an unreadable or
// non-positive price leaves its leg unusable.
func ParseInputs(r RawInputs) Inputs {
	return Inputs{
		BufferBps: mathutil.ParseFloatOr(r.BufferBps, 0),
		Sportsbook: ParseSportsbook(r.SportsbookFormat, r.SportsbookOdds, r.SportsbookMax),
		Fees: market.FeeSchedule{
			NotionalFee: mathutil.ParseFloatOr(r.NotionalFee, 0),
			ProfitFee:   mathutil.ParseFloatOr(r.ProfitFee, 0),
		},
		Book: market.Book{
			Yes: market.Side{
				Price:    mathutil.ParseFloatOr(r.YesPrice, 0),
				Quantity: mathutil.ParseFloatOr(r.YesQuantity, math.Inf(1)),
			},
			No: market.Side{
				Price:    mathutil.ParseFloatOr(r.NoPrice, 0),
				Quantity: mathutil.ParseFloatOr(r.NoQuantity, math.Inf(1)),
			},
		},
	}
}

// ParseSportsbook parses one sportsbook leg with the same leniency as
// ParseInputs. An empty format means decimal.
func ParseSportsbook(format, rawOdds, rawMax string) Sportsbook {
	return Sportsbook{
		Odds:     parseSportsbookOdds(format, rawOdds),
		MaxStake: mathutil.ParseFloatOr(rawMax, math.Inf(1)),
	}
}

func parseSportsbookOdds(format, raw string) odds.Quote {
	f, err := odds.ParseFormat(format)
	if err != nil {
		f = odds.FormatDecimal
	}
	q, err := odds.ParseQuote(f, raw)
	if err == nil {
		return q
	}
	// A number outside the format's domain keeps its value so the leg
	// prices as unusable; text that is not a number counts as decimal 1.
	if v, ok := mathutil.ParseFloat(raw); ok && f != odds.FormatFractional {
		return odds.Quote{Format: f, Value: v}
	}
	return odds.Decimal(1)
}
