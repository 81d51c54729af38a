package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"odds-arb-calculator/internal/arb"
	"odds-arb-calculator/internal/market"
	"odds-arb-calculator/internal/odds"
)

// Float is a float64 that encodes NaN and ±Inf as null. Unusable legs carry
// +Inf costs and unbounded caps, which JSON cannot represent.
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// ConvertRequest is the body of POST /api/v1/odds/convert. State is the
// state from a previous response, sent back unchanged.
type ConvertRequest struct {
	Format string     `json:"format" validate:"required"`
	Value  string     `json:"value"`
	State  *StateView `json:"state,omitempty"`
}

// FieldView is one converter field on the wire.
type FieldView struct {
	Value    Float  `json:"value"`
	Display  Float  `json:"display"`
	Fraction string `json:"fraction,omitempty"`
	Valid    bool   `json:"valid"`
}

// StateView holds all four fields.
type StateView struct {
	Percentage FieldView `json:"percentage"`
	American   FieldView `json:"american"`
	Decimal    FieldView `json:"decimal"`
	Fractional FieldView `json:"fractional"`
}

// ConversionView is the response to a conversion, over HTTP or websocket.
type ConversionView struct {
	Source      odds.Format  `json:"source"`
	Raw         string       `json:"raw"`
	Outcome     odds.Outcome `json:"outcome"`
	Probability Float        `json:"probability"`
	State       StateView    `json:"state"`
	Error       string       `json:"error,omitempty"`
}

func newFieldView(f odds.Field, fractional bool) FieldView {
	v := FieldView{
		Value:   Float(f.Value),
		Display: Float(f.Display),
		Valid:   f.Valid,
	}
	if fractional && f.Valid {
		v.Fraction = f.Fraction.String()
	}
	return v
}

// NewStateView converts a converter state for the wire.
func NewStateView(s odds.State) StateView {
	return StateView{
		Percentage: newFieldView(s.Percentage, false),
		American:   newFieldView(s.American, false),
		Decimal:    newFieldView(s.Decimal, false),
		Fractional: newFieldView(s.Fractional, true),
	}
}

func (v FieldView) field() odds.Field {
	return odds.Field{
		Value:   float64(v.Value),
		Display: float64(v.Display),
		Valid:   v.Valid,
	}
}

// ToState converts a state sent back by a client into converter state.
// The fractional field's "n/d" text must parse when present.
func (s StateView) ToState() (odds.State, error) {
	st := odds.State{
		Percentage: s.Percentage.field(),
		American:   s.American.field(),
		Decimal:    s.Decimal.field(),
		Fractional: s.Fractional.field(),
	}
	if s.Fractional.Fraction != "" {
		q, err := odds.ParseQuote(odds.FormatFractional, s.Fractional.Fraction)
		if err != nil {
			return odds.State{}, fmt.Errorf("state: %w", err)
		}
		st.Fractional.Fraction = q.Fraction
	}
	return st, nil
}

// NewConversionView converts one converter update for the wire.
func NewConversionView(c odds.Conversion) ConversionView {
	v := ConversionView{
		Source:      c.Source,
		Raw:         c.Raw,
		Outcome:     c.Outcome,
		Probability: Float(c.Probability),
		State:       NewStateView(c.State),
	}
	if c.Err != nil {
		v.Error = c.Err.Error()
	}
	return v
}

// MirrorRequest prices the opposite pairing: NO odds on the sportsbook.
type MirrorRequest struct {
	Format   string `json:"format"`
	Odds     string `json:"odds" validate:"required"`
	MaxStake string `json:"max_stake"`
}

// ArbRequest is the body of POST /api/v1/arb. Omitted fields take the
// calculator defaults.
type ArbRequest struct {
	arb.RawInputs
	Mirror    *MirrorRequest `json:"mirror,omitempty"`
	NoLevels  []market.Level `json:"no_levels,omitempty" validate:"omitempty,max=200"`
	VigMethod string         `json:"vig_method,omitempty" validate:"omitempty,oneof=proportional power"`
}

// LegView is one priced leg.
type LegView struct {
	Venue     string `json:"venue"`
	Cost      Float  `json:"cost"`
	MaxPayout Float  `json:"max_payout"`
	Usable    bool   `json:"usable"`
}

// ResultView is an arb.Result on the wire.
type ResultView struct {
	State     arb.State `json:"state"`
	IsArb     bool      `json:"is_arb"`
	Edge      Float     `json:"edge"`
	EdgePct   Float     `json:"edge_pct"`
	SumCosts  Float     `json:"sum_costs"`
	SideA     LegView   `json:"side_a"`
	SideNotA  LegView   `json:"side_not_a"`
	K         Float     `json:"k"`
	StakeA    Float     `json:"stake_a"`
	StakeNotA Float     `json:"stake_not_a"`
	TotalCash Float     `json:"total_cash"`
	Profit    Float     `json:"profit"`
}

func newLegView(l arb.Leg) LegView {
	return LegView{
		Venue:     l.Venue,
		Cost:      Float(l.Cost),
		MaxPayout: Float(l.MaxPayout),
		Usable:    market.IsUsable(l.Cost),
	}
}

// NewResultView converts an engine result for the wire.
func NewResultView(r arb.Result) ResultView {
	return ResultView{
		State:     r.State,
		IsArb:     r.IsArb,
		Edge:      Float(r.Edge),
		EdgePct:   Float(r.Edge * 100),
		SumCosts:  Float(r.SumCosts),
		SideA:     newLegView(r.Quote.SideA),
		SideNotA:  newLegView(r.Quote.SideNotA),
		K:         Float(r.K),
		StakeA:    Float(r.StakeA),
		StakeNotA: Float(r.StakeNotA),
		TotalCash: Float(r.TotalCash),
		Profit:    Float(r.Profit),
	}
}

// MarketView summarizes the prediction market book.
type MarketView struct {
	Method    odds.VigMethod `json:"method"`
	Overround Float          `json:"overround"`
	FairYes   Float          `json:"fair_yes"`
	FairNo    Float          `json:"fair_no"`
	FairValid bool           `json:"fair_valid"`
}

// NewMarketView computes the book's overround and its vig-free view. An
// empty method means proportional.
func NewMarketView(b market.Book, method odds.VigMethod) MarketView {
	if method == "" {
		method = odds.VigProportional
	}
	v := MarketView{Method: method, Overround: Float(b.Overround())}
	yes, no, err := b.Fair(method)
	if err == nil {
		v.FairYes, v.FairNo, v.FairValid = Float(yes), Float(no), true
	}
	return v
}

// ArbResponse is returned for direct calculations and scenario evaluations.
type ArbResponse struct {
	Inputs   arb.RawInputs `json:"inputs"`
	Result   ResultView    `json:"result"`
	Mirror   *ResultView   `json:"mirror,omitempty"`
	Market   MarketView    `json:"market"`
	Warnings []string      `json:"warnings,omitempty"`
}

// NewArbResponse builds the response for one calculation.
func NewArbResponse(raw arb.RawInputs, in arb.Inputs, res arb.Result, method odds.VigMethod) ArbResponse {
	return ArbResponse{
		Inputs:   raw,
		Result:   NewResultView(res),
		Market:   NewMarketView(in.Book, method),
		Warnings: arb.Diagnose(in),
	}
}

// CreateScenarioRequest is the body of POST /api/v1/scenarios.
type CreateScenarioRequest struct {
	Name   string        `json:"name" validate:"required,max=80"`
	Notes  string        `json:"notes" validate:"max=500"`
	Inputs arb.RawInputs `json:"inputs"`
}

// Websocket message types.
const (
	MessageTypeOdds  = "odds"
	MessageTypeArb   = "arb"
	MessageTypeError = "error"
)

// ClientMessage is sent by websocket clients.
type ClientMessage struct {
	Type   string         `json:"type"`
	Format string         `json:"format,omitempty"`
	Value  string         `json:"value,omitempty"`
	Inputs *arb.RawInputs `json:"inputs,omitempty"`
}

// ServerMessage is pushed to websocket clients.
type ServerMessage struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorMessage is the payload of an error message.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
