package arb

import (
	"odds-arb-calculator/internal/market"
	"odds-arb-calculator/internal/odds"
)

// Venue names used on result legs.
const (
	VenuePredictionMarket = "Pred. Market"
	VenueSportsbook       = "Sportsbook"
)

// State is the engine's position in Idle → Computing → {ArbFound | NoArb}.
type State string

const (
	StateIdle      State = "idle"
	StateComputing State = "computing"
	StateArbFound  State = "arb_found"
	StateNoArb     State = "no_arb"
)

// Outcome is how the binary event resolves.
type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

// Sportsbook is the sportsbook leg: the price offered on YES and the most
// the book will accept. MaxStake may be +Inf when no limit is known.
type Sportsbook struct {
	Odds     odds.Quote `json:"odds"`
	MaxStake float64    `json:"max_stake"`
}

// Inputs fully determine one calculation.
type Inputs struct {
	BufferBps  float64            `json:"buffer_bps"`
	Sportsbook Sportsbook         `json:"sportsbook"`
	Fees       market.FeeSchedule `json:"fees"`
	Book       market.Book        `json:"book"`
}

// Mirrored returns inputs for the opposite pairing: buy YES on the market
// and bet NO on the sportsbook at sb. The book's sides are swapped so the
// engine's fixed strategy prices the other direction.
func (in Inputs) Mirrored(sb Sportsbook) Inputs {
	out := in
	out.Sportsbook = sb
	out.Book = market.Book{Yes: in.Book.No, No: in.Book.Yes}
	return out
}

// Leg is one side of the position, normalized to cost per $1 of payout.
type Leg struct {
	Venue     string  `json:"venue"`
	Cost      float64 `json:"cost"`
	MaxPayout float64 `json:"max_payout"`
}

// Quote pairs the two legs. SideA is NO on the prediction market, SideNotA
// is YES on the sportsbook.
type Quote struct {
	SideA    Leg `json:"side_a"`
	SideNotA Leg `json:"side_not_a"`
}

// Result is the outcome of one calculation. K is the payout both outcomes
// return; Profit = K·Edge whichever side wins.
type Result struct {
	State     State   `json:"state"`
	IsArb     bool    `json:"is_arb"`
	Edge      float64 `json:"edge"`
	SumCosts  float64 `json:"sum_costs"`
	Quote     Quote   `json:"quote"`
	K         float64 `json:"k"`
	StakeA    float64 `json:"stake_a"`
	StakeNotA float64 `json:"stake_not_a"`
	TotalCash float64 `json:"total_cash"`
	Profit    float64 `json:"profit"`
}
