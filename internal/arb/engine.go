package arb

import (
	"math"
	"sync"

	"odds-arb-calculator/internal/market"
	"odds-arb-calculator/internal/mathutil"
)

// bpsPerUnit converts a basis-point buffer into a fraction.
const bpsPerUnit = 10000.0

// Compute prices both legs, checks for an edge beyond the buffer and sizes
// the dutched position. Only one pairing is priced: buy NO on the
// prediction market, bet YES on the sportsbook. Compute never fails; an
// unusable leg simply yields no opportunity.
func Compute(in Inputs) Result {
	costNo := in.Fees.Cost(in.Book.No.Price)
	costSB := sportsbookCost(in.Sportsbook)

	totalCost := costNo + costSB
	edge := 1 - totalCost
	isArb := edge > in.BufferBps/bpsPerUnit

	res := Result{
		State:    StateNoArb,
		IsArb:    isArb,
		Edge:     edge,
		SumCosts: totalCost,
		Quote: Quote{
			SideA: Leg{
				Venue:     VenuePredictionMarket,
				Cost:      costNo,
				MaxPayout: in.Book.No.Quantity,
			},
			SideNotA: Leg{
				Venue:     VenueSportsbook,
				Cost:      costSB,
				MaxPayout: in.Sportsbook.MaxStake / costSB,
			},
		},
	}

	if !isArb || edge <= 0 {
		return res
	}

	res.State = StateArbFound
	res.K = payoutCap(res.Quote.SideA.MaxPayout, res.Quote.SideNotA.MaxPayout)
	res.StakeA = res.K * res.Quote.SideA.Cost
	res.StakeNotA = res.K * res.Quote.SideNotA.Cost
	res.TotalCash = res.StakeA + res.StakeNotA
	res.Profit = res.K * edge
	return res
}

// sportsbookCost resolves whatever odds format the caller supplied to
// decimal odds. Odds that do not convert leave the leg unusable.
func sportsbookCost(sb Sportsbook) float64 {
	dec, err := sb.Odds.DecimalOdds()
	if err != nil {
		return math.Inf(1)
	}
	return market.SportsbookCost(dec)
}

// payoutCap is the largest payout both legs can fill. An unbounded side
// defers to the other; if neither side is bounded the cap is 0.
func payoutCap(a, b float64) float64 {
	k := math.Min(a, b)
	if k < 0 || !mathutil.IsFinite(k) {
		return 0
	}
	return k
}

// Settle returns the net profit of the position sized from in if outcome
// resolves. Each venue pays on its own terms: NO contracts cost p(1+fn) each
// and pay 1 less the profit fee on 1-p, the sportsbook returns the stake at
// decimal odds. Both legs' stakes are spent.
func Settle(in Inputs, res Result, outcome Outcome) float64 {
	if res.K == 0 {
		return 0
	}
	var payout float64
	switch outcome {
	case OutcomeNo:
		p := in.Book.No.Price
		contracts := res.StakeA / (p * (1 + in.Fees.NotionalFee))
		payout = contracts * (1 - in.Fees.ProfitFee*(1-p))
	case OutcomeYes:
		dec, err := in.Sportsbook.Odds.DecimalOdds()
		if err != nil {
			return -res.TotalCash
		}
		payout = res.StakeNotA * dec
	}
	return payout - res.TotalCash
}

// Engine runs Compute for callers that need to observe the state machine,
// such as a live session recomputing on every input change.
type Engine struct {
	mu    sync.Mutex
	state State
	last  Result
}

// NewEngine returns an idle engine.
func NewEngine() *Engine {
	return &Engine{state: StateIdle}
}

// Recompute replaces the previous result with a fresh one for in.
func (e *Engine) Recompute(in Inputs) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateComputing
	e.last = Compute(in)
	e.state = e.last.State
	return e.last
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Last returns the most recent result and whether one exists.
func (e *Engine) Last() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last, e.state != StateIdle
}
