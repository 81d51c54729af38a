package arb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odds-arb-calculator/internal/market"
	"odds-arb-calculator/internal/odds"
)

func scenarioB() Inputs {
	return Inputs{
		BufferBps:  20,
		Sportsbook: Sportsbook{Odds: odds.Decimal(2.20), MaxStake: 2500},
		Fees:       market.FeeSchedule{},
		Book: market.Book{
			Yes: market.Side{Price: 0.60, Quantity: 6000},
			No:  market.Side{Price: 0.40, Quantity: 8000},
		},
	}
}

func TestComputeDefaultsNoArb(t *testing.T) {
	res := Compute(ParseInputs(DefaultRawInputs()))

	assert.Equal(t, StateNoArb, res.State)
	assert.False(t, res.IsArb)
	assert.InDelta(t, 0.5236, res.Quote.SideNotA.Cost, 0.0001)
	assert.InDelta(t, 0.4850, res.Quote.SideA.Cost, 0.0001)
	assert.InDelta(t, 1.0086, res.SumCosts, 0.0001)
	assert.InDelta(t, -0.0086, res.Edge, 0.0001)
	assert.Zero(t, res.K)
	assert.Zero(t, res.Profit)
	assert.Zero(t, res.TotalCash)
}

func TestComputeScenarioB(t *testing.T) {
	res := Compute(scenarioB())

	require.True(t, res.IsArb)
	assert.Equal(t, StateArbFound, res.State)
	assert.InDelta(t, 0.4545, res.Quote.SideNotA.Cost, 0.0001)
	assert.InDelta(t, 0.8545, res.SumCosts, 0.0001)
	assert.InDelta(t, 0.1455, res.Edge, 0.0001)

	// NO quantity 8000 vs sportsbook 2500 / (1/2.2) = 5500 payout.
	assert.InDelta(t, 5500, res.Quote.SideNotA.MaxPayout, 1e-9)
	assert.Equal(t, 8000.0, res.Quote.SideA.MaxPayout)
	assert.InDelta(t, 5500, res.K, 1e-9)

	assert.InDelta(t, 2200, res.StakeA, 1e-9)
	assert.InDelta(t, 2500, res.StakeNotA, 1e-9)
	assert.InDelta(t, 4700, res.TotalCash, 1e-9)
	assert.InDelta(t, 800, res.Profit, 1e-9)
}

func TestDutchingProfitIndependentOfOutcome(t *testing.T) {
	cases := []Inputs{scenarioB()}

	withFees := scenarioB()
	withFees.Fees = market.FeeSchedule{NotionalFee: 0.01, ProfitFee: 0.03}
	withFees.Book.No = market.Side{Price: 0.35, Quantity: 1234}
	cases = append(cases, withFees)

	american := scenarioB()
	american.Sportsbook = Sportsbook{Odds: odds.American(140), MaxStake: 777}
	cases = append(cases, american)

	for i, in := range cases {
		res := Compute(in)
		require.True(t, res.IsArb, "case %d", i)
		require.Positive(t, res.K, "case %d", i)

		yes := Settle(in, res, OutcomeYes)
		no := Settle(in, res, OutcomeNo)
		assert.InDelta(t, res.Profit, yes, 1e-9, "case %d yes", i)
		assert.InDelta(t, res.Profit, no, 1e-9, "case %d no", i)
		assert.InDelta(t, yes, no, 1e-9, "case %d", i)
	}
}

func TestSettleFromVenuePayouts(t *testing.T) {
	in := scenarioB()
	in.Fees = market.FeeSchedule{NotionalFee: 0.01, ProfitFee: 0.03}
	in.Book.No.Price = 0.35
	res := Compute(in)
	require.Equal(t, StateArbFound, res.State)

	// NO wins: contracts bought at 0.35*1.01, each nets 1 - 0.03*0.65.
	contracts := res.StakeA / (0.35 * 1.01)
	assert.InDelta(t, contracts*(1-0.03*0.65)-res.TotalCash, Settle(in, res, OutcomeNo), 1e-9)
	// YES wins: the sportsbook returns the stake at 2.2.
	assert.InDelta(t, res.StakeNotA*2.2-res.TotalCash, Settle(in, res, OutcomeYes), 1e-9)

	// A position sized off the dutching ratio pays differently per outcome.
	skewed := res
	skewed.StakeA *= 2
	skewed.TotalCash = skewed.StakeA + skewed.StakeNotA
	gap := Settle(in, skewed, OutcomeNo) - Settle(in, skewed, OutcomeYes)
	assert.InDelta(t, res.K, gap, 1e-6)
}

func TestComputeIdempotent(t *testing.T) {
	for _, in := range []Inputs{scenarioB(), ParseInputs(DefaultRawInputs())} {
		a := Compute(in)
		b := Compute(in)
		assert.Equal(t, a, b)
		assert.Equal(t, math.Float64bits(a.Profit), math.Float64bits(b.Profit))
	}
}

func TestComputeBuffer(t *testing.T) {
	in := scenarioB()
	// Edge ≈ 14.55%: a 1500 bps buffer swallows it.
	in.BufferBps = 1500
	res := Compute(in)
	assert.False(t, res.IsArb)
	assert.Equal(t, StateNoArb, res.State)
	assert.Zero(t, res.K)

	in.BufferBps = 1400
	assert.True(t, Compute(in).IsArb)
}

func TestComputeNegativeBufferNeverSizesNegativeEdge(t *testing.T) {
	in := ParseInputs(DefaultRawInputs())
	in.BufferBps = -500

	res := Compute(in)
	assert.True(t, res.IsArb, "edge above a negative buffer is flagged")
	assert.Equal(t, StateNoArb, res.State)
	assert.Zero(t, res.K)
	assert.Zero(t, res.Profit)
}

func TestComputeUnusableLeg(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Inputs)
	}{
		{"zero NO price", func(in *Inputs) { in.Book.No.Price = 0 }},
		{"fee denominator", func(in *Inputs) { in.Fees.ProfitFee = 5 }},
		{"american zero", func(in *Inputs) { in.Sportsbook.Odds = odds.American(0) }},
		{"decimal below one", func(in *Inputs) { in.Sportsbook.Odds = odds.Decimal(0.5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioB()
			tt.modify(&in)
			res := Compute(in)
			assert.False(t, res.IsArb)
			assert.True(t, math.IsInf(res.SumCosts, 1))
			assert.Zero(t, res.K)
		})
	}
}

func TestComputeUnboundedCapacity(t *testing.T) {
	in := scenarioB()
	in.Book.No.Quantity = math.Inf(1)
	res := Compute(in)
	assert.InDelta(t, 5500, res.K, 1e-9, "unbounded NO side defers to sportsbook cap")

	in = scenarioB()
	in.Sportsbook.MaxStake = math.Inf(1)
	res = Compute(in)
	assert.Equal(t, 8000.0, res.K, "unbounded stake defers to NO quantity")

	in.Book.No.Quantity = math.Inf(1)
	res = Compute(in)
	assert.True(t, res.IsArb)
	assert.Zero(t, res.K, "both sides unbounded never sizes an infinite position")
	assert.Zero(t, res.Profit)
}

func TestComputeNegativeCapacity(t *testing.T) {
	in := scenarioB()
	in.Book.No.Quantity = -5
	res := Compute(in)
	assert.Zero(t, res.K)
	assert.Zero(t, res.TotalCash)
}

func TestMirrored(t *testing.T) {
	in := scenarioB()
	// Sportsbook NO at +120 (decimal 2.2) against market YES at 0.60.
	m := in.Mirrored(Sportsbook{Odds: odds.American(120), MaxStake: 1000})

	assert.Equal(t, in.Book.Yes, m.Book.No)
	assert.Equal(t, in.Book.No, m.Book.Yes)

	res := Compute(m)
	assert.InDelta(t, 0.60+1/2.2, res.SumCosts, 1e-9)
	assert.False(t, res.IsArb)
}

func TestEngineStates(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, StateIdle, e.State())
	_, ok := e.Last()
	assert.False(t, ok)

	res := e.Recompute(scenarioB())
	assert.Equal(t, StateArbFound, e.State())
	last, ok := e.Last()
	assert.True(t, ok)
	assert.Equal(t, res, last)

	e.Recompute(ParseInputs(DefaultRawInputs()))
	assert.Equal(t, StateNoArb, e.State())
}

func TestSettleWithoutPosition(t *testing.T) {
	res := Compute(ParseInputs(DefaultRawInputs()))
	in := ParseInputs(DefaultRawInputs())
	assert.Zero(t, Settle(in, res, OutcomeYes))
	assert.Zero(t, Settle(in, res, OutcomeNo))
}
