package market

import (
	"errors"
	"fmt"
	"math"

	"odds-arb-calculator/internal/mathutil"
)

// ErrUnusablePrice marks a leg whose cost cannot be computed (price ≤ 0 or a
// fee denominator ≤ 0). Such legs cost +Inf and never form an arbitrage.
var ErrUnusablePrice = errors.New("unusable price")

// FeeSchedule is a prediction market's fees as fractions: NotionalFee is
// charged on the price paid, ProfitFee on the winnings (1 - price).
type FeeSchedule struct {
	NotionalFee float64 `json:"notional_fee"`
	ProfitFee   float64 `json:"profit_fee"`
}

// Validate checks NotionalFee ≥ 0 and ProfitFee in [0,1).
func (f FeeSchedule) Validate() error {
	if !(f.NotionalFee >= 0) || !mathutil.IsFinite(f.NotionalFee) {
		return fmt.Errorf("notional fee must be non-negative, got %v", f.NotionalFee)
	}
	if !(f.ProfitFee >= 0 && f.ProfitFee < 1) {
		return fmt.Errorf("profit fee must be in [0,1), got %v", f.ProfitFee)
	}
	return nil
}

// Cost returns the fee-adjusted cost of $1 net payout when buying at price:
//
//	cost = p(1+fn) / (1 - fp(1-p))
//
// It returns +Inf when the leg is unusable.
func (f FeeSchedule) Cost(price float64) float64 {
	c, _ := f.CostChecked(price)
	return c
}

// CostChecked is Cost with the reason for an unusable leg.
func (f FeeSchedule) CostChecked(price float64) (float64, error) {
	if !(price > 0) || !mathutil.IsFinite(price) {
		return math.Inf(1), fmt.Errorf("price %v: %w", price, ErrUnusablePrice)
	}

	numerator := price * (1 + f.NotionalFee)
	denominator := 1 - f.ProfitFee*(1-price)
	if denominator <= 0 {
		return math.Inf(1), fmt.Errorf("fee denominator %v at price %v: %w", denominator, price, ErrUnusablePrice)
	}
	return numerator / denominator, nil
}

// SportsbookCost returns the stake needed per $1 returned at decimal odds.
func SportsbookCost(decimalOdds float64) float64 {
	if !(decimalOdds > 0) || !mathutil.IsFinite(decimalOdds) {
		return math.Inf(1)
	}
	return 1 / decimalOdds
}

// IsUsable reports whether a leg cost is finite and positive.
func IsUsable(cost float64) bool {
	return cost > 0 && mathutil.IsFinite(cost)
}
