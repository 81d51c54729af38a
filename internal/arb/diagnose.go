package arb

import (
	"fmt"
)

// Diagnose lists the reasons a calculation may show no opportunity: fee
// settings outside their range, an unusable leg, or a buffer that lets a
// losing edge through. It does not affect Compute.
func Diagnose(in Inputs) []string {
	var notes []string

	if err := in.Fees.Validate(); err != nil {
		notes = append(notes, "fees: "+err.Error())
	}
	if _, err := in.Fees.CostChecked(in.Book.No.Price); err != nil {
		notes = append(notes, "NO leg: "+err.Error())
	}

	dec, err := in.Sportsbook.Odds.DecimalOdds()
	switch {
	case err != nil:
		notes = append(notes, "sportsbook leg: "+err.Error())
	case dec <= 1:
		notes = append(notes, fmt.Sprintf("sportsbook leg: decimal odds %v return nothing over the stake", dec))
	}

	if !(in.Sportsbook.MaxStake > 0) {
		notes = append(notes, "sportsbook leg: max stake is zero")
	}
	if !(in.Book.No.Quantity > 0) {
		notes = append(notes, "NO leg: no quantity available")
	}
	if in.BufferBps < 0 {
		notes = append(notes, fmt.Sprintf("buffer %v bps is negative", in.BufferBps))
	}

	return notes
}
