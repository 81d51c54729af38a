package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"odds-arb-calculator/internal/arb"
	"odds-arb-calculator/internal/mathutil"
)

func newArbCommand() *cobra.Command {
	raw := arb.DefaultRawInputs()
	var mirrorFormat, mirrorOdds, mirrorMax string

	cmd := &cobra.Command{
		Use:   "arb",
		Short: "Check a sportsbook YES against a prediction market NO",
		Long: `Price both legs, check the edge against the buffer and size a dutched
position that pays the same whichever way the event resolves.

Unparsable inputs are treated leniently: a bad buffer is 0 bps, bad fees are 0,
bad sportsbook odds give no edge, a bad cap is unbounded and a bad price leaves
its leg unusable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A price given on one side only sets the other to its complement.
			yesSet, noSet := cmd.Flags().Changed("yes-price"), cmd.Flags().Changed("no-price")
			switch {
			case yesSet && !noSet:
				raw.NoPrice = ""
			case noSet && !yesSet:
				raw.YesPrice = ""
			}
			raw = raw.SyncComplement().WithDefaults()

			in := arb.ParseInputs(raw)
			res := arb.Compute(in)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Buy NO on market, bet YES on sportsbook (buffer %s bps)\n", raw.BufferBps)
			printResult(out, in, res, false)
			for _, note := range arb.Diagnose(in) {
				fmt.Fprintf(out, "  ! %s\n", note)
			}

			if mirrorOdds != "" {
				mirrored := in.Mirrored(arb.ParseSportsbook(mirrorFormat, mirrorOdds, mirrorMax))
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Mirror: buy YES on market, bet NO on sportsbook")
				printResult(out, mirrored, arb.Compute(mirrored), true)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&raw.BufferBps, "buffer-bps", raw.BufferBps, "Minimum edge in basis points")
	f.StringVar(&raw.SportsbookFormat, "sb-format", raw.SportsbookFormat, "Sportsbook odds format")
	f.StringVar(&raw.SportsbookOdds, "sb-odds", raw.SportsbookOdds, "Sportsbook odds on YES")
	f.StringVar(&raw.SportsbookMax, "sb-max", raw.SportsbookMax, "Sportsbook maximum stake")
	f.StringVar(&raw.NotionalFee, "notional-fee", raw.NotionalFee, "Market fee on notional")
	f.StringVar(&raw.ProfitFee, "profit-fee", raw.ProfitFee, "Market fee on winnings")
	f.StringVar(&raw.YesPrice, "yes-price", raw.YesPrice, "Market YES price")
	f.StringVar(&raw.YesQuantity, "yes-qty", raw.YesQuantity, "Market YES quantity")
	f.StringVar(&raw.NoPrice, "no-price", raw.NoPrice, "Market NO price")
	f.StringVar(&raw.NoQuantity, "no-qty", raw.NoQuantity, "Market NO quantity")
	f.StringVar(&mirrorFormat, "mirror-format", "decimal", "Sportsbook NO odds format for the mirror check")
	f.StringVar(&mirrorOdds, "mirror-odds", "", "Sportsbook odds on NO; enables the mirror check")
	f.StringVar(&mirrorMax, "mirror-max", "", "Sportsbook maximum stake on NO")

	return cmd
}

func printResult(w io.Writer, in arb.Inputs, res arb.Result, mirrored bool) {
	a, b := res.Quote.SideA, res.Quote.SideNotA
	fmt.Fprintf(w, "  State:       %s\n", res.State)
	fmt.Fprintf(w, "  Edge:        %s\n", pct(res.Edge))
	fmt.Fprintf(w, "  Cost A:      %s (%s, max payout %s)\n", price(a.Cost), a.Venue, money(a.MaxPayout))
	fmt.Fprintf(w, "  Cost not-A:  %s (%s, max payout %s)\n", price(b.Cost), b.Venue, money(b.MaxPayout))
	if res.State != arb.StateArbFound {
		return
	}
	fmt.Fprintf(w, "  Payout:      %s\n", money(res.K))
	fmt.Fprintf(w, "  Stake A:     %s\n", money(res.StakeA))
	fmt.Fprintf(w, "  Stake not-A: %s\n", money(res.StakeNotA))
	fmt.Fprintf(w, "  Total cash:  %s\n", money(res.TotalCash))
	yes, no := arb.Settle(in, res, arb.OutcomeYes), arb.Settle(in, res, arb.OutcomeNo)
	if mirrored {
		// Mirrored inputs swap the book, so the event's outcomes swap too.
		yes, no = no, yes
	}
	fmt.Fprintf(w, "  Profit:      %s (YES %s / NO %s)\n", money(res.Profit), money(yes), money(no))
}

func pct(v float64) string {
	if !mathutil.IsFinite(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func price(v float64) string {
	if !mathutil.IsFinite(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func money(v float64) string {
	if !mathutil.IsFinite(v) {
		return "unbounded"
	}
	return fmt.Sprintf("$%.2f", v)
}
