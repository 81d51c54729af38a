package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"odds-arb-calculator/internal/odds"
)

func newConvertCommand() *cobra.Command {
	var format, value string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert odds into every format",
		Long: `Convert one odds value into percentage, american, decimal and fractional.
Fractional odds are written n/d, e.g. 10/11.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := odds.ParseFormat(format)
			if err != nil {
				return err
			}

			conv := odds.NewConverterFromState(odds.State{}).Set(f, value)
			if conv.Outcome != odds.OutcomeApplied {
				return fmt.Errorf("cannot convert %s %q: %w", f, value, conv.Err)
			}

			printState(cmd.OutOrStdout(), conv.State)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(odds.FormatAmerican),
		"Input format: percentage|american|decimal|fractional")
	cmd.Flags().StringVar(&value, "value", "", "Odds value to convert")
	cmd.MarkFlagRequired("value")

	return cmd
}

func printState(w io.Writer, s odds.State) {
	fmt.Fprintf(w, "  Percentage:  %s\n", fieldText(s.Percentage, func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	}))
	fmt.Fprintf(w, "  American:    %s\n", fieldText(s.American, func(v float64) string {
		return fmt.Sprintf("%+.0f", v)
	}))
	fmt.Fprintf(w, "  Decimal:     %s\n", fieldText(s.Decimal, func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	}))
	frac := "-"
	if s.Fractional.Valid {
		frac = s.Fractional.Fraction.String()
	}
	fmt.Fprintf(w, "  Fractional:  %s\n", frac)
}

func fieldText(f odds.Field, format func(float64) string) string {
	if !f.Valid {
		return "-"
	}
	return format(f.Display)
}
