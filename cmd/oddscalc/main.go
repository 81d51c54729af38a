package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oddscalc",
		Short: "Odds converter and sportsbook vs prediction market arbitrage calculator",
		Long: `oddscalc converts odds between percentage, american, decimal and fractional
formats, and checks a sportsbook YES price against a prediction market NO price
for a dutched arbitrage.

Examples:
  oddscalc convert --format american --value -110
  oddscalc arb --sb-odds 2.2 --no-price 0.40 --profit-fee 0
  oddscalc serve`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newArbCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
