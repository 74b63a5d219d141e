package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/airac-api/internal/airac"
	"github.com/zapponejosh/airac-api/internal/config"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	weeks      int
	epoch      string
	jsonOutput bool

	now func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &options{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "airac",
		Short: "Convert between dates and AIRAC cycle identifiers",
		Long: `airac maps calendar dates onto the fixed-length AIRAC cycle grid
and back. Cycles are 28 days by default; --weeks changes the length.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().IntVar(&opts.weeks, "weeks", config.DefaultCycleLengthWeeks, "Cycle length in weeks (1-52)")
	rootCmd.PersistentFlags().StringVar(&opts.epoch, "epoch", config.DefaultEpoch, "Cycle grid epoch (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")

	dateCmd := &cobra.Command{
		Use:   "date [YYYY-MM-DD]",
		Short: "Show the cycle containing a date (today when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDate(cmd, opts, args)
		},
	}

	identCmd := &cobra.Command{
		Use:     "ident [YYOO]",
		Short:   "Show the effective date of a cycle identifier",
		Aliases: []string{"id"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdent(cmd, opts, args)
		},
	}

	yearCmd := &cobra.Command{
		Use:   "year [YYYY]",
		Short: "List every cycle starting in a year (current year when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runYear(cmd, opts, args)
		},
	}

	rootCmd.AddCommand(dateCmd, identCmd, yearCmd)
	return rootCmd
}

// converter builds the converter selected by the persistent flags.
func (o *options) converter() (*airac.Converter, error) {
	if o.weeks < 1 || o.weeks > config.MaxCycleLengthWeeks {
		return nil, fmt.Errorf("--weeks must be between 1 and %d, got %d", config.MaxCycleLengthWeeks, o.weeks)
	}

	epoch, err := airac.ParseDate(o.epoch)
	if err != nil {
		return nil, fmt.Errorf("--epoch: %w", err)
	}

	return airac.NewConverter(airac.Config{
		Epoch:           epoch,
		CycleLengthDays: airac.CycleLengthWeeks(o.weeks),
	})
}
