package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/airac-api/internal/airac"
	"github.com/zapponejosh/airac-api/internal/calendar"
	"github.com/zapponejosh/airac-api/internal/database"
)

func runDate(cmd *cobra.Command, opts *options, args []string) error {
	conv, err := opts.converter()
	if err != nil {
		return err
	}

	var cy airac.Cycle
	if len(args) == 0 {
		cy = calendar.Current(conv, opts.now())
	} else if cy, err = conv.DateStringToCycle(args[0]); err != nil {
		return err
	}

	return printCycles(cmd.OutOrStdout(), opts, []database.StoredCycle{calendar.ToStored(conv, cy)})
}

func runIdent(cmd *cobra.Command, opts *options, args []string) error {
	conv, err := opts.converter()
	if err != nil {
		return err
	}

	cy, err := conv.IdentifierStringToCycle(args[0])
	if err != nil {
		return err
	}

	return printCycles(cmd.OutOrStdout(), opts, []database.StoredCycle{calendar.ToStored(conv, cy)})
}

func runYear(cmd *cobra.Command, opts *options, args []string) error {
	conv, err := opts.converter()
	if err != nil {
		return err
	}

	year := opts.now().UTC().Year()
	if len(args) == 1 {
		if year, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
	}

	cal, err := calendar.Build(conv, year)
	if err != nil {
		return err
	}

	return printCycles(cmd.OutOrStdout(), opts, cal.Cycles)
}

func printCycles(w io.Writer, opts *options, cycles []database.StoredCycle) error {
	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(cycles) == 1 {
			return enc.Encode(cycles[0])
		}
		return enc.Encode(cycles)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENT\tEFFECTIVE\tEND\tYEAR\tORDINAL")
	for _, cy := range cycles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", cy.Identifier, cy.EffectiveDate, cy.EndDate, cy.Year, cy.Ordinal)
	}
	return tw.Flush()
}
