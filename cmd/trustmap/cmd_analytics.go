package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"trustmap/internal/analytics"
	"trustmap/internal/graph"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd(a *app) *cobra.Command {
	var (
		filter filterFlags
		at     string
	)
	cmd := &cobra.Command{
		Use:   "analytics PID",
		Short: "Print the analytics bundle for one participant",
		Long: `Print rank, concentration, capacity, activity and balance analytics for a
participant. Rank, concentration, capacity and distribution need a specific
--equivalent; with ALL only activity and balances are shown.

Examples:
  trustmap analytics PID_anna_01 --equivalent UAH
  trustmap analytics PID_anna_01 --at 2026-10-15T00:00:00Z --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = parsed
			}

			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			cfg := filter.config()
			g := graph.Build(idx, cfg)
			engine := analytics.NewEngine(a.log, nil)
			bundle := engine.Analyze(idx, g, analytics.Selection{PID: args[0], Equivalent: cfg.Equivalent}, now)
			return writeOutput(cmd.OutOrStdout(), a.format, bundle, bundleTable(bundle))
		},
	}
	filter.bind(cmd, a)
	cmd.Flags().StringVar(&at, "at", "", "Evaluate activity windows at this RFC3339 time (default now)")
	return cmd
}

func bundleTable(b *analytics.Bundle) tableFunc {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "PARTICIPANT\t%s\t%s\n", b.PID, b.DisplayName)
		fmt.Fprintf(tw, "EQUIVALENT\t%s\n", b.Equivalent)
		if b.Rank != nil {
			fmt.Fprintf(tw, "NET\t%s\n", b.Rank.Net)
			fmt.Fprintf(tw, "RANK\t%d of %d\tpercentile %.2f\n", b.Rank.Rank, b.Rank.Participants, b.Rank.Percentile)
		}
		if b.Concentration != nil {
			fmt.Fprintf(tw, "OWES\t%s\tHHI %.3f (%s)\n", b.Concentration.Outgoing.Total, b.Concentration.Outgoing.HHI, b.Concentration.Outgoing.Level)
			fmt.Fprintf(tw, "OWED\t%s\tHHI %.3f (%s)\n", b.Concentration.Incoming.Total, b.Concentration.Incoming.HHI, b.Concentration.Incoming.Level)
		}
		if b.Capacity != nil {
			fmt.Fprintf(tw, "CAPACITY OUT\t%s/%s\t%.1f%%\n", b.Capacity.Outgoing.Used, b.Capacity.Outgoing.Limit, b.Capacity.Outgoing.Pct*100)
			fmt.Fprintf(tw, "CAPACITY IN\t%s/%s\t%.1f%%\n", b.Capacity.Incoming.Used, b.Capacity.Incoming.Limit, b.Capacity.Incoming.Pct*100)
			fmt.Fprintf(tw, "BOTTLENECKS\t%d\n", len(b.Capacity.Bottlenecks))
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "WINDOW\tCREATED\tCLOSED\tINCIDENTS\tAUDIT\tTRANSACTIONS")
		for _, w := range b.Activity.Windows {
			txs := "n/a"
			if w.Transactions != nil {
				txs = fmt.Sprint(*w.Transactions)
			}
			fmt.Fprintf(tw, "%dd\t%d\t%d\t%d\t%d\t%s\n", w.Days, w.TrustlinesCreated, w.TrustlinesClosed, w.Incidents, w.AuditEvents, txs)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "EQUIVALENT\tCREDIT\tDEBT\tNET")
		for _, r := range b.BalanceRows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Equivalent, r.Credit, r.Debt, r.Net)
		}
	}
}
