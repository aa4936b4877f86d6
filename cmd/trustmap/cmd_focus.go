package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"trustmap/internal/focus"
	"trustmap/internal/graph"
	"trustmap/internal/snapshot"

	"github.com/spf13/cobra"
)

// staticIndex serves one already-loaded index.
type staticIndex struct {
	idx *snapshot.Index
}

func (s staticIndex) Current() (*snapshot.Index, error) { return s.idx, nil }

type focusOutput struct {
	Match *focus.Match `json:"match"`
	Query *focus.Query `json:"query"`
	Graph *graph.Graph `json:"graph"`
}

func newFocusCmd(a *app) *cobra.Command {
	var filter filterFlags
	cmd := &cobra.Command{
		Use:   "focus TEXT",
		Short: "Resolve a participant and print its ego graph",
		Long: `Resolve TEXT to a participant (an embedded PID_x_y token, an exact PID, or a
PID or display-name prefix) and print the ego graph around it.

Examples:
  trustmap focus "payment from PID_anna_01 stuck" --depth 2
  trustmap focus olena --equivalent UAH`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			out := focusOutput{}
			match, ok := focus.Resolve(idx, strings.Join(args, " "))
			if ok {
				cfg := filter.config()
				cfg.Focus = graph.FocusConfig{Enabled: true, RootPID: match.PID, Depth: cfg.Focus.Depth}
				out.Match = &match
				out.Query = cfg.FocusQuery()
				out.Graph = graph.Build(idx, cfg)
			}

			var table tableFunc
			if out.Graph != nil {
				table = graphTable(out.Graph)
			}
			return writeOutput(cmd.OutOrStdout(), a.format, out, table)
		},
	}
	filter.bind(cmd, a)
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search TEXT",
		Short: "List participants matching a PID or name prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			matches := focus.Search(idx, strings.Join(args, " "), limit)
			if matches == nil {
				matches = []focus.Match{}
			}
			return writeOutput(cmd.OutOrStdout(), a.format, matches, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "PID\tNAME\tMATCH")
				for _, m := range matches {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", m.PID, m.DisplayName, m.Kind)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum matches (0 for all)")
	return cmd
}
