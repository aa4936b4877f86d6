package main

import (
	"fmt"
	"text/tabwriter"

	"trustmap/internal/connections"
	"trustmap/internal/graph"

	"github.com/spf13/cobra"
)

type connectionsOutput struct {
	PID      string              `json:"pid"`
	Incoming connections.Page    `json:"incoming"`
	Outgoing connections.Page    `json:"outgoing"`
	Cycles   []connections.Cycle `json:"cycles"`
}

func newConnectionsCmd(a *app) *cobra.Command {
	var (
		filter   filterFlags
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "connections PID",
		Short: "List a participant's trustlines and clearing cycles",
		Long: `List incoming and outgoing trustlines of a participant in the filtered
graph, bottlenecks first within each equivalent, plus the clearing cycles it
takes part in.

Examples:
  trustmap connections PID_anna_01 --equivalent UAH
  trustmap connections PID_anna_01 --page 2 --page-size 10 --format table`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			pid := args[0]
			cfg := filter.config()
			rows := connections.Rows(idx, graph.Build(idx, cfg), pid)

			source := connections.NewSnapshotCycleSource(staticIndex{idx})
			cycles, err := source.Cycles(cmd.Context(), cfg.Equivalent)
			if err != nil {
				return err
			}

			out := connectionsOutput{
				PID:      pid,
				Incoming: connections.Paginate(rows.Incoming, page, pageSize),
				Outgoing: connections.Paginate(rows.Outgoing, page, pageSize),
				Cycles:   connections.CyclesFor(cycles, connections.Selection{PID: pid, Equivalent: cfg.Equivalent}),
			}
			return writeOutput(cmd.OutOrStdout(), a.format, out, connectionsTable(out))
		},
	}
	filter.bind(cmd, a)
	cmd.Flags().IntVar(&page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&pageSize, "page-size", a.cfg.Engine.PageSize, "Rows per page")
	return cmd
}

func connectionsTable(out connectionsOutput) tableFunc {
	return func(tw *tabwriter.Writer) {
		for _, part := range []struct {
			title string
			page  connections.Page
		}{{"INCOMING", out.Incoming}, {"OUTGOING", out.Outgoing}} {
			fmt.Fprintf(tw, "%s (page %d/%d, %d rows)\n", part.title, part.page.Page, part.page.TotalPages, part.page.TotalRows)
			fmt.Fprintln(tw, "EQUIVALENT\tCOUNTERPARTY\tNAME\tLIMIT\tUSED\tAVAILABLE\tSTATUS\tBOTTLENECK")
			for _, r := range part.page.Rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Equivalent, r.CounterpartyPID, r.CounterpartyName, r.Limit, r.Used, r.Available, r.Status, yesNo(r.Bottleneck))
			}
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, "CYCLE\tEDGES")
		for _, c := range out.Cycles {
			fmt.Fprintf(tw, "%s\t%d\n", c.Key, len(c.Edges))
		}
	}
}
