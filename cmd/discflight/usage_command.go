package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discflight/internal/api"
	"discflight/internal/config"
	"discflight/internal/store"
)

func newUsageCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var limit int

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Summarize trigger endpoint usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				summary, err := st.UsageSummary(cmd.Context())
				if err != nil {
					return err
				}
				var entries []store.UsageEntry
				if jsonOut {
					entries, err = st.UsageEntries(cmd.Context(), limit)
					if err != nil {
						return err
					}
				}
				resp := api.FromUsage(summary, entries)
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Endpoints) == 0 {
					fmt.Fprintln(out, "No trigger calls recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Endpoints))
				for _, e := range resp.Endpoints {
					rows = append(rows, []string{
						e.Endpoint,
						strconv.Itoa(e.Count),
						e.LastRun,
						strconv.FormatFloat(e.AverageTimeMS, 'f', 2, 64),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Endpoint", "Calls", "Last Run", "Avg ms"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the summary and recent entries as JSON")
	cmd.Flags().IntVar(&limit, "limit", 500, "Maximum log entries included with --json")
	return cmd
}
