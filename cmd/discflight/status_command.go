package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discflight/internal/api"
	"discflight/internal/config"
	"discflight/internal/stage"
	"discflight/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last run of each stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				statuses := make([]api.RunStatus, 0, len(stage.Names))
				for _, name := range stage.Names {
					run, err := st.LastRun(cmd.Context(), name)
					if err != nil {
						return err
					}
					if run == nil {
						statuses = append(statuses, api.RunStatus{Stage: name, Outcome: "never run"})
						continue
					}
					statuses = append(statuses, api.FromRun(*run))
				}
				if jsonOut {
					return writeJSON(cmd, statuses)
				}
				rows := make([][]string, 0, len(statuses))
				for _, s := range statuses {
					duration := ""
					if s.DurationMS > 0 {
						duration = strconv.FormatInt(s.DurationMS, 10)
					}
					rows = append(rows, []string{s.Stage, s.Outcome, s.StartedAt, duration, stage.CountsSummary(s.Counts), s.Message})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Stage", "Outcome", "Started", "ms", "Counts", "Message"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print run status as JSON")
	return cmd
}
