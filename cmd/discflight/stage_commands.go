package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discflight/internal/api"
	"discflight/internal/config"
	"discflight/internal/daemonrun"
	"discflight/internal/stage"
	"discflight/internal/store"
)

func newStageCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStageCommand(ctx, stage.Scrape, "Scrape new disc certifications into the database"),
		newStageCommand(ctx, stage.Predict, "Predict flight numbers for discs without a prediction"),
		newStageCommand(ctx, stage.Publish, "Announce predictions that have not been published"),
	}
}

func newStageCommand(ctx *commandContext, name, short string) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				runner, err := daemonrun.NewRunner(cfg, st, logger, name)
				if err != nil {
					return err
				}
				run, runErr := stage.Execute(cmd.Context(), stage.Options{
					Logger:   logger,
					Recorder: st,
					Runner:   runner,
				})
				// Predict fires the publish trigger in the background.
				if w, ok := runner.(interface{ Wait() }); ok {
					w.Wait()
				}
				if jsonOut {
					if err := writeJSON(cmd, api.FromRun(run)); err != nil {
						return err
					}
				} else {
					printRun(cmd, run)
				}
				if runErr != nil {
					return fmt.Errorf("%s failed: %w", name, runErr)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run status as JSON")
	return cmd
}

func printRun(cmd *cobra.Command, run store.Run) {
	out := cmd.OutOrStdout()
	if run.Outcome == store.OutcomeSucceeded && run.Message != "" {
		fmt.Fprintln(out, run.Message)
	}
	fmt.Fprintf(out, "Run %s: %s\n", run.ID, run.Outcome)
	if summary := stage.CountsSummary(run.Counts); summary != "" {
		fmt.Fprintf(out, "Counts: %s\n", summary)
	}
}
