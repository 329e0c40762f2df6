package main

import (
	"github.com/spf13/cobra"

	"discflight/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "serve [stage...]",
		Short:     "Serve stage trigger endpoints until interrupted",
		Long:      "Serve starts one HTTP listener per stage (scrape, predict, publish) on the configured bind addresses. With no arguments every stage is served.",
		ValidArgs: []string{"scrape", "predict", "publish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				Stages: args,
				Logger: logger,
			})
		},
	}
}
