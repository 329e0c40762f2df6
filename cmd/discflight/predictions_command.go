package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"discflight/internal/api"
	"discflight/internal/config"
	"discflight/internal/store"
)

func newPredictionsCommand(ctx *commandContext) *cobra.Command {
	predictionsCmd := &cobra.Command{
		Use:   "predictions",
		Short: "Inspect stored flight number predictions",
	}
	predictionsCmd.AddCommand(newPredictionsListCommand(ctx))
	return predictionsCmd
}

func newPredictionsListCommand(ctx *commandContext) *cobra.Command {
	var published string
	var manufacturer string
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List predictions, newest approval first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.PredictionFilter{Manufacturer: manufacturer, Limit: limit}
			if raw := strings.TrimSpace(published); raw != "" {
				value, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("invalid --published value %q", published)
				}
				filter.Published = &value
			}

			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				preds, err := st.ListPredictions(cmd.Context(), filter)
				if err != nil {
					return err
				}
				resp := api.FromPredictions(preds)
				api.SortByApprovedDate(resp.Predictions)
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if resp.Count == 0 {
					fmt.Fprintln(out, "No predictions stored")
					return nil
				}
				fmt.Fprintln(out, renderPredictions(resp.Predictions))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&published, "published", "", "Filter by published flag (true or false)")
	cmd.Flags().StringVar(&manufacturer, "manufacturer", "", "Filter by manufacturer (case insensitive)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print predictions as JSON")
	return cmd
}

func renderPredictions(preds []api.Prediction) string {
	headers := []string{"Approved", "Manufacturer", "Name", "Diameter", "Height", "Rim Depth", "Speed", "Glide", "Turn", "Fade", "Published"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, []string{
			p.ApprovedDate,
			p.Manufacturer,
			p.Name,
			api.DisplayMeasurement(p.Diameter),
			api.DisplayMeasurement(p.Height),
			api.DisplayMeasurement(p.RimDepth),
			strconv.Itoa(p.Speed),
			strconv.Itoa(p.Glide),
			strconv.Itoa(p.Turn),
			strconv.Itoa(p.Fade),
			yesNo(p.Published),
		})
	}
	return renderTable(headers, rows, aligns)
}
