package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-recurring/internal/cli"
	"github.com/Veraticus/spice-recurring/internal/service"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent saving detection runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			return withStorage(cmd.Context(), func(ctx context.Context, store service.Storage) error {
				runs, err := store.GetRecentDetectionRuns(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to get detection runs: %w", err)
				}

				w := cmd.OutOrStdout()
				if len(runs) == 0 {
					_, _ = fmt.Fprintln(w, cli.FormatInfo("No detection runs recorded yet"))
					return nil
				}
				return cli.RenderRuns(w, runs)
			})
		},
	}

	cmd.Flags().Int("limit", 20, "Number of runs to show")

	return cmd
}
