package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-recurring/internal/cli"
	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/service"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Manage tracked recurring patterns",
		Long: `List, deactivate and confirm the recurring patterns saved by
spice detect --save.`,
	}

	// Subcommands
	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsDeactivateCmd())
	cmd.AddCommand(patternsConfirmCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked patterns",
		Long:  `List tracked recurring patterns ordered by their next expected date.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")
			merchant, _ := cmd.Flags().GetString("merchant")

			return withStorage(cmd.Context(), func(ctx context.Context, store service.Storage) error {
				return listPatterns(ctx, store, service.PatternFilter{
					MerchantGroupID: merchant,
					IncludeInactive: all,
				}, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().Bool("all", false, "Include deactivated patterns")
	cmd.Flags().String("merchant", "", "Only show patterns for this merchant group")

	return cmd
}

func listPatterns(ctx context.Context, store service.Storage, filter service.PatternFilter, w io.Writer) error {
	records, err := store.ListPatterns(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list patterns: %w", err)
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, cli.FormatInfo("No patterns tracked yet. Run spice detect --save to find some."))
		return nil
	}

	return cli.RenderPatternRecords(w, records)
}

func patternsDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Stop tracking a pattern",
		Long: `Deactivate a tracked pattern. A later detection run may save the same
merchant, frequency and direction again as a new pattern.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePatternID(args[0])
			if err != nil {
				return err
			}

			return withStorage(cmd.Context(), func(ctx context.Context, store service.Storage) error {
				record, err := store.GetPattern(ctx, id)
				if err != nil {
					return patternLookupError(id, err)
				}
				if err := store.DeactivatePattern(ctx, id); err != nil {
					return fmt.Errorf("failed to deactivate pattern %d: %w", id, err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Pattern %d deactivated: %s", id, describePattern(record))))
				return nil
			})
		},
	}
}

func patternsConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id>",
		Short: "Mark a pattern as confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePatternID(args[0])
			if err != nil {
				return err
			}

			return withStorage(cmd.Context(), func(ctx context.Context, store service.Storage) error {
				record, err := store.GetPattern(ctx, id)
				if err != nil {
					return patternLookupError(id, err)
				}
				if err := store.ConfirmPattern(ctx, id); err != nil {
					return fmt.Errorf("failed to confirm pattern %d: %w", id, err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Pattern %d confirmed: %s", id, describePattern(record))))
				return nil
			})
		},
	}
}

func describePattern(r *model.PatternRecord) string {
	return fmt.Sprintf("%s, %s %s of %s (%s confidence)",
		r.MerchantName, r.Frequency, r.Direction,
		cli.FormatAmount(r.ExpectedAmount, r.IsAmountVariable),
		cli.FormatConfidence(r.ConfidenceScore))
}

func patternLookupError(id int64, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no pattern with id %d", id), err)
	}
	return fmt.Errorf("failed to get pattern %d: %w", id, err)
}

// withStorage runs fn against the configured database and closes it afterwards.
func withStorage(ctx context.Context, fn func(context.Context, service.Storage) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	return fn(ctx, store)
}
