package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-recurring/internal/cli"
	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/config"
	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/recurring"
	"github.com/Veraticus/spice-recurring/internal/service"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect recurring transactions in the ledger",
		Long: `Scan the ledger for subscriptions, bills and paychecks.

By default detect is a dry run: it prints what it found and marks the
patterns that are already tracked. Pass --save to persist new patterns
together with the transactions that support them.`,
		RunE: runDetect,
	}

	cmd.Flags().Bool("save", false, "Persist newly detected patterns")
	cmd.Flags().Int("lookback", 0, "Months of history to analyze (default from recurring.lookback_months)")
	cmd.Flags().String("as-of", "", "Evaluate as if today were this date (YYYY-MM-DD)")

	_ = viper.BindPFlag(config.KeyLookbackMonths, cmd.Flags().Lookup("lookback"))

	return cmd
}

// detectOptions controls a single detection run.
type detectOptions struct {
	now      time.Time
	out      io.Writer
	progress io.Writer
	save     bool
}

func runDetect(cmd *cobra.Command, _ []string) error {
	save, _ := cmd.Flags().GetBool("save")
	asOf, _ := cmd.Flags().GetString("as-of")

	now := time.Now().UTC()
	if asOf != "" {
		parsed, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			return common.NewUserError("--as-of must be a YYYY-MM-DD date", err)
		}
		now = parsed
	}

	cfg, err := config.LoadDetectionConfig(viper.GetViper())
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, cancel := handler.HandleInterrupts(cmd.Context(), save)
	defer cancel()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	_, err = detect(ctx, store, cfg, detectOptions{
		now:      now,
		save:     save,
		out:      cmd.OutOrStdout(),
		progress: os.Stderr,
	})
	if handler.WasInterrupted() {
		return nil
	}
	return err
}

// detect reads the lookback window from the ledger, runs detection and either
// reports the result or persists it. A saving run returns its recorded
// detection run.
func detect(ctx context.Context, store service.Storage, cfg recurring.Config, opts detectOptions) (*model.DetectionRun, error) {
	started := time.Now().UTC()

	detector, err := recurring.NewDetector(cfg, recurring.WithClock(func() time.Time { return opts.now }))
	if err != nil {
		return nil, err
	}
	since := detector.Since(opts.now)

	var txns []model.Transaction
	err = common.WithRetry(ctx, func() error {
		var readErr error
		txns, readErr = store.GetTransactionsSince(ctx, since)
		return readErr
	}, common.DefaultRetryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	if len(txns) == 0 {
		_, _ = fmt.Fprintln(opts.out, cli.FormatInfo(fmt.Sprintf("No transactions since %s", since.Format("2006-01-02"))))
		return nil, nil
	}

	slog.Info("Detecting recurring transactions",
		"transactions", len(txns),
		"since", since.Format("2006-01-02"),
		"lookback_months", cfg.LookbackMonths)

	patterns, err := detector.Detect(ctx, txns)
	if err != nil {
		return nil, err
	}

	if len(patterns) == 0 {
		_, _ = fmt.Fprintln(opts.out, cli.FormatInfo("No recurring patterns found"))
		return nil, nil
	}

	if !opts.save {
		return nil, report(ctx, store, patterns, opts.out)
	}

	run := model.DetectionRun{
		ID:             uuid.New().String(),
		StartedAt:      started,
		LookbackMonths: cfg.LookbackMonths,
		Transactions:   len(txns),
		Patterns:       len(patterns),
	}

	bar := cli.NewProgressBar(opts.progress, len(patterns), "Saving patterns")
	persister := recurring.NewPersister(store, recurring.WithProgress(bar))
	run.SaveSummary = persister.SaveDetectedPatterns(ctx, patterns)
	run.FinishedAt = time.Now().UTC()

	// The run is recorded even when the batch was interrupted.
	if err := store.SaveDetectionRun(context.WithoutCancel(ctx), &run); err != nil {
		return nil, fmt.Errorf("failed to record detection run: %w", err)
	}

	_, _ = fmt.Fprintln(opts.out, cli.RenderRunSummary(run))
	if run.Errors > 0 {
		_, _ = fmt.Fprintln(opts.out, cli.FormatWarning("Some patterns could not be saved; see the log for details"))
	}
	return &run, nil
}

// report prints detected patterns, marking the ones already tracked.
func report(ctx context.Context, store service.PatternStore, patterns []model.RecurringPattern, w io.Writer) error {
	tracked := make(map[model.PatternKey]bool, len(patterns))
	fresh := 0
	for i := range patterns {
		p := &patterns[i]
		exists, err := store.ExistsActivePattern(ctx, p.MerchantGroupID, p.Frequency, p.Direction)
		if err != nil {
			return fmt.Errorf("failed to check pattern %s: %w", p.MerchantGroupID, err)
		}
		tracked[p.Key()] = exists
		if !exists {
			fresh++
		}
	}

	_, _ = fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("%s Found %d recurring patterns", cli.RepeatIcon, len(patterns))))
	if err := cli.RenderDetectedPatterns(w, patterns, tracked); err != nil {
		return err
	}
	if fresh > 0 {
		_, _ = fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Run with --save to track %d new patterns", fresh)))
	}
	return nil
}
