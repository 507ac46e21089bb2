package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-recurring/internal/model"
)

const dateLayout = "2006-01-02"

// FormatAmount renders a magnitude in dollars; variable amounts get a tilde.
func FormatAmount(amount float64, variable bool) string {
	text := "$" + decimal.NewFromFloat(math.Abs(amount)).StringFixed(2)
	if variable {
		return "~" + text
	}
	return text
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

// RenderDetectedPatterns writes a table of freshly detected patterns. Keys in
// tracked are marked as already persisted.
func RenderDetectedPatterns(w io.Writer, patterns []model.RecurringPattern, tracked map[model.PatternKey]bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MERCHANT\tFREQUENCY\tDIRECTION\tAMOUNT\tCONFIDENCE\tSEEN\tLAST\tNEXT\tSOURCE\tSTATUS")

	for i := range patterns {
		p := &patterns[i]
		status := "new"
		if tracked[p.Key()] {
			status = "tracked"
		}
		variable := p.Source == model.SourceVariableAmount
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%d\t%s\t%s\t%s\t%s\n",
			p.MerchantName,
			p.Frequency,
			p.Direction,
			FormatAmount(p.ExpectedAmount, variable),
			p.ConfidenceScore*100,
			p.OccurrenceCount,
			formatDate(p.LastOccurrenceDate),
			formatDate(p.NextExpectedDate),
			p.Source,
			status,
		)
	}
	return tw.Flush()
}

// RenderPatternRecords writes a table of persisted pattern records.
func RenderPatternRecords(w io.Writer, records []model.PatternRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tMERCHANT\tFREQUENCY\tDIRECTION\tAMOUNT\tCONFIDENCE\tNEXT\tSTATUS")

	for i := range records {
		r := &records[i]
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.0f%%\t%s\t%s\n",
			r.ID,
			r.MerchantName,
			r.Frequency,
			r.Direction,
			FormatAmount(r.ExpectedAmount, r.IsAmountVariable),
			r.ConfidenceScore*100,
			formatDate(r.NextExpectedDate),
			recordStatus(r),
		)
	}
	return tw.Flush()
}

func recordStatus(r *model.PatternRecord) string {
	var parts []string
	if r.IsActive {
		parts = append(parts, "active")
	} else {
		parts = append(parts, "inactive")
	}
	if r.IsConfirmed {
		parts = append(parts, "confirmed")
	}
	return strings.Join(parts, ",")
}

// RenderRuns writes a table of detection runs.
func RenderRuns(w io.Writer, runs []model.DetectionRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tSTARTED\tDURATION\tLOOKBACK\tTRANSACTIONS\tPATTERNS\tSAVED\tSKIPPED\tERRORS")

	for i := range runs {
		r := &runs[i]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%dm\t%d\t%d\t%d\t%d\t%d\n",
			shortID(r.ID),
			r.StartedAt.Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.LookbackMonths,
			r.Transactions,
			r.Patterns,
			r.Saved,
			r.Skipped,
			r.Errors,
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderRunSummary renders the outcome of a saving run in a box.
func RenderRunSummary(run model.DetectionRun) string {
	lines := []string{
		fmt.Sprintf("Transactions analyzed: %d", run.Transactions),
		fmt.Sprintf("Patterns detected:     %d", run.Patterns),
		FormatSuccess(fmt.Sprintf("Saved:   %d", run.Saved)),
		SubtleStyle.Render(fmt.Sprintf("  Skipped: %d (already tracked)", run.Skipped)),
	}
	if run.Errors > 0 {
		lines = append(lines, FormatError(fmt.Sprintf("Errors:  %d", run.Errors)))
	}
	lines = append(lines, SubtleStyle.Render("Run "+run.ID))

	return RenderBox(RepeatIcon+" Recurring detection", strings.Join(lines, "\n"))
}
