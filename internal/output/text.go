package output

import (
	"fmt"
	"io"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
)

// TextFormatter outputs results in human-readable text format.
// When Color is true, mismatches are printed in red and additions in green.
type TextFormatter struct {
	Color bool
}

// FormatDrift writes one line per changed setting, followed by a totals
// line. Unchanged settings are omitted.
func (f *TextFormatter) FormatDrift(w io.Writer, drift *corpus.DriftReport) error {
	for _, key := range drift.Added {
		if _, err := fmt.Fprintf(w, "%s %s\n", f.paint("32", "+"), key); err != nil {
			return err
		}
	}
	for _, key := range drift.Removed {
		if _, err := fmt.Fprintf(w, "%s %s\n", f.paint("31", "-"), key); err != nil {
			return err
		}
	}
	for _, change := range drift.StrategyChanges {
		if _, err := fmt.Fprintf(w, "%s %s\n", f.paint("33", "~"), change); err != nil {
			return err
		}
	}
	for _, s := range drift.Settings {
		if s.BaselineStrategy == "" || s.CandidateStrategy == "" {
			continue
		}
		if s.DeltaTrain == 0 && s.DeltaVal == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s/%s train %+d val %+d\n", s.Task, s.Setting, s.DeltaTrain, s.DeltaVal); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "records train %+d eval %+d\n", drift.DeltaTrainRecords, drift.DeltaEvalRecords)
	return err
}

// FormatVerify writes each result as a single line in the pattern:
// task/setting status strategy train/val
func (f *TextFormatter) FormatVerify(w io.Writer, results []corpus.VerifyResult) error {
	for _, r := range results {
		status := f.paint("32", "ok")
		if !r.OK() {
			status = f.paint("31", "MISMATCH")
		}
		if _, err := fmt.Fprintf(w, "%s/%s %s %s %d/%d\n",
			r.Task, r.Setting, status, r.SplitStrategy, r.NTrain, r.NVal); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) paint(code string, s string) string {
	if !f.Color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}
