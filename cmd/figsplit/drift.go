package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
	"github.com/emirmasood/FigLangUnderstanding/internal/output"
)

func newDriftCmd(stdout io.Writer) *cobra.Command {
	var (
		baselinePath  string
		candidatePath string
		outPath       string
		format        string
		color         bool
	)
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Compare two run reports",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if baselinePath == "" || candidatePath == "" {
				return errors.New("drift requires --baseline and --candidate")
			}
			formatter, err := output.New(format, color)
			if err != nil {
				return err
			}

			baseline, err := corpus.ReadRunReport(baselinePath)
			if err != nil {
				return err
			}
			candidate, err := corpus.ReadRunReport(candidatePath)
			if err != nil {
				return err
			}
			drift := corpus.CompareRuns(baseline, candidate)
			if outPath != "" {
				if err := corpus.WriteJSON(outPath, drift); err != nil {
					return err
				}
			}
			return formatter.FormatDrift(stdout, drift)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&baselinePath, "baseline", "", "path to baseline run.json")
	flags.StringVar(&candidatePath, "candidate", "", "path to candidate run.json")
	flags.StringVar(&outPath, "out", "", "path to write drift report json")
	flags.StringVar(&format, "format", "text", "output format: text or json")
	flags.BoolVar(&color, "color", false, "colorize text output")
	return cmd
}
