package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
	"github.com/emirmasood/FigLangUnderstanding/internal/output"
)

func newVerifyCmd(stdout io.Writer) *cobra.Command {
	var (
		configPath string
		manifests  []string
		format     string
		color      bool
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute stored splits and check that the row ids match",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			formatter, err := output.New(format, color)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if len(manifests) == 0 {
				manifests, err = splitManifests(cfg.SplitsDir)
				if err != nil {
					return err
				}
			}
			if len(manifests) == 0 {
				return fmt.Errorf("no split manifests in %s", cfg.SplitsDir)
			}

			trainPath, evalPath, err := dataset.FindRawFiles(cfg.RawDir)
			if err != nil {
				return err
			}
			inputs, err := corpus.Prepare(dataset.FileLoader{}, dataset.TextNormalizer{}, trainPath, evalPath, cfg.SarcasmSource())
			if err != nil {
				return err
			}

			results := make([]corpus.VerifyResult, 0, len(manifests))
			mismatches := 0
			for _, path := range manifests {
				manifest, err := corpus.ReadSplitManifest(path)
				if err != nil {
					return err
				}
				result, err := corpus.Verify(manifest, inputs.Train)
				if err != nil {
					return err
				}
				if !result.OK() {
					mismatches++
				}
				results = append(results, result)
			}
			if err := formatter.FormatVerify(stdout, results); err != nil {
				return err
			}
			if mismatches > 0 {
				return fmt.Errorf("%d of %d splits do not match their manifests", mismatches, len(results))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringSliceVar(&manifests, "manifest", nil, "split manifest to verify (default: every manifest in the splits directory)")
	flags.StringVar(&format, "format", "text", "output format: text or json")
	flags.BoolVar(&color, "color", false, "colorize text output")
	return cmd
}

func splitManifests(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("list split manifests: %w", err)
	}
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, filepath.Join(dir, match))
	}
	return paths, nil
}
