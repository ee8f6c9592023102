package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emirmasood/FigLangUnderstanding/internal/artifact"
	"github.com/emirmasood/FigLangUnderstanding/internal/config"
	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
	"github.com/emirmasood/FigLangUnderstanding/internal/log"
	"github.com/emirmasood/FigLangUnderstanding/internal/metrics"
)

type buildOptions struct {
	configPath string
	rawDir     string
	procDir    string
	splitsDir  string
	reportDir  string
	seed       int64
	valRatio   float64
	workers    int
	clean      bool
	catalog    bool
	metrics    bool
	verbose    bool
}

func newBuildCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Split every task and setting and write all artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applyBuildFlags(cmd, cfg, opts)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			return runBuild(cmd, cfg, opts.verbose, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to "+config.FileName+" (default: discovered from the working directory)")
	flags.StringVar(&opts.rawDir, "raw", "", "directory holding besstie_train.* and besstie_validation.*")
	flags.StringVar(&opts.procDir, "proc", "", "processed output directory")
	flags.StringVar(&opts.splitsDir, "splits", "", "split manifest directory")
	flags.StringVar(&opts.reportDir, "reports", "", "report directory")
	flags.Int64Var(&opts.seed, "seed", config.DefaultSeed, "random seed")
	flags.Float64Var(&opts.valRatio, "val-ratio", config.DefaultValRatio, "validation fraction in (0, 1)")
	flags.IntVar(&opts.workers, "workers", 1, "tasks processed in parallel")
	flags.BoolVar(&opts.clean, "clean", false, "remove processed and split directories first")
	flags.BoolVar(&opts.catalog, "catalog", false, "also write an SQLite catalog of the run")
	flags.BoolVar(&opts.metrics, "metrics", false, "also write a Prometheus textfile of run counters")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log each setting")
	return cmd
}

// applyBuildFlags copies explicitly set flags over the file configuration.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, opts buildOptions) {
	flags := cmd.Flags()
	dirs := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"raw", opts.rawDir, &cfg.RawDir},
		{"proc", opts.procDir, &cfg.ProcDir},
		{"splits", opts.splitsDir, &cfg.SplitsDir},
		{"reports", opts.reportDir, &cfg.ReportDir},
	}
	for _, dir := range dirs {
		if flags.Changed(dir.flag) {
			*dir.dst = dir.value
		}
	}
	if flags.Changed("seed") {
		cfg.Seed = &opts.seed
	}
	if flags.Changed("val-ratio") {
		cfg.ValRatio = &opts.valRatio
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	toggles := []struct {
		flag  string
		value bool
		dst   *bool
	}{
		{"clean", opts.clean, &cfg.CleanOutput},
		{"catalog", opts.catalog, &cfg.Catalog},
		{"metrics", opts.metrics, &cfg.Metrics},
	}
	for _, toggle := range toggles {
		if flags.Changed(toggle.flag) {
			*toggle.dst = toggle.value
		}
	}
}

func runBuild(cmd *cobra.Command, cfg *config.Config, verbose bool, stdout io.Writer, stderr io.Writer) error {
	logOut := stderr
	if cfg.LogFile != "" {
		logOut = log.FileWriter(stderr, cfg.LogFile)
	}
	logger := log.New(logOut, verbose)
	defer func() { _ = logger.Sync() }()

	trainPath, evalPath, err := dataset.FindRawFiles(cfg.RawDir)
	if err != nil {
		return err
	}
	logger.Printf("train: %s", trainPath)
	logger.Printf("validation: %s", evalPath)

	inputs, err := corpus.Prepare(dataset.FileLoader{}, dataset.TextNormalizer{}, trainPath, evalPath, cfg.SarcasmSource())
	if err != nil {
		return err
	}

	writer := artifact.NewWriter(artifact.Layout{
		ProcDir:   cfg.ProcDir,
		SplitsDir: cfg.SplitsDir,
		ReportDir: cfg.ReportDir,
	})
	writer.Catalog = cfg.Catalog
	if cfg.CleanOutput {
		logger.Printf("cleaning %s and %s", cfg.ProcDir, cfg.SplitsDir)
		if err := writer.Clean(); err != nil {
			return err
		}
	}

	var reg *metrics.Registry
	if cfg.Metrics {
		reg = metrics.NewRegistry()
	}

	p := &corpus.Partitioner{
		TaskParams: func(task string) corpus.Params {
			params := cfg.Effective(task)
			return corpus.Params{Seed: params.Seed, ValRatio: params.ValRatio}
		},
		MaxLenForModels: cfg.MaxLenForModels,
		Workers:         cfg.Workers,
		Sink:            writer,
		Logger:          logger,
		Metrics:         reg,
		ConfigEcho:      cfg,
	}
	out, err := p.Run(cmd.Context(), inputs.Train, inputs.Eval)
	if err != nil {
		return err
	}

	metricsPath := filepath.Join(cfg.ReportDir, "metrics.prom")
	if err := reg.WriteTextfile(metricsPath); err != nil {
		return err
	}

	configPath := filepath.Join(cfg.ReportDir, "config.yml")
	if err := config.Write(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "index:    %s\n", writer.IndexPath())
	fmt.Fprintf(stdout, "run:      %s\n", writer.RunPath())
	fmt.Fprintf(stdout, "config:   %s\n", configPath)
	fmt.Fprintf(stdout, "settings: %d (skipped %d)\n", len(out.Index), len(out.Report.Skipped))
	if cfg.Catalog {
		fmt.Fprintf(stdout, "catalog:  %s\n", writer.CatalogPath())
	}
	if reg != nil {
		fmt.Fprintf(stdout, "metrics:  %s\n", metricsPath)
	}
	return nil
}

// loadConfig loads path, or the discovered config file when path is
// empty. Without any config file the defaults apply relative to the
// working directory.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	found, err := config.Discover(wd)
	if err != nil {
		return nil, err
	}
	if found == "" {
		return config.Defaults(wd), nil
	}
	return config.Load(found)
}
