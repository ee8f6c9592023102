package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emirmasood/FigLangUnderstanding/internal/config"
	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
)

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); err == nil {
		t.Fatal("expected usage error for empty args")
	}
	if err := run([]string{"unknown"}, &stdout, &stderr); err == nil {
		t.Fatal("expected usage error for unknown command")
	}
}

func TestRun_FlagValidation(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"drift"}, &stdout, &stderr); err == nil {
		t.Fatal("expected drift flag error")
	}
	if err := run([]string{"verify", "--format", "yaml"}, &stdout, &stderr); err == nil {
		t.Fatal("expected verify format error")
	}
	if err := run([]string{"build", "--seed", "nope"}, &stdout, &stderr); err == nil {
		t.Fatal("expected build flag parse error")
	}
}

// writeRawData writes a small raw corpus and a config pointing at it.
func writeRawData(t *testing.T, root string) string {
	t.Helper()

	var train strings.Builder
	train.WriteString("text,label,task,variety,source\n")
	addRows := func(b *strings.Builder, n int, task string, variety string, source string) {
		for i := 0; i < n; i++ {
			fmt.Fprintf(b, "\"post %d by @someone, see https://example.com\",%d,%s,%s,%s\n", i, i%2, task, variety, source)
		}
	}
	addRows(&train, 12, "Sentiment", "en-AU", "reddit")
	addRows(&train, 10, "Sentiment", "en-AU", "google")
	addRows(&train, 12, "sarcasm", "en-UK", "Reddit")
	addRows(&train, 12, "sarcasm", "en\u2013IN", "Reddit")
	addRows(&train, 5, "sarcasm", "en-UK", "Twitter")

	var validation strings.Builder
	validation.WriteString("text,label,task,variety,source\n")
	addRows(&validation, 4, "sentiment", "en-AU", "Google")
	addRows(&validation, 3, "sarcasm", "en-IN", "Reddit")

	raw := filepath.Join(root, "data", "raw")
	if err := os.MkdirAll(raw, 0o755); err != nil {
		t.Fatalf("mkdir raw: %v", err)
	}
	if err := os.WriteFile(filepath.Join(raw, "besstie_train.csv"), []byte(train.String()), 0o644); err != nil {
		t.Fatalf("write train: %v", err)
	}
	if err := os.WriteFile(filepath.Join(raw, "besstie_validation.csv"), []byte(validation.String()), 0o644); err != nil {
		t.Fatalf("write validation: %v", err)
	}

	configPath := filepath.Join(root, ".figsplit.yml")
	content := strings.TrimSpace(`
seed: 42
val_ratio: 0.2
workers: 2
catalog: true
metrics: true
overrides:
  - tasks: ["sarc*"]
    seed: 7
`) + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func TestRunBuild_WritesOutputs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configPath := writeRawData(t, root)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"build", "--config", configPath}, &stdout, &stderr); err != nil {
		t.Fatalf("build: %v\nstderr:\n%s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "settings: 6 (skipped 0)") {
		t.Fatalf("unexpected build output:\n%s", stdout.String())
	}

	for _, path := range []string{
		filepath.Join(root, "data", "processed", "index.csv"),
		filepath.Join(root, "data", "processed", "sarcasm", "trainsets", "train_en-in", "train.csv"),
		filepath.Join(root, "data", "splits", "sentiment__reddit.json"),
		filepath.Join(root, "reports", "catalog.sqlite"),
		filepath.Join(root, "reports", "metrics.prom"),
		filepath.Join(root, "reports", "preprocess_audit.html"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected output %s: %v", path, err)
		}
	}

	report, err := corpus.ReadRunReport(filepath.Join(root, "reports", "run.json"))
	if err != nil {
		t.Fatalf("read run report: %v", err)
	}
	for _, setting := range report.Settings {
		want := int64(42)
		if setting.Task == "sarcasm" {
			want = 7
		}
		if setting.Seed != want {
			t.Fatalf("%s/%s seed = %d, want %d", setting.Task, setting.Setting, setting.Seed, want)
		}
	}

	effective, err := config.Load(filepath.Join(root, "reports", "config.yml"))
	if err != nil {
		t.Fatalf("load recorded config: %v", err)
	}
	if effective.Seed == nil || *effective.Seed != 42 || effective.Workers != 2 || len(effective.Overrides) != 1 {
		t.Fatalf("recorded config = %+v", effective)
	}
	if !strings.Contains(stdout.String(), "config:   "+filepath.Join(root, "reports", "config.yml")) {
		t.Fatalf("config path not reported:\n%s", stdout.String())
	}

	stdout.Reset()
	if err := run([]string{"verify", "--config", configPath}, &stdout, &stderr); err != nil {
		t.Fatalf("verify: %v\noutput:\n%s", err, stdout.String())
	}
	if got := strings.Count(stdout.String(), " ok "); got != 6 {
		t.Fatalf("verified %d splits, want 6:\n%s", got, stdout.String())
	}
}

func TestRunBuild_SeedFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configPath := writeRawData(t, root)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"build", "--config", configPath, "--seed", "3", "--workers", "1"}, &stdout, &stderr); err != nil {
		t.Fatalf("build: %v", err)
	}
	manifest, err := corpus.ReadSplitManifest(filepath.Join(root, "data", "splits", "sentiment__google.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if manifest.Seed != 3 {
		t.Fatalf("seed = %d, want 3", manifest.Seed)
	}
}

func TestRunBuild_FlagsDisableConfigToggles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configPath := writeRawData(t, root)

	var stdout, stderr bytes.Buffer
	args := []string{"build", "--config", configPath, "--catalog=false", "--metrics=false"}
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("build: %v\nstderr:\n%s", err, stderr.String())
	}
	for _, name := range []string{"catalog.sqlite", "metrics.prom"} {
		if _, err := os.Stat(filepath.Join(root, "reports", name)); !os.IsNotExist(err) {
			t.Errorf("%s written although disabled by flag", name)
		}
	}
	if strings.Contains(stdout.String(), "catalog:") || strings.Contains(stdout.String(), "metrics:") {
		t.Fatalf("disabled outputs reported:\n%s", stdout.String())
	}
}

func TestRunBuild_InvalidRatio(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configPath := writeRawData(t, root)

	var stdout, stderr bytes.Buffer
	err := run([]string{"build", "--config", configPath, "--val-ratio", "1.5"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "val_ratio") {
		t.Fatalf("expected val_ratio error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "data", "processed")); !os.IsNotExist(statErr) {
		t.Fatal("processed directory written despite invalid settings")
	}
}

func TestRunDrift_WritesOutput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	baselinePath := filepath.Join(root, "baseline.json")
	candidatePath := filepath.Join(root, "candidate.json")
	outPath := filepath.Join(root, "drift.json")

	baseline := corpus.RunReport{
		RunID:        "a",
		TrainRecords: 40,
		Settings:     []corpus.SettingReport{{Task: "sentiment", Setting: "Reddit", SplitStrategy: corpus.SchemeLabel, NTrain: 18, NVal: 2}},
	}
	candidate := corpus.RunReport{
		RunID:        "b",
		TrainRecords: 45,
		Settings:     []corpus.SettingReport{{Task: "sentiment", Setting: "Reddit", SplitStrategy: corpus.SchemeLabel, NTrain: 22, NVal: 3}},
	}
	if err := corpus.WriteJSON(baselinePath, baseline); err != nil {
		t.Fatalf("write baseline: %v", err)
	}
	if err := corpus.WriteJSON(candidatePath, candidate); err != nil {
		t.Fatalf("write candidate: %v", err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{"drift", "--baseline", baselinePath, "--candidate", candidatePath, "--out", outPath}
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("drift: %v", err)
	}
	want := "  sentiment/Reddit train +4 val +1\nrecords train +5 eval +0\n"
	if stdout.String() != want {
		t.Fatalf("drift output = %q, want %q", stdout.String(), want)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected drift output: %v", err)
	}
}
