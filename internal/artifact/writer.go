// Package artifact persists partition results to the processed, splits,
// and report directories.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
)

// Layout names the three output roots.
type Layout struct {
	ProcDir   string
	SplitsDir string
	ReportDir string
}

// Writer implements corpus.Sink on the local filesystem. Each setting
// writes under its own directory, so calls for different tasks may run
// concurrently.
type Writer struct {
	Layout
	// Catalog also records the run in an SQLite database.
	Catalog bool
}

var _ corpus.Sink = (*Writer)(nil)

// NewWriter returns a writer for layout.
func NewWriter(layout Layout) *Writer {
	return &Writer{Layout: layout}
}

// Clean removes the processed and splits directories.
func (w *Writer) Clean() error {
	for _, dir := range []string{w.ProcDir, w.SplitsDir} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	return nil
}

func (w *Writer) taskDir(task string) string {
	return filepath.Join(w.ProcDir, dataset.SafeName(task))
}

// GlobalSplitPath is where the split manifest of (task, setting) lives
// under the splits directory.
func (w *Writer) GlobalSplitPath(task string, setting string) string {
	name := dataset.SafeName(task) + "__" + dataset.SafeName(setting) + ".json"
	return filepath.Join(w.SplitsDir, name)
}

// IndexPath is the global settings index.
func (w *Writer) IndexPath() string {
	return filepath.Join(w.ProcDir, "index.csv")
}

// RunPath is the run report.
func (w *Writer) RunPath() string {
	return filepath.Join(w.ReportDir, "run.json")
}

// CatalogPath is the SQLite catalog.
func (w *Writer) CatalogPath() string {
	return filepath.Join(w.ReportDir, "catalog.sqlite")
}

// WriteSnapshots writes the prepared inputs under _all.
func (w *Writer) WriteSnapshots(train []dataset.Record, eval []dataset.Record) error {
	dir := filepath.Join(w.ProcDir, "_all")
	if err := writeRecords(filepath.Join(dir, "train_all.csv"), train); err != nil {
		return err
	}
	return writeRecords(filepath.Join(dir, "validation_all.csv"), eval)
}

// TestIndexPath returns the test-slice index of task.
func (w *Writer) TestIndexPath(task string) string {
	return filepath.Join(w.taskDir(task), "testsets", "index_testsets.csv")
}

// WriteTestSlice writes one evaluation slice and returns its path.
func (w *Writer) WriteTestSlice(task string, slice corpus.TestSlice) (string, error) {
	name := slice.Name
	if rest, ok := strings.CutPrefix(name, corpus.TestPrefix); ok && rest != corpus.SettingFull {
		name = corpus.TestPrefix + dataset.SafeName(rest)
	}
	path := filepath.Join(w.taskDir(task), "testsets", name+".csv")
	if err := writeRecords(path, slice.Records); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTestIndex writes the test-slice index of task.
func (w *Writer) WriteTestIndex(task string, rows []corpus.TestIndexRow) error {
	table, err := testIndexTable(rows)
	if err != nil {
		return err
	}
	return writeCSV(w.TestIndexPath(task), testIndexColumns, table)
}

// WriteSplit writes the train and validation tables of one setting and
// its split manifest, both under the task and in the splits directory.
func (w *Writer) WriteSplit(split *corpus.SettingSplit) (corpus.SettingFiles, error) {
	task, setting := split.Manifest.Task, split.Manifest.Setting
	dir := filepath.Join(w.taskDir(task), "trainsets", dataset.SafeName(setting))
	files := corpus.SettingFiles{
		TrainCSV:   filepath.Join(dir, "train.csv"),
		ValCSV:     filepath.Join(dir, "val.csv"),
		SplitsJSON: w.GlobalSplitPath(task, setting),
	}

	if err := writeRecords(files.TrainCSV, split.Train); err != nil {
		return corpus.SettingFiles{}, err
	}
	if err := writeRecords(files.ValCSV, split.Val); err != nil {
		return corpus.SettingFiles{}, err
	}
	if err := corpus.WriteJSON(files.SplitsJSON, split.Manifest); err != nil {
		return corpus.SettingFiles{}, err
	}
	local := filepath.Join(w.taskDir(task), "splits", dataset.SafeName(setting)+".json")
	if err := corpus.WriteJSON(local, split.Manifest); err != nil {
		return corpus.SettingFiles{}, err
	}
	return files, nil
}

// WriteSettingManifest writes manifest.json next to the setting's tables.
func (w *Writer) WriteSettingManifest(manifest corpus.SettingManifest) error {
	dir := filepath.Join(w.taskDir(manifest.Task), "trainsets", dataset.SafeName(manifest.Setting))
	return corpus.WriteJSON(filepath.Join(dir, "manifest.json"), manifest)
}

// TaskIndexPaths lists every location the per-task index is written to.
// Downstream loaders look for it under each of these names.
func (w *Writer) TaskIndexPaths(task string) []string {
	dir := w.taskDir(task)
	return []string{
		filepath.Join(dir, "index_settings.csv"),
		filepath.Join(dir, "trainsets", "index_trainsets.csv"),
		filepath.Join(dir, "train", "index_train.csv"),
		filepath.Join(dir, "index_train.csv"),
	}
}

// WriteTaskIndex writes the per-task index under all of its names.
func (w *Writer) WriteTaskIndex(task string, rows []corpus.IndexRow) error {
	table := indexTable(rows)
	for _, path := range w.TaskIndexPaths(task) {
		if err := writeCSV(path, indexColumns, table); err != nil {
			return err
		}
	}
	return nil
}

// WriteRun writes the global index, the audit reports, the run report,
// and the catalog when enabled.
func (w *Writer) WriteRun(out *corpus.RunOutput) error {
	if len(out.Index) > 0 {
		if err := writeCSV(w.IndexPath(), indexColumns, indexTable(out.Index)); err != nil {
			return err
		}
	}
	if err := w.writeAudit(out.Audit); err != nil {
		return err
	}
	if err := corpus.WriteJSON(w.RunPath(), out.Report); err != nil {
		return err
	}
	if w.Catalog {
		if err := WriteCatalog(w.CatalogPath(), out); err != nil {
			return err
		}
	}
	return nil
}
