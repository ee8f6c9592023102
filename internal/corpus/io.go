package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON writes an indented JSON document.
func WriteJSON(path string, value any) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	content = append(content, '\n')
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ReadRunReport reads a run report JSON document.
func ReadRunReport(path string) (RunReport, error) {
	var report RunReport
	if err := readJSON(path, "run report", &report); err != nil {
		return RunReport{}, err
	}
	return report, nil
}

// ReadSplitManifest reads a split manifest JSON document.
func ReadSplitManifest(path string) (SplitManifest, error) {
	var manifest SplitManifest
	if err := readJSON(path, "split manifest", &manifest); err != nil {
		return SplitManifest{}, err
	}
	return manifest, nil
}

func readJSON(path string, what string, value any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	if err := json.Unmarshal(content, value); err != nil {
		return fmt.Errorf("parse %s json: %w", what, err)
	}
	return nil
}

// EnsureParentDir creates the parent directory of path if it is missing.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
