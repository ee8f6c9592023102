package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// AuditPaths returns the CSV, Markdown, and HTML audit report paths.
func (w *Writer) AuditPaths() (string, string, string) {
	base := filepath.Join(w.ReportDir, "preprocess_audit")
	return base + ".csv", base + ".md", base + ".html"
}

func (w *Writer) writeAudit(rows []corpus.AuditRow) error {
	csvPath, mdPath, htmlPath := w.AuditPaths()

	table, err := auditTable(rows)
	if err != nil {
		return err
	}
	if err := writeCSV(csvPath, auditColumns, table); err != nil {
		return err
	}

	source := AuditMarkdown(rows)
	if err := os.WriteFile(mdPath, source, 0o644); err != nil {
		return fmt.Errorf("write audit markdown: %w", err)
	}

	var html bytes.Buffer
	html.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>Preprocess audit</title></head><body>\n")
	if err := markdown.Convert(source, &html); err != nil {
		return fmt.Errorf("render audit html: %w", err)
	}
	html.WriteString("</body></html>\n")
	if err := os.WriteFile(htmlPath, html.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write audit html: %w", err)
	}
	return nil
}

// AuditMarkdown renders audit rows as a Markdown table with one row per
// (task, setting).
func AuditMarkdown(rows []corpus.AuditRow) []byte {
	var b strings.Builder
	b.WriteString("# Preprocess audit\n\n")
	if len(rows) == 0 {
		b.WriteString("No settings were split.\n")
		return []byte(b.String())
	}
	b.WriteString("| task | setting | strategy | train labels | val labels |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			escapeCell(row.Task),
			escapeCell(row.Setting),
			row.SplitStrategy,
			formatDist(row.TrainLabelDist),
			formatDist(row.ValLabelDist),
		)
	}
	return []byte(b.String())
}

func formatDist(dist map[string]float64) string {
	labels := make([]string, 0, len(dist))
	for label := range dist {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s: %.3f", label, dist[label]))
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
