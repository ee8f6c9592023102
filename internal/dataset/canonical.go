package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type columnAlias struct {
	canonical string
	aliases   []string
}

// Aliases are tried in order; the first present column wins.
var columnAliases = []columnAlias{
	{canonical: "text", aliases: []string{"text"}},
	{canonical: "label", aliases: []string{"label"}},
	{canonical: "task", aliases: []string{"task"}},
	{canonical: "variety_name", aliases: []string{"variety", "variety_name"}},
	{canonical: "source_name", aliases: []string{"source", "source_name"}},
}

var canonicalSources = map[string]string{
	"reddit":  "Reddit",
	"google":  "Google",
	"twitter": "Twitter",
	"youtube": "YouTube",
}

var dashReplacer = strings.NewReplacer("\u2013", "-", "\u2014", "-", "\u00ad", "-")

// Canonicalize resolves column aliases and normalizes record values. It
// fails on missing columns and on labels outside {0, 1}.
func Canonicalize(table Table) ([]Record, error) {
	positions, err := resolveColumns(table.Columns)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(table.Rows))
	badLabels := make(map[string]bool)
	for _, row := range table.Rows {
		label, ok := parseLabel(row[positions["label"]])
		if !ok {
			badLabels[strings.TrimSpace(row[positions["label"]])] = true
			continue
		}
		records = append(records, Record{
			Task:        CanonicalTask(row[positions["task"]]),
			Label:       label,
			VarietyName: CanonicalVariety(row[positions["variety_name"]]),
			SourceName:  CanonicalSource(row[positions["source_name"]]),
			Text:        row[positions["text"]],
		})
	}

	if len(badLabels) > 0 {
		values := make([]string, 0, len(badLabels))
		for value := range badLabels {
			values = append(values, strconv.Quote(value))
		}
		sort.Strings(values)
		return nil, fmt.Errorf("%w: found %s", ErrLabelDomain, strings.Join(values, ", "))
	}
	return records, nil
}

// CanonicalTask lowercases and trims a task name.
func CanonicalTask(task string) string {
	return strings.ToLower(strings.TrimSpace(task))
}

// CanonicalVariety replaces stray Unicode dashes with '-' and trims.
func CanonicalVariety(variety string) string {
	return strings.TrimSpace(dashReplacer.Replace(variety))
}

// CanonicalSource maps known platforms to their canonical casing. Unknown
// sources are only trimmed.
func CanonicalSource(source string) string {
	trimmed := strings.TrimSpace(source)
	if canonical, ok := canonicalSources[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

func resolveColumns(columns []string) (map[string]int, error) {
	byLower := make(map[string]int, len(columns))
	for i, column := range columns {
		byLower[strings.ToLower(strings.TrimSpace(column))] = i
	}

	positions := make(map[string]int, len(columnAliases))
	missing := make([]string, 0)
	for _, alias := range columnAliases {
		found := false
		for _, name := range alias.aliases {
			if i, ok := byLower[name]; ok {
				positions[alias.canonical] = i
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, alias.canonical)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (found %s)", ErrMissingColumns, strings.Join(missing, ", "), strings.Join(columns, ", "))
	}
	return positions, nil
}

func parseLabel(raw string) (int, bool) {
	value := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(value); err == nil {
		return n, n == 0 || n == 1
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), f == 0 || f == 1
}
