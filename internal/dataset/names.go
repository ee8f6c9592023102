package dataset

import (
	"strings"
	"unicode"
)

// SafeName turns a task, setting, source, or variety name into a file
// name component: lowercase, no spaces, '/' as '-', and only letters,
// digits, '-', '_' and '.' kept.
func SafeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "/", "-")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FilterSarcasmSource keeps all non-sarcasm records and only the sarcasm
// records whose source equals source. An empty source disables the filter.
func FilterSarcasmSource(records []Record, source string) []Record {
	if source == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, record := range records {
		if record.Task != TaskSarcasm {
			out = append(out, record)
		}
	}
	for _, record := range records {
		if record.Task == TaskSarcasm && record.SourceName == source {
			out = append(out, record)
		}
	}
	return out
}
