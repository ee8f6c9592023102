package output

import (
	"encoding/json"
	"io"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
)

// JSONFormatter outputs results as indented JSON.
type JSONFormatter struct{}

// FormatDrift writes the drift report as one JSON object.
func (f *JSONFormatter) FormatDrift(w io.Writer, drift *corpus.DriftReport) error {
	return encode(w, drift)
}

// FormatVerify writes the results as a JSON array.
// An empty slice of results produces [].
func (f *JSONFormatter) FormatVerify(w io.Writer, results []corpus.VerifyResult) error {
	if results == nil {
		results = []corpus.VerifyResult{}
	}
	return encode(w, results)
}

func encode(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
