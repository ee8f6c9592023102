package output

import (
	"fmt"
	"io"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
)

// Formatter renders drift and verification results.
type Formatter interface {
	FormatDrift(w io.Writer, drift *corpus.DriftReport) error
	FormatVerify(w io.Writer, results []corpus.VerifyResult) error
}

// New returns the formatter registered under name.
func New(name string, color bool) (Formatter, error) {
	switch name {
	case "", "text":
		return &TextFormatter{Color: color}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text or json)", name)
	}
}
