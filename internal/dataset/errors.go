package dataset

import "errors"

// Precondition violations. Each aborts a run before anything is written.
var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrLabelDomain       = errors.New("label values must be binary 0/1")
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrRawFiles          = errors.New("expected exactly one raw train and one raw validation file")
)
