package corpus

import (
	"fmt"

	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
)

// Loader reads canonical records from a raw file.
type Loader interface {
	Load(path string) ([]dataset.Record, error)
}

// Normalizer cleans record text.
type Normalizer interface {
	Normalize(text string) string
}

// Inputs are the prepared training and evaluation records of one run.
type Inputs struct {
	Train []dataset.Record
	Eval  []dataset.Record
}

// Prepare loads both raw files, fills text_norm, applies the sarcasm
// source filter, and assigns row ids. Training ids start at 0 and
// evaluation ids at dataset.EvalRowIDOffset.
func Prepare(loader Loader, normalizer Normalizer, trainPath string, evalPath string, sarcasmSource string) (Inputs, error) {
	train, err := prepareFile(loader, normalizer, trainPath, sarcasmSource, 0)
	if err != nil {
		return Inputs{}, err
	}
	eval, err := prepareFile(loader, normalizer, evalPath, sarcasmSource, dataset.EvalRowIDOffset)
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{Train: train, Eval: eval}, nil
}

func prepareFile(loader Loader, normalizer Normalizer, path string, sarcasmSource string, offset int64) ([]dataset.Record, error) {
	records, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	for i := range records {
		records[i].TextNorm = normalizer.Normalize(records[i].Text)
	}
	records = dataset.FilterSarcasmSource(records, sarcasmSource)
	dataset.AssignRowIDs(records, offset)
	return records, nil
}
