package corpus

import (
	"errors"
	"strings"
	"testing"

	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
)

type mapLoader map[string][]dataset.Record

func (l mapLoader) Load(path string) ([]dataset.Record, error) {
	records, ok := l[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return append([]dataset.Record{}, records...), nil
}

type upperNormalizer struct{}

func (upperNormalizer) Normalize(text string) string { return strings.ToUpper(text) }

func TestPrepare(t *testing.T) {
	t.Parallel()

	loader := mapLoader{
		"train.csv": concat(
			makeRecords(dataset.TaskSarcasm, "en-AU", "Twitter", 1),
			makeRecords(dataset.TaskSentiment, "en-AU", "Google", 0),
			makeRecords(dataset.TaskSarcasm, "en-UK", "Reddit", 0),
		),
		"validation.csv": makeRecords(dataset.TaskSentiment, "en-IN", "Reddit", 1, 0),
	}

	in, err := Prepare(loader, upperNormalizer{}, "train.csv", "validation.csv", "Reddit")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if len(in.Train) != 2 {
		t.Fatalf("train records = %d, want 2 after sarcasm source filter", len(in.Train))
	}
	if in.Train[0].Task != dataset.TaskSentiment || in.Train[0].RowID != 0 {
		t.Fatalf("first train record = %+v, want sentiment with row id 0", in.Train[0])
	}
	if in.Train[1].SourceName != "Reddit" || in.Train[1].RowID != 1 {
		t.Fatalf("second train record = %+v, want Reddit sarcasm with row id 1", in.Train[1])
	}
	if in.Eval[1].RowID != dataset.EvalRowIDOffset+1 {
		t.Fatalf("eval row id = %d, want %d", in.Eval[1].RowID, dataset.EvalRowIDOffset+1)
	}
	if in.Eval[0].TextNorm != strings.ToUpper(in.Eval[0].Text) {
		t.Fatalf("text_norm = %q, want normalized text", in.Eval[0].TextNorm)
	}
}

func TestPrepare_LoadError(t *testing.T) {
	t.Parallel()

	_, err := Prepare(mapLoader{}, upperNormalizer{}, "train.csv", "validation.csv", "")
	if err == nil || !strings.Contains(err.Error(), "load train.csv: no such file") {
		t.Fatalf("Prepare error = %v", err)
	}
}
