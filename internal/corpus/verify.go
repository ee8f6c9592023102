package corpus

import (
	"fmt"
	"slices"

	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
)

// VerifyResult compares a stored split manifest with a fresh recomputation.
type VerifyResult struct {
	Task          string `json:"task"`
	Setting       string `json:"setting"`
	SplitStrategy Scheme `json:"split_strategy"`
	TrainMatch    bool   `json:"train_match"`
	ValMatch      bool   `json:"val_match"`
	NTrain        int    `json:"n_train"`
	NVal          int    `json:"n_val"`
}

// OK reports whether both row-id lists matched exactly.
func (r VerifyResult) OK() bool {
	return r.TrainMatch && r.ValMatch
}

// Verify recomputes the split described by manifest from the prepared
// training records and compares the row-id lists in order.
func Verify(manifest SplitManifest, train []dataset.Record) (VerifyResult, error) {
	taskPool := filterBy(train, taskOf, manifest.Task)
	pool, _ := ResolvePool(manifest.Setting, taskPool)
	if len(pool) < MinPoolSize {
		return VerifyResult{}, fmt.Errorf("verify %s/%s: pool size %d below %d", manifest.Task, manifest.Setting, len(pool), MinPoolSize)
	}

	params := Params{Seed: manifest.Seed, ValRatio: manifest.ValRatio}
	got, err := SplitSetting(manifest.Task, manifest.Setting, pool, params)
	if err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{
		Task:          manifest.Task,
		Setting:       manifest.Setting,
		SplitStrategy: got.Manifest.SplitStrategy,
		TrainMatch:    slices.Equal(got.Manifest.TrainRowIDs, manifest.TrainRowIDs),
		ValMatch:      slices.Equal(got.Manifest.ValRowIDs, manifest.ValRowIDs),
		NTrain:        len(got.Train),
		NVal:          len(got.Val),
	}, nil
}
