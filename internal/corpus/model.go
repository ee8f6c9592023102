package corpus

import "github.com/emirmasood/FigLangUnderstanding/internal/dataset"

// Scheme names the stratification key used for one split.
type Scheme string

// Stratification schemes, in selection precedence order.
const (
	SchemeLabelVariety Scheme = "label_variety"
	SchemeLabelSource  Scheme = "label_source"
	SchemeLabel        Scheme = "label"
)

// Setting name constants.
const (
	SettingFull = "FULL"
	TrainPrefix = "TRAIN_"
	TestPrefix  = "TEST_"
)

// MinPoolSize is the smallest filtered pool that is split. Smaller pools
// are skipped without error.
const MinPoolSize = 10

// Params are the split parameters applied to one task.
type Params struct {
	Seed     int64
	ValRatio float64
}

// Summary counts a table by label, variety, and source.
type Summary struct {
	N             int            `json:"n"`
	LabelCounts   map[string]int `json:"label_counts"`
	VarietyCounts map[string]int `json:"variety_counts"`
	SourceCounts  map[string]int `json:"source_counts"`
}

// SplitManifest is the replayable definition of one setting's split.
type SplitManifest struct {
	Task            string  `json:"task"`
	Setting         string  `json:"setting"`
	Seed            int64   `json:"seed"`
	ValRatio        float64 `json:"val_ratio"`
	SplitStrategy   Scheme  `json:"split_strategy"`
	MaxLenForModels int     `json:"max_len_for_models"`
	TrainRowIDs     []int64 `json:"train_row_ids"`
	ValRowIDs       []int64 `json:"val_row_ids"`
}

// SettingSplit is the in-memory result of splitting one setting's pool.
// Train and Val keep the post-split shuffle order.
type SettingSplit struct {
	Manifest SplitManifest
	Train    []dataset.Record
	Val      []dataset.Record
}

// SettingFiles are the locations a Sink wrote one setting's split to.
type SettingFiles struct {
	TrainCSV   string `json:"train_csv"`
	ValCSV     string `json:"val_csv"`
	SplitsJSON string `json:"splits_json"`
}

// SettingManifest links a setting's files and summary statistics.
type SettingManifest struct {
	Task             string          `json:"task"`
	Setting          string          `json:"setting"`
	Files            ManifestFiles   `json:"files"`
	SplitsJSON       string          `json:"splits_json"`
	TestsetsIndexCSV string          `json:"testsets_index_csv"`
	Summary          ManifestSummary `json:"summary"`
}

// ManifestFiles are the table files of one setting.
type ManifestFiles struct {
	TrainCSV string `json:"train_csv"`
	ValCSV   string `json:"val_csv"`
}

// ManifestSummary holds summary statistics for both sides of a split.
type ManifestSummary struct {
	Train Summary `json:"train"`
	Val   Summary `json:"val"`
}

// IndexRow is one (task, setting) entry of the task and global indices.
type IndexRow struct {
	Task             string `json:"task"`
	Setting          string `json:"setting"`
	TrainCSV         string `json:"train_csv"`
	ValCSV           string `json:"val_csv"`
	SplitsJSON       string `json:"splits_json"`
	TestsetsIndexCSV string `json:"testsets_index_csv"`
	NTrain           int    `json:"n_train"`
	NVal             int    `json:"n_val"`
}

// AuditRow records label proportions on both sides of one split.
type AuditRow struct {
	Task           string             `json:"task"`
	Setting        string             `json:"setting"`
	SplitStrategy  Scheme             `json:"split_strategy"`
	TrainLabelDist map[string]float64 `json:"train_label_dist"`
	ValLabelDist   map[string]float64 `json:"val_label_dist"`
}

// TestSlice is one evaluation subset of a task.
type TestSlice struct {
	Name    string
	Records []dataset.Record
}

// TestIndexRow is one entry of a task's test-slice index.
type TestIndexRow struct {
	TestSetting string `json:"test_setting"`
	CSV         string `json:"csv"`
	Summary
}

// SkippedSetting records a setting omitted by policy.
type SkippedSetting struct {
	Task     string `json:"task"`
	Setting  string `json:"setting"`
	PoolSize int    `json:"pool_size"`
	Reason   string `json:"reason"`
}

// SettingReport is the per-setting line of a run report.
type SettingReport struct {
	Task          string  `json:"task"`
	Setting       string  `json:"setting"`
	SplitStrategy Scheme  `json:"split_strategy"`
	Seed          int64   `json:"seed"`
	ValRatio      float64 `json:"val_ratio"`
	NTrain        int     `json:"n_train"`
	NVal          int     `json:"n_val"`
}

// TestSliceReport is the per-slice line of a run report.
type TestSliceReport struct {
	Task string `json:"task"`
	Name string `json:"name"`
	N    int    `json:"n"`
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID        string            `json:"run_id"`
	GeneratedAt  string            `json:"generated_at"`
	Config       any               `json:"config,omitempty"`
	TrainRecords int               `json:"train_records"`
	EvalRecords  int               `json:"eval_records"`
	Settings     []SettingReport   `json:"settings"`
	Skipped      []SkippedSetting  `json:"skipped,omitempty"`
	TestSlices   []TestSliceReport `json:"test_slices"`
}

// RunOutput is everything a run produced, in deterministic order.
type RunOutput struct {
	Index     []IndexRow
	Audit     []AuditRow
	TestIndex map[string][]TestIndexRow
	Report    RunReport
}

// DriftSettingDelta describes how one setting changed between runs.
type DriftSettingDelta struct {
	Task              string `json:"task"`
	Setting           string `json:"setting"`
	BaselineStrategy  Scheme `json:"baseline_strategy,omitempty"`
	CandidateStrategy Scheme `json:"candidate_strategy,omitempty"`
	DeltaTrain        int    `json:"delta_train"`
	DeltaVal          int    `json:"delta_val"`
}

// DriftReport summarizes differences between two run reports.
type DriftReport struct {
	BaselineRunID     string              `json:"baseline_run_id"`
	CandidateRunID    string              `json:"candidate_run_id"`
	DeltaTrainRecords int                 `json:"delta_train_records"`
	DeltaEvalRecords  int                 `json:"delta_eval_records"`
	Added             []string            `json:"added,omitempty"`
	Removed           []string            `json:"removed,omitempty"`
	StrategyChanges   []string            `json:"strategy_changes,omitempty"`
	Settings          []DriftSettingDelta `json:"settings"`
}
