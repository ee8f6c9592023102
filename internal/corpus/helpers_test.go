package corpus

import (
	"fmt"
	"sort"
	"sync"

	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
)

// recordingSink keeps everything a run would persist.
type recordingSink struct {
	mu         sync.Mutex
	snapshots  int
	splits     map[string]*SettingSplit
	manifests  map[string]SettingManifest
	slices     map[string][]TestSlice
	testIndex  map[string][]TestIndexRow
	taskIndex  map[string][]IndexRow
	runs       []*RunOutput
	failSplits bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		splits:    make(map[string]*SettingSplit),
		manifests: make(map[string]SettingManifest),
		slices:    make(map[string][]TestSlice),
		testIndex: make(map[string][]TestIndexRow),
		taskIndex: make(map[string][]IndexRow),
	}
}

func (s *recordingSink) WriteSnapshots([]dataset.Record, []dataset.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++
	return nil
}

func (s *recordingSink) TestIndexPath(task string) string {
	return task + "/testsets/index_testsets.csv"
}

func (s *recordingSink) WriteTestSlice(task string, slice TestSlice) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slices[task] = append(s.slices[task], slice)
	return task + "/testsets/" + slice.Name + ".csv", nil
}

func (s *recordingSink) WriteTestIndex(task string, rows []TestIndexRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testIndex[task] = rows
	return nil
}

func (s *recordingSink) WriteSplit(split *SettingSplit) (SettingFiles, error) {
	if s.failSplits {
		return SettingFiles{}, fmt.Errorf("write split: disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := split.Manifest.Task + "/" + split.Manifest.Setting
	s.splits[key] = split
	return SettingFiles{
		TrainCSV:   key + "/train.csv",
		ValCSV:     key + "/val.csv",
		SplitsJSON: key + ".json",
	}, nil
}

func (s *recordingSink) WriteSettingManifest(manifest SettingManifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[manifest.Task+"/"+manifest.Setting] = manifest
	return nil
}

func (s *recordingSink) WriteTaskIndex(task string, rows []IndexRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskIndex[task] = rows
	return nil
}

func (s *recordingSink) WriteRun(out *RunOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, out)
	return nil
}

func (s *recordingSink) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots + len(s.splits) + len(s.manifests) + len(s.taskIndex) + len(s.testIndex) + len(s.runs)
}

func (s *recordingSink) splitKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.splits))
	for key := range s.splits {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// makeRecords builds one record per label with the given attributes.
func makeRecords(task string, variety string, source string, labels ...int) []dataset.Record {
	records := make([]dataset.Record, 0, len(labels))
	for _, label := range labels {
		records = append(records, dataset.Record{
			Task:        task,
			Label:       label,
			VarietyName: variety,
			SourceName:  source,
			Text:        fmt.Sprintf("%s %s %s %d", task, variety, source, label),
		})
	}
	return records
}

func repeat(label int, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = label
	}
	return out
}

func labels(counts ...int) []int {
	out := make([]int, 0)
	for label, n := range counts {
		out = append(out, repeat(label, n)...)
	}
	return out
}

func concat(parts ...[]dataset.Record) []dataset.Record {
	out := make([]dataset.Record, 0)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func numbered(records []dataset.Record, offset int64) []dataset.Record {
	dataset.AssignRowIDs(records, offset)
	return records
}

// sentimentPool has 20 records: labels 0:12 and 1:8, Reddit 11 and Google 9,
// one variety.
func sentimentPool() []dataset.Record {
	return numbered(concat(
		makeRecords(dataset.TaskSentiment, "en-AU", "Reddit", labels(7, 4)...),
		makeRecords(dataset.TaskSentiment, "en-AU", "Google", labels(5, 4)...),
	), 0)
}
