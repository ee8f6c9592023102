package corpus

import (
	"fmt"
	"sort"
)

type settingKey struct {
	task    string
	setting string
}

func (k settingKey) String() string {
	return k.task + "/" + k.setting
}

// CompareRuns compares two run reports and returns a drift report.
// Settings are listed in (task, setting) order.
func CompareRuns(baseline RunReport, candidate RunReport) *DriftReport {
	before := indexSettings(baseline.Settings)
	after := indexSettings(candidate.Settings)

	keys := make([]settingKey, 0, len(before)+len(after))
	for key := range before {
		keys = append(keys, key)
	}
	for key := range after {
		if _, ok := before[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i int, j int) bool {
		if keys[i].task != keys[j].task {
			return keys[i].task < keys[j].task
		}
		return keys[i].setting < keys[j].setting
	})

	drift := &DriftReport{
		BaselineRunID:     baseline.RunID,
		CandidateRunID:    candidate.RunID,
		DeltaTrainRecords: candidate.TrainRecords - baseline.TrainRecords,
		DeltaEvalRecords:  candidate.EvalRecords - baseline.EvalRecords,
		Settings:          make([]DriftSettingDelta, 0, len(keys)),
	}
	for _, key := range keys {
		old, hadOld := before[key]
		cur, hasCur := after[key]
		switch {
		case !hadOld:
			drift.Added = append(drift.Added, key.String())
		case !hasCur:
			drift.Removed = append(drift.Removed, key.String())
		case old.SplitStrategy != cur.SplitStrategy:
			drift.StrategyChanges = append(drift.StrategyChanges,
				fmt.Sprintf("%s: %s -> %s", key, old.SplitStrategy, cur.SplitStrategy))
		}
		drift.Settings = append(drift.Settings, DriftSettingDelta{
			Task:              key.task,
			Setting:           key.setting,
			BaselineStrategy:  old.SplitStrategy,
			CandidateStrategy: cur.SplitStrategy,
			DeltaTrain:        cur.NTrain - old.NTrain,
			DeltaVal:          cur.NVal - old.NVal,
		})
	}
	return drift
}

// Changed reports whether the candidate run differs from the baseline.
func (d *DriftReport) Changed() bool {
	if len(d.Added) > 0 || len(d.Removed) > 0 || len(d.StrategyChanges) > 0 {
		return true
	}
	if d.DeltaTrainRecords != 0 || d.DeltaEvalRecords != 0 {
		return true
	}
	for _, setting := range d.Settings {
		if setting.DeltaTrain != 0 || setting.DeltaVal != 0 {
			return true
		}
	}
	return false
}

func indexSettings(settings []SettingReport) map[settingKey]SettingReport {
	out := make(map[settingKey]SettingReport, len(settings))
	for _, setting := range settings {
		out[settingKey{task: setting.Task, setting: setting.Setting}] = setting
	}
	return out
}
