package corpus

import (
	"sort"
	"strconv"
	"strings"

	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
)

// settingsPolicy enumerates the settings of one task from its training data.
type settingsPolicy func(pool []dataset.Record) []string

var settingPolicies = map[string]settingsPolicy{
	dataset.TaskSentiment: func(pool []dataset.Record) []string {
		return append(distinct(pool, sourceOf), varietySettings(pool)...)
	},
	dataset.TaskSarcasm: func(pool []dataset.Record) []string {
		return append([]string{SettingFull}, varietySettings(pool)...)
	},
}

// Settings returns the ordered settings for task. Tasks without a policy
// get a single FULL setting.
func Settings(task string, pool []dataset.Record) []string {
	policy, ok := settingPolicies[task]
	if !ok {
		return []string{SettingFull}
	}
	return policy(pool)
}

func varietySettings(pool []dataset.Record) []string {
	varieties := distinct(pool, varietyOf)
	settings := make([]string, 0, len(varieties))
	for _, variety := range varieties {
		settings = append(settings, TrainPrefix+variety)
	}
	return settings
}

// poolFilter is one pool-resolution rule. Rules are tried in order and the
// first match decides which records a setting trains on.
type poolFilter struct {
	name    string
	matches func(setting string, sources map[string]bool) bool
	keep    func(setting string, record dataset.Record) bool
}

var poolFilters = []poolFilter{
	{
		name: "source",
		matches: func(setting string, sources map[string]bool) bool {
			return sources[setting]
		},
		keep: func(setting string, record dataset.Record) bool {
			return record.SourceName == setting
		},
	},
	{
		name: "variety",
		matches: func(setting string, _ map[string]bool) bool {
			return strings.HasPrefix(setting, TrainPrefix)
		},
		keep: func(setting string, record dataset.Record) bool {
			return record.VarietyName == strings.TrimPrefix(setting, TrainPrefix)
		},
	},
	{
		name: "full",
		matches: func(setting string, _ map[string]bool) bool {
			return setting == SettingFull
		},
		keep: keepAll,
	},
}

var fallbackFilter = poolFilter{name: "fallback", keep: keepAll}

func keepAll(string, dataset.Record) bool { return true }

// ResolvePool returns the training pool of setting within a task's records
// and the name of the rule that selected it.
func ResolvePool(setting string, taskPool []dataset.Record) ([]dataset.Record, string) {
	sources := make(map[string]bool)
	for _, record := range taskPool {
		sources[record.SourceName] = true
	}

	filter := fallbackFilter
	for _, candidate := range poolFilters {
		if candidate.matches(setting, sources) {
			filter = candidate
			break
		}
	}

	pool := make([]dataset.Record, 0, len(taskPool))
	for _, record := range taskPool {
		if filter.keep(setting, record) {
			pool = append(pool, record)
		}
	}
	return pool, filter.name
}

// schemeRule is one stratification-scheme rule. The first rule that
// applies to a pool wins.
type schemeRule struct {
	scheme  Scheme
	applies func(varieties int, sources int) bool
	key     func(record dataset.Record) string
}

var schemeRules = []schemeRule{
	{
		scheme:  SchemeLabelVariety,
		applies: func(varieties int, _ int) bool { return varieties > 1 },
		key: func(record dataset.Record) string {
			return labelOf(record) + "__" + record.VarietyName
		},
	},
	{
		scheme:  SchemeLabelSource,
		applies: func(_ int, sources int) bool { return sources > 1 },
		key: func(record dataset.Record) string {
			return labelOf(record) + "__" + record.SourceName
		},
	},
	{
		scheme:  SchemeLabel,
		applies: func(int, int) bool { return true },
		key:     labelOf,
	},
}

// SelectScheme picks the stratification scheme for pool and returns the
// stratum key of every record.
func SelectScheme(pool []dataset.Record) (Scheme, []string) {
	varieties := len(distinct(pool, varietyOf))
	sources := len(distinct(pool, sourceOf))

	rule := schemeRules[len(schemeRules)-1]
	for _, candidate := range schemeRules {
		if candidate.applies(varieties, sources) {
			rule = candidate
			break
		}
	}

	strata := make([]string, len(pool))
	for i, record := range pool {
		strata[i] = rule.key(record)
	}
	return rule.scheme, strata
}

func labelOf(record dataset.Record) string { return strconv.Itoa(record.Label) }

func sourceOf(record dataset.Record) string { return record.SourceName }

func varietyOf(record dataset.Record) string { return record.VarietyName }

func taskOf(record dataset.Record) string { return record.Task }

// distinct returns the sorted distinct values of field over records.
func distinct(records []dataset.Record, field func(dataset.Record) string) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, record := range records {
		value := field(record)
		if seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

func filterBy(records []dataset.Record, field func(dataset.Record) string, value string) []dataset.Record {
	out := make([]dataset.Record, 0)
	for _, record := range records {
		if field(record) == value {
			out = append(out, record)
		}
	}
	return out
}
