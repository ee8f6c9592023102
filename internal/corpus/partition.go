package corpus

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
	"github.com/emirmasood/FigLangUnderstanding/internal/log"
	"github.com/emirmasood/FigLangUnderstanding/internal/metrics"
	"github.com/emirmasood/FigLangUnderstanding/internal/split"
)

// Sink persists run artifacts. Each setting writes to its own location, so
// calls for different tasks may run concurrently.
type Sink interface {
	WriteSnapshots(train []dataset.Record, eval []dataset.Record) error
	TestIndexPath(task string) string
	WriteTestSlice(task string, slice TestSlice) (string, error)
	WriteTestIndex(task string, rows []TestIndexRow) error
	WriteSplit(split *SettingSplit) (SettingFiles, error)
	WriteSettingManifest(manifest SettingManifest) error
	WriteTaskIndex(task string, rows []IndexRow) error
	WriteRun(out *RunOutput) error
}

// Partitioner drives settings enumeration, splitting, and artifact emission.
type Partitioner struct {
	// Params applies to every task unless TaskParams is set.
	Params          Params
	TaskParams      func(task string) Params
	MaxLenForModels int
	Workers         int
	Sink            Sink
	Logger          *log.Logger
	Metrics         *metrics.Registry
	Now             func() time.Time
	// ConfigEcho is copied verbatim into the run report.
	ConfigEcho any
}

type taskResult struct {
	index     []IndexRow
	audit     []AuditRow
	testIndex []TestIndexRow
	settings  []SettingReport
	skipped   []SkippedSetting
	slices    []TestSliceReport
}

// Run partitions every task found in train or eval. Split parameters are
// validated for all tasks before anything is written.
func (p *Partitioner) Run(ctx context.Context, train []dataset.Record, eval []dataset.Record) (*RunOutput, error) {
	if p.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	if err := checkLabels(train, eval); err != nil {
		return nil, err
	}
	tasks := taskNames(train, eval)
	for _, task := range tasks {
		params := p.paramsFor(task)
		if err := split.CheckParams(params.ValRatio, params.Seed); err != nil {
			return nil, fmt.Errorf("task %s: %w", task, err)
		}
	}

	if err := p.Sink.WriteSnapshots(train, eval); err != nil {
		return nil, err
	}

	results := make([]taskResult, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Workers, 1))
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.processTask(task, filterBy(train, taskOf, task), filterBy(eval, taskOf, task))
			if err != nil {
				return fmt.Errorf("task %s: %w", task, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := p.assemble(tasks, results, len(train), len(eval))
	if err := p.Sink.WriteRun(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Partitioner) processTask(task string, trainPool []dataset.Record, evalPool []dataset.Record) (taskResult, error) {
	var res taskResult

	testsetsIndex := p.Sink.TestIndexPath(task)
	if len(evalPool) > 0 {
		rows, err := p.writeTestSlices(task, evalPool)
		if err != nil {
			return res, err
		}
		res.testIndex = rows
		for _, row := range rows {
			res.slices = append(res.slices, TestSliceReport{Task: task, Name: row.TestSetting, N: row.N})
		}
		p.Metrics.Add(metrics.TestSlices, float64(len(rows)), task)
	}

	if len(trainPool) == 0 {
		p.Logger.Warnf("task %s: no training records, skipping training settings", task)
		return res, nil
	}

	params := p.paramsFor(task)
	for _, setting := range Settings(task, trainPool) {
		pool, rule := ResolvePool(setting, trainPool)
		if len(pool) < MinPoolSize {
			p.Logger.Warnf("task %s setting %s: pool size %d below %d, skipped", task, setting, len(pool), MinPoolSize)
			res.skipped = append(res.skipped, SkippedSetting{
				Task:     task,
				Setting:  setting,
				PoolSize: len(pool),
				Reason:   fmt.Sprintf("pool size below %d", MinPoolSize),
			})
			p.Metrics.Add(metrics.SettingsSkipped, 1, task)
			continue
		}

		result, err := SplitSetting(task, setting, pool, params)
		if err != nil {
			return res, err
		}
		result.Manifest.MaxLenForModels = p.MaxLenForModels
		p.Logger.Printf(
			"task %s setting %s: filter=%s strategy=%s train=%d val=%d",
			task, setting, rule, result.Manifest.SplitStrategy, len(result.Train), len(result.Val),
		)

		row, err := p.emitSetting(result, testsetsIndex)
		if err != nil {
			return res, err
		}
		res.index = append(res.index, row)
		res.audit = append(res.audit, AuditRow{
			Task:           task,
			Setting:        setting,
			SplitStrategy:  result.Manifest.SplitStrategy,
			TrainLabelDist: LabelDistribution(result.Train),
			ValLabelDist:   LabelDistribution(result.Val),
		})
		res.settings = append(res.settings, SettingReport{
			Task:          task,
			Setting:       setting,
			SplitStrategy: result.Manifest.SplitStrategy,
			Seed:          params.Seed,
			ValRatio:      params.ValRatio,
			NTrain:        len(result.Train),
			NVal:          len(result.Val),
		})
		p.Metrics.Add(metrics.SettingsEmitted, 1, task, string(result.Manifest.SplitStrategy))
		p.Metrics.Add(metrics.RowsWritten, float64(len(result.Train)), task, "train")
		p.Metrics.Add(metrics.RowsWritten, float64(len(result.Val)), task, "val")
	}

	if len(res.index) > 0 {
		if err := p.Sink.WriteTaskIndex(task, res.index); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Partitioner) emitSetting(result *SettingSplit, testsetsIndex string) (IndexRow, error) {
	files, err := p.Sink.WriteSplit(result)
	if err != nil {
		return IndexRow{}, err
	}

	manifest := SettingManifest{
		Task:             result.Manifest.Task,
		Setting:          result.Manifest.Setting,
		Files:            ManifestFiles{TrainCSV: files.TrainCSV, ValCSV: files.ValCSV},
		SplitsJSON:       files.SplitsJSON,
		TestsetsIndexCSV: testsetsIndex,
		Summary: ManifestSummary{
			Train: Summarize(result.Train),
			Val:   Summarize(result.Val),
		},
	}
	if err := p.Sink.WriteSettingManifest(manifest); err != nil {
		return IndexRow{}, err
	}

	return IndexRow{
		Task:             result.Manifest.Task,
		Setting:          result.Manifest.Setting,
		TrainCSV:         files.TrainCSV,
		ValCSV:           files.ValCSV,
		SplitsJSON:       files.SplitsJSON,
		TestsetsIndexCSV: testsetsIndex,
		NTrain:           len(result.Train),
		NVal:             len(result.Val),
	}, nil
}

func (p *Partitioner) writeTestSlices(task string, evalPool []dataset.Record) ([]TestIndexRow, error) {
	slices := BuildTestSlices(evalPool)
	rows := make([]TestIndexRow, 0, len(slices))
	written := make(map[string]string, len(slices))
	for _, slice := range slices {
		path, err := p.Sink.WriteTestSlice(task, slice)
		if err != nil {
			return nil, err
		}
		if prev, ok := written[path]; ok {
			p.Logger.Warnf("task %s: test slice %s overwrote %s at %s", task, slice.Name, prev, path)
		}
		written[path] = slice.Name
		rows = append(rows, TestIndexRow{TestSetting: slice.Name, CSV: path, Summary: Summarize(slice.Records)})
	}
	sort.SliceStable(rows, func(i int, j int) bool {
		return rows[i].TestSetting < rows[j].TestSetting
	})
	if err := p.Sink.WriteTestIndex(task, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *Partitioner) assemble(tasks []string, results []taskResult, nTrain int, nEval int) *RunOutput {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	out := &RunOutput{
		Index:     make([]IndexRow, 0),
		Audit:     make([]AuditRow, 0),
		TestIndex: make(map[string][]TestIndexRow),
		Report: RunReport{
			RunID:        uuid.NewString(),
			GeneratedAt:  now().UTC().Format(time.RFC3339),
			Config:       p.ConfigEcho,
			TrainRecords: nTrain,
			EvalRecords:  nEval,
			Settings:     make([]SettingReport, 0),
			TestSlices:   make([]TestSliceReport, 0),
		},
	}
	for i, res := range results {
		out.Index = append(out.Index, res.index...)
		out.Audit = append(out.Audit, res.audit...)
		if len(res.testIndex) > 0 {
			out.TestIndex[tasks[i]] = res.testIndex
		}
		out.Report.Settings = append(out.Report.Settings, res.settings...)
		out.Report.Skipped = append(out.Report.Skipped, res.skipped...)
		out.Report.TestSlices = append(out.Report.TestSlices, res.slices...)
	}
	sort.SliceStable(out.Index, func(i int, j int) bool {
		if out.Index[i].Task != out.Index[j].Task {
			return out.Index[i].Task < out.Index[j].Task
		}
		return out.Index[i].Setting < out.Index[j].Setting
	})
	return out
}

func (p *Partitioner) paramsFor(task string) Params {
	if p.TaskParams != nil {
		return p.TaskParams(task)
	}
	return p.Params
}

// SplitSetting splits one setting's pool. The result depends only on pool
// and params, so any setting can be recomputed alone.
func SplitSetting(task string, setting string, pool []dataset.Record, params Params) (*SettingSplit, error) {
	scheme, strata := SelectScheme(pool)
	res, err := split.Stratified(strata, params.ValRatio, params.Seed)
	if err != nil {
		return nil, fmt.Errorf("split %s/%s: %w", task, setting, err)
	}

	out := &SettingSplit{
		Manifest: SplitManifest{
			Task:          task,
			Setting:       setting,
			Seed:          params.Seed,
			ValRatio:      params.ValRatio,
			SplitStrategy: scheme,
			TrainRowIDs:   make([]int64, 0, len(res.Train)),
			ValRowIDs:     make([]int64, 0, len(res.Val)),
		},
		Train: make([]dataset.Record, 0, len(res.Train)),
		Val:   make([]dataset.Record, 0, len(res.Val)),
	}
	for _, i := range res.Train {
		out.Train = append(out.Train, pool[i])
		out.Manifest.TrainRowIDs = append(out.Manifest.TrainRowIDs, pool[i].RowID)
	}
	for _, i := range res.Val {
		out.Val = append(out.Val, pool[i])
		out.Manifest.ValRowIDs = append(out.Manifest.ValRowIDs, pool[i].RowID)
	}
	return out, nil
}

// BuildTestSlices returns the FULL slice, one slice per source, and one per
// variety, each in sorted order.
func BuildTestSlices(evalPool []dataset.Record) []TestSlice {
	slices := []TestSlice{{Name: TestPrefix + SettingFull, Records: evalPool}}
	for _, source := range distinct(evalPool, sourceOf) {
		slices = append(slices, TestSlice{Name: TestPrefix + source, Records: filterBy(evalPool, sourceOf, source)})
	}
	for _, variety := range distinct(evalPool, varietyOf) {
		slices = append(slices, TestSlice{Name: TestPrefix + variety, Records: filterBy(evalPool, varietyOf, variety)})
	}
	return slices
}

// Summarize counts records by label, variety, and source.
func Summarize(records []dataset.Record) Summary {
	summary := Summary{
		N:             len(records),
		LabelCounts:   make(map[string]int),
		VarietyCounts: make(map[string]int),
		SourceCounts:  make(map[string]int),
	}
	for _, record := range records {
		summary.LabelCounts[strconv.Itoa(record.Label)]++
		summary.VarietyCounts[record.VarietyName]++
		summary.SourceCounts[record.SourceName]++
	}
	return summary
}

// LabelDistribution returns the share of each label among records.
func LabelDistribution(records []dataset.Record) map[string]float64 {
	dist := make(map[string]float64)
	if len(records) == 0 {
		return dist
	}
	for _, record := range records {
		dist[strconv.Itoa(record.Label)]++
	}
	for label, count := range dist {
		dist[label] = count / float64(len(records))
	}
	return dist
}

func checkLabels(train []dataset.Record, eval []dataset.Record) error {
	for _, records := range [][]dataset.Record{train, eval} {
		for _, record := range records {
			if record.Label != 0 && record.Label != 1 {
				return fmt.Errorf("%w: row %d has label %d", dataset.ErrLabelDomain, record.RowID, record.Label)
			}
		}
	}
	return nil
}

func taskNames(train []dataset.Record, eval []dataset.Record) []string {
	seen := make(map[string]bool)
	tasks := make([]string, 0)
	for _, records := range [][]dataset.Record{train, eval} {
		for _, record := range records {
			if !seen[record.Task] {
				seen[record.Task] = true
				tasks = append(tasks, record.Task)
			}
		}
	}
	sort.Strings(tasks)
	return tasks
}
