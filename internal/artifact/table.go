package artifact

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
	"github.com/emirmasood/FigLangUnderstanding/internal/dataset"
)

var indexColumns = []string{
	"task", "setting", "train_csv", "val_csv", "splits_json", "testsets_index_csv", "n_train", "n_val",
}

var testIndexColumns = []string{
	"test_setting", "csv", "n", "label_counts", "variety_counts", "source_counts",
}

var auditColumns = []string{
	"task", "setting", "split_strategy", "train_label_dist", "val_label_dist",
}

func writeRecords(path string, records []dataset.Record) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.Row())
	}
	return writeCSV(path, dataset.Columns, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := corpus.EnsureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func indexTable(rows []corpus.IndexRow) [][]string {
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			row.Task,
			row.Setting,
			row.TrainCSV,
			row.ValCSV,
			row.SplitsJSON,
			row.TestsetsIndexCSV,
			strconv.Itoa(row.NTrain),
			strconv.Itoa(row.NVal),
		})
	}
	return table
}

func testIndexTable(rows []corpus.TestIndexRow) ([][]string, error) {
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{row.TestSetting, row.CSV, strconv.Itoa(row.N)}
		for _, counts := range []map[string]int{row.LabelCounts, row.VarietyCounts, row.SourceCounts} {
			cell, err := jsonCell(counts)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		table = append(table, cells)
	}
	return table, nil
}

func auditTable(rows []corpus.AuditRow) ([][]string, error) {
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		train, err := jsonCell(row.TrainLabelDist)
		if err != nil {
			return nil, err
		}
		val, err := jsonCell(row.ValLabelDist)
		if err != nil {
			return nil, err
		}
		table = append(table, []string{row.Task, row.Setting, string(row.SplitStrategy), train, val})
	}
	return table, nil
}

// jsonCell encodes a map as one CSV cell. Keys come out sorted.
func jsonCell(value any) (string, error) {
	content, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal cell: %w", err)
	}
	return string(content), nil
}
