package artifact

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/emirmasood/FigLangUnderstanding/internal/corpus"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	train_records INTEGER NOT NULL,
	eval_records INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	run_id TEXT NOT NULL,
	task TEXT NOT NULL,
	setting TEXT NOT NULL,
	train_csv TEXT NOT NULL,
	val_csv TEXT NOT NULL,
	splits_json TEXT NOT NULL,
	testsets_index_csv TEXT NOT NULL,
	n_train INTEGER NOT NULL,
	n_val INTEGER NOT NULL,
	PRIMARY KEY (run_id, task, setting)
);

CREATE TABLE IF NOT EXISTS testsets (
	run_id TEXT NOT NULL,
	task TEXT NOT NULL,
	test_setting TEXT NOT NULL,
	csv TEXT NOT NULL,
	n INTEGER NOT NULL,
	PRIMARY KEY (run_id, task, test_setting)
);

CREATE TABLE IF NOT EXISTS audit (
	run_id TEXT NOT NULL,
	task TEXT NOT NULL,
	setting TEXT NOT NULL,
	split_strategy TEXT NOT NULL,
	train_label_dist TEXT NOT NULL,
	val_label_dist TEXT NOT NULL,
	PRIMARY KEY (run_id, task, setting)
);
`

// WriteCatalog records a run in the SQLite database at path. Earlier runs
// stay in the database.
func WriteCatalog(path string, out *corpus.RunOutput) error {
	if err := corpus.EnsureParentDir(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(catalogSchema); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin catalog transaction: %w", err)
	}
	if err := insertRun(tx, out); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}

func insertRun(tx *sql.Tx, out *corpus.RunOutput) error {
	runID := out.Report.RunID
	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, generated_at, train_records, eval_records) VALUES (?, ?, ?, ?)`,
		runID, out.Report.GeneratedAt, out.Report.TrainRecords, out.Report.EvalRecords,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, row := range out.Index {
		if _, err := tx.Exec(
			`INSERT INTO settings (run_id, task, setting, train_csv, val_csv, splits_json, testsets_index_csv, n_train, n_val)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, row.Task, row.Setting, row.TrainCSV, row.ValCSV, row.SplitsJSON, row.TestsetsIndexCSV, row.NTrain, row.NVal,
		); err != nil {
			return fmt.Errorf("insert setting %s/%s: %w", row.Task, row.Setting, err)
		}
	}

	for task, rows := range out.TestIndex {
		for _, row := range rows {
			if _, err := tx.Exec(
				`INSERT INTO testsets (run_id, task, test_setting, csv, n) VALUES (?, ?, ?, ?, ?)`,
				runID, task, row.TestSetting, row.CSV, row.N,
			); err != nil {
				return fmt.Errorf("insert testset %s/%s: %w", task, row.TestSetting, err)
			}
		}
	}

	for _, row := range out.Audit {
		train, err := jsonCell(row.TrainLabelDist)
		if err != nil {
			return err
		}
		val, err := jsonCell(row.ValLabelDist)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO audit (run_id, task, setting, split_strategy, train_label_dist, val_label_dist) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, row.Task, row.Setting, string(row.SplitStrategy), train, val,
		); err != nil {
			return fmt.Errorf("insert audit %s/%s: %w", row.Task, row.Setting, err)
		}
	}
	return nil
}
