package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/parquet-go/parquet-go"
)

const (
	trainFilePattern      = "besstie_train.*"
	validationFilePattern = "besstie_validation.*"
)

// Table is a raw, not yet canonicalized table.
type Table struct {
	Columns []string
	Rows    [][]string
}

type format struct {
	name    string
	pattern glob.Glob
	read    func(io.Reader) (Table, error)
}

var formats = []format{
	{name: "csv", pattern: glob.MustCompile("*.csv"), read: readDelimited(',')},
	{name: "tsv", pattern: glob.MustCompile("*.tsv"), read: readDelimited('\t')},
	{name: "jsonl", pattern: glob.MustCompile("*.{jsonl,ndjson}"), read: readJSONLines},
	{name: "parquet", pattern: glob.MustCompile("*.{parquet,pq}"), read: readParquet},
}

// FindRawFiles locates the raw train and validation files in dir. Both must
// match exactly one file.
func FindRawFiles(dir string) (train string, validation string, err error) {
	fsys := os.DirFS(dir)
	trains, err := doublestar.Glob(fsys, trainFilePattern)
	if err != nil {
		return "", "", fmt.Errorf("glob %s: %w", trainFilePattern, err)
	}
	validations, err := doublestar.Glob(fsys, validationFilePattern)
	if err != nil {
		return "", "", fmt.Errorf("glob %s: %w", validationFilePattern, err)
	}
	if len(trains) != 1 || len(validations) != 1 {
		return "", "", fmt.Errorf(
			"%w in %s: found %d train, %d validation",
			ErrRawFiles,
			dir,
			len(trains),
			len(validations),
		)
	}
	return filepath.Join(dir, trains[0]), filepath.Join(dir, validations[0]), nil
}

// FileLoader reads a raw table from disk and canonicalizes it.
type FileLoader struct{}

// Load reads and canonicalizes the table at path.
func (FileLoader) Load(path string) ([]Record, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	records, err := Canonicalize(table)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %s: %w", path, err)
	}
	return records, nil
}

// ReadTable reads a raw table, choosing the format from the file name.
func ReadTable(path string) (Table, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, f := range formats {
		if !f.pattern.Match(name) {
			continue
		}
		file, err := os.Open(path)
		if err != nil {
			return Table{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = file.Close() }()

		table, err := f.read(bufio.NewReader(file))
		if err != nil {
			return Table{}, fmt.Errorf("read %s %s: %w", f.name, path, err)
		}
		return table, nil
	}
	return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func readDelimited(comma rune) func(io.Reader) (Table, error) {
	return func(r io.Reader) (Table, error) {
		reader := csv.NewReader(r)
		reader.Comma = comma
		reader.FieldsPerRecord = -1
		if comma == '\t' {
			reader.LazyQuotes = true
		}

		header, err := reader.Read()
		if err == io.EOF {
			return Table{}, nil
		}
		if err != nil {
			return Table{}, fmt.Errorf("read header: %w", err)
		}
		if len(header) > 0 {
			header[0] = strings.TrimPrefix(header[0], "\ufeff")
		}

		table := Table{Columns: header}
		for line := 2; ; line++ {
			row, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return Table{}, fmt.Errorf("read line %d: %w", line, err)
			}
			table.Rows = append(table.Rows, padRow(row, len(header)))
		}
		return table, nil
	}
}

func readJSONLines(r io.Reader) (Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	index := make(map[string]int)
	table := Table{}
	objects := make([]map[string]json.RawMessage, 0)
	for line := 1; scanner.Scan(); line++ {
		content := bytes.TrimSpace(scanner.Bytes())
		if len(content) == 0 {
			continue
		}
		var object map[string]json.RawMessage
		if err := json.Unmarshal(content, &object); err != nil {
			return Table{}, fmt.Errorf("parse line %d: %w", line, err)
		}
		keys := make([]string, 0, len(object))
		for key := range object {
			if _, ok := index[key]; !ok {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			index[key] = len(table.Columns)
			table.Columns = append(table.Columns, key)
		}
		objects = append(objects, object)
	}
	if err := scanner.Err(); err != nil {
		return Table{}, fmt.Errorf("scan jsonl: %w", err)
	}

	for _, object := range objects {
		row := make([]string, len(table.Columns))
		for key, raw := range object {
			row[index[key]] = jsonScalar(raw)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// readParquet flattens a Parquet file into a table. Nested leaf columns are
// named by their dotted path; nulls become empty cells.
func readParquet(r io.Reader) (Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read parquet: %w", err)
	}
	file, err := parquet.OpenFile(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Table{}, fmt.Errorf("open parquet: %w", err)
	}

	table := Table{}
	for _, path := range file.Schema().Columns() {
		table.Columns = append(table.Columns, strings.Join(path, "."))
	}
	for i, rowGroup := range file.RowGroups() {
		rows, err := readRowGroup(rowGroup, len(table.Columns))
		if err != nil {
			return Table{}, fmt.Errorf("row group %d: %w", i, err)
		}
		table.Rows = append(table.Rows, rows...)
	}
	return table, nil
}

func readRowGroup(rowGroup parquet.RowGroup, width int) ([][]string, error) {
	rows := rowGroup.Rows()
	defer func() { _ = rows.Close() }()

	out := make([][]string, 0, rowGroup.NumRows())
	buf := make([]parquet.Row, 128)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			cells := make([]string, width)
			for _, value := range row {
				if column := value.Column(); column >= 0 && column < width {
					cells[column] = parquetCell(value)
				}
			}
			out = append(out, cells)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
	}
}

// parquetCell copies byte arrays out of the reader's buffers.
func parquetCell(value parquet.Value) string {
	if value.IsNull() {
		return ""
	}
	switch value.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(value.ByteArray())
	}
	return value.String()
}

func jsonScalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
