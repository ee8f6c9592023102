// Package dataset loads raw labeled tables and turns them into canonical
// records: resolved column aliases, canonical source and variety names,
// validated binary labels, and normalized text.
package dataset

import "strconv"

// Task names recognized by the partition policy.
const (
	TaskSentiment = "sentiment"
	TaskSarcasm   = "sarcasm"
)

// EvalRowIDOffset is added to evaluation row ids so they never collide with
// training row ids.
const EvalRowIDOffset int64 = 1_000_000_000

// Columns is the fixed column order of every emitted table.
var Columns = []string{"row_id", "task", "label", "variety_name", "source_name", "text", "text_norm"}

// Record is one labeled example.
type Record struct {
	RowID       int64  `json:"row_id"`
	Task        string `json:"task"`
	Label       int    `json:"label"`
	VarietyName string `json:"variety_name"`
	SourceName  string `json:"source_name"`
	Text        string `json:"text"`
	TextNorm    string `json:"text_norm"`
}

// Row renders the record in Columns order.
func (r Record) Row() []string {
	return []string{
		strconv.FormatInt(r.RowID, 10),
		r.Task,
		strconv.Itoa(r.Label),
		r.VarietyName,
		r.SourceName,
		r.Text,
		r.TextNorm,
	}
}

// AssignRowIDs numbers records sequentially starting at offset.
func AssignRowIDs(records []Record, offset int64) {
	for i := range records {
		records[i].RowID = offset + int64(i)
	}
}
