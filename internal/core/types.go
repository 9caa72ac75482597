package core

import "time"

// Field is a target schema field key, e.g. "sku" or "quantity".
type Field string

// HeaderSet is the ordered sequence of column headers extracted from the
// first row of an uploaded file. It is created at parse time and never
// mutated afterwards.
type HeaderSet []string

// Row is one parsed data record. Cells are positional and aligned with
// the HeaderSet of the file they came from; short rows are padded at
// parse time so len(row) == len(headers).
type Row []string

// ParsedFile is the output of the file parser: the header set plus all
// data rows, in file order.
type ParsedFile struct {
	Headers   HeaderSet `json:"headers"`
	Rows      []Row     `json:"-"`
	SheetName string    `json:"sheetName,omitempty"` // spreadsheet input only
}

// RowCount returns the number of data rows.
func (p *ParsedFile) RowCount() int {
	return len(p.Rows)
}

// FieldMapping maps a target schema field to the chosen source header.
// An empty string means the field is unmapped. Exactly one mapping is
// live per wizard session; the auto-mapper seeds it and the user may
// override every entry before validation runs.
type FieldMapping map[Field]string

// InvalidRow is a row excluded from submission, with the reason reported
// by the first failing rule.
type InvalidRow struct {
	Row    Row    `json:"row"`
	Number int    `json:"number"` // 1-based position among data rows
	Reason string `json:"reason"`
}

// ValidationOutcome partitions a row sequence into valid and invalid
// sets. Every input row appears in exactly one partition and order is
// preserved within each side.
type ValidationOutcome struct {
	Valid   []Row        `json:"-"`
	Invalid []InvalidRow `json:"invalid"`
}

// Total returns the number of rows that entered the partition.
func (o *ValidationOutcome) Total() int {
	return len(o.Valid) + len(o.Invalid)
}

// RowError is a per-row error surfaced in an import result.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the terminal summary of one import session. It is
// created after the backend responds and is not mutated afterwards.
type ImportResult struct {
	SessionID    string        `json:"sessionId"`
	SchemaKey    string        `json:"schema"`
	FileName     string        `json:"fileName"`
	SuccessCount int           `json:"successCount"`
	ErrorCount   int           `json:"errorCount"`
	Summary      string        `json:"summaryMessage"`
	Errors       []RowError    `json:"errors,omitempty"`
	Failed       bool          `json:"failed"`
	Duration     time.Duration `json:"-"`
	CompletedAt  time.Time     `json:"completedAt"`
}

// Step is a wizard state machine state.
type Step string

const (
	StepUpload    Step = "upload"
	StepMapping   Step = "mapping"
	StepReview    Step = "review"
	StepImporting Step = "importing"
	StepDone      Step = "done"
	StepFailed    Step = "failed"
)

// MaxInvalidShown caps how many invalid rows are surfaced in review and
// result payloads. The full list is retained in the history record.
const MaxInvalidShown = 10
