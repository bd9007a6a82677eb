// Package domain holds the record types shared by the loader, the aggregator
// and the dashboard.
package domain

// Column names the dataset must provide.
const (
	ColumnSubject = "subject"
	ColumnType    = "type"
	ColumnComment = "comment"
)

// RequiredColumns lists the header names a dataset file must contain.
var RequiredColumns = []string{ColumnSubject, ColumnType, ColumnComment}

// Record is one exam question from the source table.
// An empty string means the value was absent in the file.
type Record struct {
	Subject string // Subject code, e.g. "math"
	Type    string // Question format label
	Comment string // Free-form note, sometimes an attachment URL
}

// HasSubject reports whether the subject value is present.
func (r Record) HasSubject() bool {
	return r.Subject != ""
}

// HasType reports whether the question type is present.
func (r Record) HasType() bool {
	return r.Type != ""
}

// Complete reports whether the record carries both grouping keys.
func (r Record) Complete() bool {
	return r.HasSubject() && r.HasType()
}
