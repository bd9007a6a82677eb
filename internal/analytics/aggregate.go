// Package analytics turns raw question records into the three count tables
// shown on the dashboard.
package analytics

import (
	"sort"

	"github.com/lueurxax/ege-dashboard/internal/core/domain"
)

// PivotTable is a subject × category count matrix. Rows hold subject codes in
// ascending order and Columns the categories that occur in the data.
type PivotTable struct {
	Rows    []string `json:"rows"`
	Labels  []string `json:"labels"`
	Columns []string `json:"columns"`
	Colors  []string `json:"colors"`
	Counts  [][]int  `json:"counts"`
}

// Empty reports whether the table has no rows.
func (p PivotTable) Empty() bool {
	return len(p.Rows) == 0
}

// RowTotal sums the counts of row i.
func (p PivotTable) RowTotal(i int) int {
	total := 0
	for _, n := range p.Counts[i] {
		total += n
	}

	return total
}

// Max returns the largest single cell.
func (p PivotTable) Max() int {
	peak := 0

	for _, row := range p.Counts {
		for _, n := range row {
			peak = max(peak, n)
		}
	}

	return peak
}

// MaxRowTotal returns the largest row sum, the height of the tallest stacked bar.
func (p PivotTable) MaxRowTotal() int {
	peak := 0
	for i := range p.Rows {
		peak = max(peak, p.RowTotal(i))
	}

	return peak
}

// Value returns the count for a subject code and category.
func (p PivotTable) Value(subject, column string) int {
	row := indexOf(p.Rows, subject)
	col := indexOf(p.Columns, column)

	if row < 0 || col < 0 {
		return 0
	}

	return p.Counts[row][col]
}

// SubjectCount is one bar of the per-subject totals chart.
type SubjectCount struct {
	Subject string `json:"subject"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
}

// Aggregates holds every table derived from one selection.
type Aggregates struct {
	Selected    []string       `json:"selected"`
	Records     int            `json:"records"`
	ByType      PivotTable     `json:"by_type"`
	Totals      []SubjectCount `json:"totals"`
	Attachments PivotTable     `json:"attachments"`
}

// Clean drops records missing a subject or a type.
func Clean(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))

	for _, r := range records {
		if r.Complete() {
			out = append(out, r)
		}
	}

	return out
}

// Subjects returns the distinct subject codes of complete records, sorted.
func Subjects(records []domain.Record) []string {
	seen := make(map[string]bool)

	var result []string

	for _, r := range records {
		if r.Complete() && !seen[r.Subject] {
			seen[r.Subject] = true
			result = append(result, r.Subject)
		}
	}

	sort.Strings(result)

	return result
}

// Filter keeps complete records whose subject is in selected.
func Filter(records []domain.Record, selected []string) []domain.Record {
	keep := make(map[string]bool, len(selected))
	for _, s := range selected {
		keep[s] = true
	}

	out := make([]domain.Record, 0, len(records))

	for _, r := range Clean(records) {
		if keep[r.Subject] {
			out = append(out, r)
		}
	}

	return out
}

// Compute builds the three dashboard tables. The result depends only on the
// records and the selection; an empty selection yields empty tables.
func Compute(records []domain.Record, selected []string) Aggregates {
	filtered := Filter(records, selected)

	return Aggregates{
		Selected:    append(make([]string, 0, len(selected)), selected...),
		Records:     len(filtered),
		ByType:      ByType(filtered),
		Totals:      Totals(filtered),
		Attachments: Attachments(filtered),
	}
}

// ByType counts records per (subject, type). Columns are the types present,
// in ascending order, each with its fixed color.
func ByType(records []domain.Record) PivotTable {
	table := pivot(records, func(r domain.Record) string { return r.Type }, nil)
	table.Colors = colorsFor(table.Columns, TypeColor)

	return table
}

// Totals counts records per subject, largest first. Ties keep code order.
func Totals(records []domain.Record) []SubjectCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Subject]++
	}

	result := make([]SubjectCount, 0, len(counts))
	for code, n := range counts {
		result = append(result, SubjectCount{Subject: code, Label: Label(code), Count: n})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}

		return result[i].Subject < result[j].Subject
	})

	return result
}

// Attachments counts records per (subject, attachment class). The attached
// class always comes first; classes that never occur are left out.
func Attachments(records []domain.Record) PivotTable {
	table := pivot(records, func(r domain.Record) string { return ClassifyAttachment(r.Comment) }, attachmentOrder)
	table.Colors = colorsFor(table.Columns, AttachmentColor)

	return table
}

// pivot groups records by subject and the category returned by key.
// With a fixed order, columns follow it; otherwise they are sorted.
func pivot(records []domain.Record, key func(domain.Record) string, order []string) PivotTable {
	cells := make(map[string]map[string]int)
	present := make(map[string]bool)

	for _, r := range records {
		category := key(r)
		if cells[r.Subject] == nil {
			cells[r.Subject] = make(map[string]int)
		}

		cells[r.Subject][category]++
		present[category] = true
	}

	rows := make([]string, 0, len(cells))
	for subject := range cells {
		rows = append(rows, subject)
	}

	sort.Strings(rows)

	columns := orderColumns(present, order)

	table := PivotTable{
		Rows:    rows,
		Labels:  make([]string, len(rows)),
		Columns: columns,
		Counts:  make([][]int, len(rows)),
	}

	for i, subject := range rows {
		table.Labels[i] = Label(subject)
		table.Counts[i] = make([]int, len(columns))

		for j, column := range columns {
			table.Counts[i][j] = cells[subject][column]
		}
	}

	return table
}

func orderColumns(present map[string]bool, order []string) []string {
	columns := make([]string, 0, len(present))

	if order != nil {
		for _, c := range order {
			if present[c] {
				columns = append(columns, c)
			}
		}

		return columns
	}

	for c := range present {
		columns = append(columns, c)
	}

	sort.Strings(columns)

	return columns
}

func colorsFor(columns []string, lookup func(string) string) []string {
	colors := make([]string, len(columns))
	for i, c := range columns {
		colors[i] = lookup(c)
	}

	return colors
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}

	return -1
}
