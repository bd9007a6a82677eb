package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/ege-dashboard/internal/core/domain"
)

const (
	typeOpen     = "открытый ответ"
	typeMatching = "соответствие"
	typeChoice   = "выбор ответа (один)"
	testURL      = "http://x"
)

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Subject: "math", Type: typeOpen, Comment: testURL},
		{Subject: "math", Type: typeOpen},
		{Subject: "math", Type: typeChoice, Comment: "https://files/1.pdf"},
		{Subject: "bio", Type: typeMatching},
		{Subject: "bio", Type: typeMatching, Comment: "см. рисунок"},
		{Subject: "phys", Type: typeChoice, Comment: testURL},
		{Subject: "xyz", Type: "эссе"},
		{Subject: "", Type: typeOpen},
		{Subject: "math"},
	}
}

func TestCompute_SingleSubjectScenario(t *testing.T) {
	records := []domain.Record{
		{Subject: "math", Type: "откр", Comment: testURL},
		{Subject: "math", Type: "откр"},
	}

	agg := Compute(records, Subjects(records))

	require.Equal(t, []string{"Мат (проф.)"}, agg.ByType.Labels)
	require.Equal(t, []string{"откр"}, agg.ByType.Columns)
	assert.Equal(t, 2, agg.ByType.Value("math", "откр"))

	require.Equal(t, []string{"Мат (проф.)"}, agg.Attachments.Labels)
	assert.Equal(t, []string{AttachmentPresent, AttachmentAbsent}, agg.Attachments.Columns)
	assert.Equal(t, 1, agg.Attachments.Value("math", AttachmentPresent))
	assert.Equal(t, 1, agg.Attachments.Value("math", AttachmentAbsent))

	assert.Equal(t, []SubjectCount{{Subject: "math", Label: "Мат (проф.)", Count: 2}}, agg.Totals)
}

func TestCompute_EmptySelection(t *testing.T) {
	agg := Compute(sampleRecords(), nil)

	assert.Zero(t, agg.Records)
	assert.True(t, agg.ByType.Empty())
	assert.Empty(t, agg.Totals)
	assert.True(t, agg.Attachments.Empty())
	assert.NotNil(t, agg.Selected)
}

func TestCompute_RowSumsMatchFilteredCounts(t *testing.T) {
	records := sampleRecords()
	selected := []string{"math", "bio", "xyz"}

	agg := Compute(records, selected)

	perSubject := make(map[string]int)
	for _, r := range Filter(records, selected) {
		perSubject[r.Subject]++
	}

	for i, subject := range agg.ByType.Rows {
		assert.Equal(t, perSubject[subject], agg.ByType.RowTotal(i), subject)
	}

	for i, subject := range agg.Attachments.Rows {
		assert.Equal(t, perSubject[subject], agg.Attachments.RowTotal(i), subject)
	}

	for _, total := range agg.Totals {
		assert.Equal(t, perSubject[total.Subject], total.Count, total.Subject)
	}

	assert.Equal(t, 6, agg.Records)
}

func TestByType_ColumnsAndColors(t *testing.T) {
	table := ByType(Clean(sampleRecords()))

	assert.Equal(t, []string{"bio", "math", "phys", "xyz"}, table.Rows)
	assert.Equal(t, []string{"Биология", "Мат (проф.)", "Физика", "xyz"}, table.Labels)
	assert.Equal(t, []string{typeChoice, typeOpen, typeMatching, "эссе"}, table.Columns)
	assert.Equal(t, []string{"#cccccc", "#2d6b2d", "#cce5cc", FallbackColor}, table.Colors)

	assert.Equal(t, 2, table.Value("math", typeOpen))
	assert.Equal(t, 0, table.Value("bio", typeOpen))
	assert.Equal(t, 0, table.Value("missing", typeOpen))
	assert.Equal(t, 2, table.Max())
}

func TestTotals_SortedDescending(t *testing.T) {
	totals := Totals(Clean(sampleRecords()))

	require.Len(t, totals, 4)
	assert.Equal(t, "math", totals[0].Subject)
	assert.Equal(t, 3, totals[0].Count)
	assert.Equal(t, "bio", totals[1].Subject)
	assert.Equal(t, "phys", totals[2].Subject)
	assert.Equal(t, "xyz", totals[3].Subject)
}

func TestAttachments_OnlyPresentClasses(t *testing.T) {
	table := Attachments([]domain.Record{{Subject: "bio", Type: typeMatching}})

	assert.Equal(t, []string{AttachmentAbsent}, table.Columns)
	assert.Equal(t, []string{"#cccccc"}, table.Colors)
	assert.Equal(t, 1, table.MaxRowTotal())
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, []string{"bio", "math", "phys", "xyz"}, Subjects(sampleRecords()))
	assert.Empty(t, Subjects(nil))
}

func TestFilter_IgnoresUnknownSelection(t *testing.T) {
	filtered := Filter(sampleRecords(), []string{"fr"})
	assert.Empty(t, filtered)
}
