package dashboard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelection(t *testing.T) {
	available := []string{"bio", "inf", "math"}

	tests := []struct {
		name         string
		query        string
		wantSubjects []string
		wantExplicit bool
	}{
		{name: "defaults to all", query: "", wantSubjects: available},
		{name: "single subject", query: "subject=math", wantSubjects: []string{"math"}, wantExplicit: true},
		{name: "keeps available order", query: "subject=math&subject=bio", wantSubjects: []string{"bio", "math"}, wantExplicit: true},
		{name: "drops unknown and duplicates", query: "subject=chem&subject=inf&subject=inf", wantSubjects: []string{"inf"}, wantExplicit: true},
		{name: "explicit empty selection", query: "applied=1", wantSubjects: []string{}, wantExplicit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			got := ParseSelection(q, available)
			assert.Equal(t, tt.wantSubjects, got.Subjects)
			assert.Equal(t, tt.wantExplicit, got.Explicit)
		})
	}
}

func TestSelection_QueryRoundTrip(t *testing.T) {
	available := []string{"bio", "math", "phys"}
	sel := Selection{Subjects: []string{"bio", "phys"}, Explicit: true}

	back := ParseSelection(sel.Query(), available)
	assert.Equal(t, sel, back)

	empty := Selection{Subjects: []string{}, Explicit: true}
	assert.Equal(t, empty, ParseSelection(empty.Query(), available))
}

func TestSelection_Contains(t *testing.T) {
	sel := Selection{Subjects: []string{"math"}}

	assert.True(t, sel.Contains("math"))
	assert.False(t, sel.Contains("bio"))
}
