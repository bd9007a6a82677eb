package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/lueurxax/ege-dashboard/internal/core/domain"
	apperrors "github.com/lueurxax/ege-dashboard/internal/core/errors"
)

const testEncodingUTF8 = "utf-8"

func TestDecode(t *testing.T) {
	input := "id,subject,type,comment\n" +
		"1,math,открытый ответ,http://x\n" +
		"2,math,открытый ответ,\n" +
		"3,bio,NA,see attachment\n" +
		"4,,соответствие,None\n"

	records, err := Decode(strings.NewReader(input), testEncodingUTF8)
	require.NoError(t, err)

	want := []domain.Record{
		{Subject: "math", Type: "открытый ответ", Comment: "http://x"},
		{Subject: "math", Type: "открытый ответ"},
		{Subject: "bio", Comment: "see attachment"},
		{Type: "соответствие"},
	}
	assert.Equal(t, want, records)
}

func TestDecode_HeaderOnly(t *testing.T) {
	records, err := Decode(strings.NewReader("subject,type,comment\n"), testEncodingUTF8)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecode_StripsBOM(t *testing.T) {
	input := "\ufeffsubject,type,comment\nphys,выбор ответа (один),\n"

	records, err := Decode(strings.NewReader(input), testEncodingUTF8)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "phys", records[0].Subject)
}

func TestDecode_QuotedFields(t *testing.T) {
	input := "subject,type,comment\n\"inf\",\"множественный выбор\",\"a, b\"\n"

	records, err := Decode(strings.NewReader(input), testEncodingUTF8)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a, b", records[0].Comment)
}

func TestDecode_BareQuotesKeptLiterally(t *testing.T) {
	input := "subject,type,comment\n" +
		"math,открытый ответ,см. \"рис 1\"\n" +
		"bio,соответствие,http://x\n"

	records, err := Decode(strings.NewReader(input), testEncodingUTF8)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `см. "рис 1"`, records[0].Comment)
	assert.Equal(t, domain.Record{Subject: "bio", Type: "соответствие", Comment: "http://x"}, records[1])
}

func TestDecode_ShortRowLeavesTrailingColumnsAbsent(t *testing.T) {
	input := "subject,type,comment\nsp,аудирование\n"

	records, err := Decode(strings.NewReader(input), testEncodingUTF8)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.Record{Subject: "sp", Type: "аудирование"}, records[0])
}

func TestDecode_ValuesAreNotTrimmed(t *testing.T) {
	input := "subject,type,comment\nmath, NA , http://x\n"

	records, err := Decode(strings.NewReader(input), testEncodingUTF8)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, " NA ", records[0].Type)
	assert.Equal(t, " http://x", records[0].Comment)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		encoding string
		wantErr  error
	}{
		{name: "empty file", input: "", encoding: testEncodingUTF8, wantErr: apperrors.ErrEmptyHeader},
		{name: "missing column", input: "subject,type\nmath,x\n", encoding: testEncodingUTF8, wantErr: apperrors.ErrMissingColumn},
		{name: "duplicate column", input: "subject,type,comment,type\n", encoding: testEncodingUTF8, wantErr: apperrors.ErrDuplicateColumn},
		{name: "too many fields", input: "subject,type,comment\nmath,x,y,z\n", encoding: testEncodingUTF8, wantErr: apperrors.ErrMalformedRow},
		{name: "invalid utf-8", input: "subject,type,comment\n\xff\xfe,x,y\n", encoding: testEncodingUTF8, wantErr: apperrors.ErrInvalidEncoding},
		{name: "unknown encoding", input: "subject,type,comment\n", encoding: "latin-9", wantErr: apperrors.ErrUnsupportedEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.encoding)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDecode_Windows1251(t *testing.T) {
	utf := "subject,type,comment\nmath,открытый ответ,\n"

	encoded, err := charmap.Windows1251.NewEncoder().String(utf)
	require.NoError(t, err)

	records, err := Decode(strings.NewReader(encoded), "cp1251")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "открытый ответ", records[0].Type)
}

func TestDecode_KOI8R(t *testing.T) {
	utf := "subject,type,comment\nbio,соответствие,\n"

	encoded, err := charmap.KOI8R.NewEncoder().String(utf)
	require.NoError(t, err)

	records, err := Decode(strings.NewReader(encoded), "koi8-r")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "соответствие", records[0].Type)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"} {
		assert.True(t, IsMissing(v), v)
	}

	for _, v := range []string{"0", "na ", "none", "http://x", "-"} {
		assert.False(t, IsMissing(v), v)
	}
}
