// Package dataset reads the question-bank CSV file into domain records and
// keeps the parsed result cached until the file changes on disk.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lueurxax/ege-dashboard/internal/core/domain"
	apperrors "github.com/lueurxax/ege-dashboard/internal/core/errors"
	"github.com/lueurxax/ege-dashboard/internal/platform/config"
)

// missingTokens are the cell values treated as absent, matching the usual
// spreadsheet export defaults.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell value counts as absent.
func IsMissing(value string) bool {
	_, ok := missingTokens[value]

	return ok
}

// Decode parses a CSV stream in the given encoding into records.
// The header must name every required column exactly once; extra columns are ignored.
func Decode(r io.Reader, encodingName string) ([]domain.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDatasetUnreadable, err)
	}

	text, err := toUTF8(raw, encodingName)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	// Free-form comments may contain quotes inside unquoted fields; keep them literally.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.ErrEmptyHeader
	}

	if err != nil {
		return nil, wrapParseError(err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.Record

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, wrapParseError(err)
		}

		if len(row) > idx.width {
			line, _ := reader.FieldPos(0)

			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				apperrors.ErrMalformedRow, line, len(row), idx.width)
		}

		records = append(records, domain.Record{
			Subject: cell(row, idx.subject),
			Type:    cell(row, idx.kind),
			Comment: cell(row, idx.comment),
		})
	}

	return records, nil
}

type columnIndex struct {
	subject int
	kind    int
	comment int
	width   int
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))

	for i, name := range header {
		if _, dup := positions[name]; dup {
			return columnIndex{}, fmt.Errorf("%w: %q", apperrors.ErrDuplicateColumn, name)
		}

		positions[name] = i
	}

	var missing []string

	for _, name := range domain.RequiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", apperrors.ErrMissingColumn, strings.Join(missing, ", "))
	}

	return columnIndex{
		subject: positions[domain.ColumnSubject],
		kind:    positions[domain.ColumnType],
		comment: positions[domain.ColumnComment],
		width:   len(header),
	}, nil
}

// cell returns the value at i, or "" when the row is short or the value is missing.
func cell(row []string, i int) string {
	if i >= len(row) || IsMissing(row[i]) {
		return ""
	}

	return row[i]
}

func wrapParseError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: line %d: %w", apperrors.ErrMalformedRow, parseErr.Line, parseErr.Err)
	}

	return fmt.Errorf("%w: %w", apperrors.ErrMalformedRow, err)
}

func toUTF8(raw []byte, encodingName string) ([]byte, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	if enc == unicode.UTF8BOM && !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: file is not valid utf-8", apperrors.ErrInvalidEncoding)
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidEncoding, err)
	}

	return out, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch config.NormalizeEncoding(name) {
	case config.EncodingUTF8:
		return unicode.UTF8BOM, nil
	case config.EncodingWindows1251:
		return charmap.Windows1251, nil
	case config.EncodingKOI8R:
		return charmap.KOI8R, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedEncoding, name)
	}
}
