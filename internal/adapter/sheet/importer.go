// Package sheet reads yearly returns exported from the reference spreadsheet as JSON.
//
// The export looks like
//
//	{"rows": [{"year": 2020, "uah-deposit": 12.5, "sp500": "16,3"}, ...]}
//
// Each row holds one year and one column per instrument id.
package sheet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// Defaults of the spreadsheet-to-JSON export
const (
	DefaultRowsPath   = "$.rows[*]"
	DefaultYearColumn = "year"
)

// Importer selects rows with a JSONPath expression and turns them into return series
type Importer struct {
	RowsPath   string
	YearColumn string
}

// NewImporter creates an Importer; an empty rowsPath means DefaultRowsPath
func NewImporter(rowsPath string) *Importer {
	if rowsPath == "" {
		rowsPath = DefaultRowsPath
	}
	return &Importer{RowsPath: rowsPath, YearColumn: DefaultYearColumn}
}

// ParseFile reads and parses a JSON export from disk
func (im *Importer) ParseFile(name string) ([]domain.ReturnSeries, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet export: %w", err)
	}
	defer f.Close()

	return im.Parse(f)
}

// Parse decodes a JSON export and returns one series per instrument column
// Series are ordered by instrument id and their points by year
// Blank cells are skipped; anything else that is not a number is an error naming the row and column
func (im *Importer) Parse(r io.Reader) ([]domain.ReturnSeries, error) {
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid sheet export: %w", err)
	}

	selected, err := jsonpath.Get(im.RowsPath, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid rows path %q: %w", im.RowsPath, err)
	}

	// a path selecting a single row returns the row itself instead of a list
	rows, ok := selected.([]any)
	if !ok {
		rows = []any{selected}
	}

	byInstrument := make(map[string]map[int]decimal.Decimal)
	for i, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d: invalid row: expected an object, got %T", i+1, raw)
		}

		year, err := im.parseYear(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		for column, cell := range row {
			if column == im.YearColumn {
				continue
			}

			value, blank, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+1, column, err)
			}
			if blank {
				continue
			}

			years, ok := byInstrument[column]
			if !ok {
				years = make(map[int]decimal.Decimal)
				byInstrument[column] = years
			}
			if _, dup := years[year]; dup {
				return nil, fmt.Errorf("row %d, column %q: invalid row: year %d appears twice", i+1, column, year)
			}
			years[year] = value
		}
	}

	return collect(byInstrument), nil
}

func (im *Importer) parseYear(row map[string]any) (int, error) {
	cell, ok := row[im.YearColumn]
	if !ok {
		return 0, fmt.Errorf("invalid row: missing %q column", im.YearColumn)
	}

	value, blank, err := parseCell(cell)
	if err != nil || blank || !value.IsInteger() {
		return 0, fmt.Errorf("invalid year %v", cell)
	}

	return int(value.IntPart()), nil
}

// parseCell accepts JSON numbers and numeric strings
// Strings may use a decimal comma and a trailing percent sign ("12,5%")
func parseCell(cell any) (value decimal.Decimal, blank bool, err error) {
	switch v := cell.(type) {
	case nil:
		return decimal.Zero, true, nil
	case json.Number:
		value, err = decimal.NewFromString(v.String())
	case float64:
		value = decimal.NewFromFloat(v)
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			return decimal.Zero, true, nil
		}
		value, err = decimal.NewFromString(s)
	default:
		return decimal.Zero, false, fmt.Errorf("invalid number: unexpected %T", cell)
	}

	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid number %v", cell)
	}
	return value, false, nil
}

func collect(byInstrument map[string]map[int]decimal.Decimal) []domain.ReturnSeries {
	ids := make([]string, 0, len(byInstrument))
	for id := range byInstrument {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.ReturnSeries, 0, len(ids))
	for _, id := range ids {
		years := make([]int, 0, len(byInstrument[id]))
		for year := range byInstrument[id] {
			years = append(years, year)
		}
		sort.Ints(years)

		series := domain.ReturnSeries{InstrumentID: id, Points: make([]domain.YearReturn, 0, len(years))}
		for _, year := range years {
			series.Points = append(series.Points, domain.YearReturn{Year: year, Value: byInstrument[id][year]})
		}
		out = append(out, series)
	}
	return out
}
