package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// YearReturn is the percentage return of an instrument over one calendar year
// Value 5 means +5%
type YearReturn struct {
	Year  int             `json:"year"`
	Value decimal.Decimal `json:"value"`
}

// ReturnSeries is the historical yearly returns of one instrument
// Points are ordered by strictly increasing Year
type ReturnSeries struct {
	InstrumentID string
	Points       []YearReturn
}

// CurvePoint is one point of a cumulative curve
// Value is the net change from the baseline as a fraction (0.10 means +10%)
type CurvePoint struct {
	Period int             `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

// SeriesLookup resolves an instrument ID to its return series
type SeriesLookup func(instrumentID string) (ReturnSeries, bool)

// Validate ensures the series is keyed and ordered
func (s *ReturnSeries) Validate() error {
	if s.InstrumentID == "" {
		return errors.New("return series instrument id cannot be empty")
	}

	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Year <= s.Points[i-1].Year {
			return fmt.Errorf("return series %q years must be strictly increasing: %d follows %d",
				s.InstrumentID, s.Points[i].Year, s.Points[i-1].Year)
		}
	}

	return nil
}

// Window returns the points with start <= Year <= end
func (s ReturnSeries) Window(start, end int) []YearReturn {
	out := make([]YearReturn, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Year >= start && p.Year <= end {
			out = append(out, p)
		}
	}
	return out
}

// FirstYear returns the first covered year, or 0 for an empty series
func (s ReturnSeries) FirstYear() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[0].Year
}

// LastYear returns the last covered year, or 0 for an empty series
func (s ReturnSeries) LastYear() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Year
}
