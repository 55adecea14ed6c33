// Package compounder turns yearly percentage returns into cumulative growth curves.
package compounder

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Compound folds a series of percentage returns into a cumulative curve
// Logic:
//   - index_0 = 1 + r_0/100
//   - index_i = (1 + r_i/100) * index_(i-1)
//   - every point is reported as index - 1 (net change from the start of the series)
//
// The baseline is the start of the series, so a single year reports its own return
func Compound(points []domain.YearReturn) []domain.CurvePoint {
	curve := make([]domain.CurvePoint, 0, len(points))

	index := one
	for _, p := range points {
		index = index.Mul(one.Add(p.Value.Div(hundred)))
		curve = append(curve, domain.CurvePoint{
			Period: p.Year,
			Value:  index.Sub(one),
		})
	}

	return curve
}

// BlendPortfolio weights every allocated instrument's yearly returns by its share of the allocation
// and sums them per year into one synthetic series
// Logic:
//   - buckets with a zero value are skipped
//   - each series is limited to [startYear, endYear]
//   - a year is present when any weighted bucket has data for it
//   - a bucket without data for a year adds nothing that year; weights are not renormalised
func BlendPortfolio(set domain.AllocationSet, lookup domain.SeriesLookup, startYear, endYear int) []domain.YearReturn {
	blended := make(map[int]decimal.Decimal)

	for _, a := range set {
		if a.Value == 0 {
			continue
		}

		series, ok := lookup(a.ID)
		if !ok {
			continue
		}

		weight := decimal.NewFromInt(int64(a.Value)).Div(hundred)
		for _, p := range series.Window(startYear, endYear) {
			blended[p.Year] = blended[p.Year].Add(weight.Mul(p.Value))
		}
	}

	years := make([]int, 0, len(blended))
	for year := range blended {
		years = append(years, year)
	}
	sort.Ints(years)

	out := make([]domain.YearReturn, 0, len(years))
	for _, year := range years {
		out = append(out, domain.YearReturn{Year: year, Value: blended[year]})
	}

	return out
}
