package compounder

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// Summary holds the headline figures shown under a growth chart
// Returns are fractions (0.05 means +5%)
type Summary struct {
	Years            int                `json:"years"`
	TotalReturn      decimal.Decimal    `json:"total_return"`
	AnnualizedReturn float64            `json:"annualized_return"`
	Volatility       float64            `json:"volatility"`
	MaxDrawdown      float64            `json:"max_drawdown"`
	BestYear         *domain.YearReturn `json:"best_year,omitempty"`
	WorstYear        *domain.YearReturn `json:"worst_year,omitempty"`
}

// Summarize computes the summary of a yearly return series
// Logic:
//   - TotalReturn: last point of the compounded curve
//   - AnnualizedReturn: (1 + TotalReturn)^(1/years) - 1
//   - Volatility: sample standard deviation of the yearly returns (0 below two years)
//   - MaxDrawdown: largest fall of the growth index from a previous peak, starting at 1
//
// Empty input returns a zero Summary
func Summarize(points []domain.YearReturn) Summary {
	if len(points) == 0 {
		return Summary{TotalReturn: decimal.Zero}
	}

	curve := Compound(points)
	total := curve[len(curve)-1].Value

	summary := Summary{
		Years:       len(points),
		TotalReturn: total,
	}

	growth := total.Add(one).InexactFloat64()
	if growth > 0 {
		summary.AnnualizedReturn = math.Pow(growth, 1/float64(len(points))) - 1
	} else {
		summary.AnnualizedReturn = -1
	}

	fractions := make([]float64, len(points))
	best, worst := 0, 0
	for i, p := range points {
		fractions[i] = p.Value.Div(hundred).InexactFloat64()
		if p.Value.GreaterThan(points[best].Value) {
			best = i
		}
		if p.Value.LessThan(points[worst].Value) {
			worst = i
		}
	}

	if len(fractions) > 1 {
		summary.Volatility = stat.StdDev(fractions, nil)
	}

	bestYear, worstYear := points[best], points[worst]
	summary.BestYear = &bestYear
	summary.WorstYear = &worstYear
	summary.MaxDrawdown = maxDrawdown(curve)

	return summary
}

// maxDrawdown returns the largest relative drop of the growth index as a positive fraction
func maxDrawdown(curve []domain.CurvePoint) float64 {
	peak := 1.0
	drawdown := 0.0
	for _, p := range curve {
		index := p.Value.Add(one).InexactFloat64()
		if index > peak {
			peak = index
			continue
		}
		if dd := (peak - index) / peak; dd > drawdown {
			drawdown = dd
		}
	}
	return drawdown
}
