package metrics

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/energyadvisor/core/model"
)

// PriceSummary describes the distribution of a price series. Values are
// floats: they feed dashboards, never cost computations.
type PriceSummary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	// Spread is Max-Min, the most a perfectly shifted kWh can save.
	Spread float64
}

// SummarizePrices computes distribution statistics for points. The mean is
// weighted by each point's duration.
func SummarizePrices(points []model.PricePoint) PriceSummary {
	if len(points) == 0 {
		return PriceSummary{}
	}
	values := make([]float64, len(points))
	weights := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Price.InexactFloat64()
		weights[i] = float64(p.DurationMinutes())
	}
	mean, std := stat.MeanStdDev(values, weights)
	if len(points) == 1 {
		std = 0
	}
	minV, maxV := floats.Min(values), floats.Max(values)
	return PriceSummary{
		Count:  len(points),
		Min:    minV,
		Max:    maxV,
		Mean:   mean,
		StdDev: std,
		Spread: maxV - minV,
	}
}

// Float converts a decimal for metric backends.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
