package export

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/energyadvisor/core/model"
)

const slotLabel = "2006-01-02 15:04"

// PriceChartHTML renders the price timeline as a line chart with one extra
// series per scheduled activity covering the slots it occupies.
func PriceChartHTML(prices []model.PricePoint, sol *model.ScheduleSolution) (string, error) {
	if len(prices) == 0 {
		return "", fmt.Errorf("no prices to chart")
	}
	line := charts.NewLine()
	unit := prices[0].Currency
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Price timeline"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Price (%s)", unit)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{}),
	)

	xAxis := make([]string, len(prices))
	index := make(map[string]int, len(prices))
	series := make([]opts.LineData, len(prices))
	for i, p := range prices {
		label := p.Start.Format(slotLabel)
		xAxis[i] = label
		index[label] = i
		series[i] = opts.LineData{Value: p.Price.InexactFloat64()}
	}
	line.SetXAxis(xAxis).AddSeries("Price", series)

	if sol != nil {
		for _, a := range sol.Activities {
			data := make([]opts.LineData, len(prices))
			for i := range data {
				data[i] = opts.LineData{Value: "-"}
			}
			for _, s := range a.SlotPrices {
				if i, ok := index[s.Start.Format(slotLabel)]; ok {
					data[i] = opts.LineData{Value: prices[i].Price.InexactFloat64()}
				}
			}
			line.AddSeries(a.ActivityID, data)
		}
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.String(), nil
}
