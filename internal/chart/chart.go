package chart

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// ErrNoRecords is returned when there is nothing to plot
var ErrNoRecords = errors.New("no data to visualize")

const title = "IP Tracker Data Visualization"

// RenderRecords writes an HTML bar chart with one bar per distinct IP address,
// in order of first appearance, sized by how many records that address has
func RenderRecords(w io.Writer, records []models.StoredRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	ips, counts := countByIP(records)

	data := make([]opts.BarData, 0, len(counts))
	for _, n := range counts {
		data = append(data, opts.BarData{Value: n})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "IP Address"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Records"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(ips).AddSeries("records", data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func countByIP(records []models.StoredRecord) ([]string, []int) {
	index := make(map[string]int)
	var ips []string
	var counts []int

	for _, r := range records {
		i, ok := index[r.IPAddress]
		if !ok {
			i = len(ips)
			index[r.IPAddress] = i
			ips = append(ips, r.IPAddress)
			counts = append(counts, 0)
		}
		counts[i]++
	}
	return ips, counts
}
