package monitor

import (
	"fmt"
	"io"
	"sort"

	"github.com/banshee-data/geohash/internal/geoindex"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echartsAssetsHost serves the echarts JavaScript for rendered pages.
const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// RenderTallyChart writes an HTML page with a bar chart of the per-frame
// supporting point counts of a vote. Bars are ordered by frame ID; the
// winning frame is labelled in the subtitle.
func RenderTallyChart(w io.Writer, title string, res *geoindex.VoteResult) error {
	if res == nil {
		return fmt.Errorf("nil vote result")
	}

	ids := make([]geoindex.FrameID, 0, len(res.Tally))
	for id := range res.Tally {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	x := make([]string, len(ids))
	y := make([]opts.BarData, len(ids))
	for i, id := range ids {
		x[i] = fmt.Sprintf("frame %d", id)
		bar := opts.BarData{Value: res.Tally[id]}
		if id == res.FrameID {
			bar.ItemStyle = &opts.ItemStyle{Color: "#fde725"}
		}
		y[i] = bar
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "540px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("best=frame %d support=%d scene points=%d", res.FrameID, len(res.Support), len(res.Local))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Model frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Supporting points", NameLocation: "middle", NameGap: 30}),
	)
	bar.SetXAxis(x).
		AddSeries("votes", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsHost)
	page.AddCharts(bar)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
