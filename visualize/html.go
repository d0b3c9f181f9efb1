package visualize

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/planner"
	"github.com/qwertyBBeers/motion-planning/world"
)

const (
	colorObstacle = "#7f7f7f"
	colorVisited  = "#9ecae1"
	colorPath     = "#1f77b4"
	colorStart    = "#2ca02c"
	colorGoal     = "#d62728"
)

// HTML writes an interactive page with two 3D charts: the scene (obstacle
// outlines, visited cells and endpoints) and the path.
func HTML(out io.Writer, w *world.World, s Scene) error {
	title := s.Title
	if title == "" {
		title = "Motion plan"
	}
	global := chart3DOpts(w, title, s)

	scene := charts.NewScatter3D()
	scene.SetGlobalOptions(global...)
	scene.AddSeries("obstacles", obstacleData(w),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorObstacle}),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	scene.AddSeries("visited", chartData(s.Visited),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorVisited}),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scene.AddSeries("start", endpointData(s.Start),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorStart}),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	scene.AddSeries("goal", endpointData(s.Goal),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorGoal}),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	path := charts.NewLine3D()
	path.SetGlobalOptions(append(global,
		charts.WithTitleOpts(opts.Title{
			Title:    title + " (path)",
			Subtitle: fmt.Sprintf("points=%d length=%.3f", len(s.Path), planner.PathLength(s.Path)),
		}))...)
	path.AddSeries("path", chartData(s.Path),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorPath, Width: 4}))

	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(scene, path)
	if err := page.Render(out); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func chart3DOpts(w *world.World, title string, s Scene) []charts.GlobalOpts {
	lo, hi := w.BoundsMin(), w.BoundsMax()
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("obstacles=%d visited=%d", w.NumObstacles(), len(s.Visited)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x", Type: "value", Min: lo[0], Max: hi[0]}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y", Type: "value", Min: lo[1], Max: hi[1]}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "z", Type: "value", Min: lo[2], Max: hi[2]}),
		charts.WithGrid3DOpts(opts.Grid3D{
			ViewControl: &opts.ViewControl{AutoRotate: opts.Bool(false)},
		}),
	}
}

func obstacleData(w *world.World) []opts.Chart3DData {
	var pts []geometry.Point3
	for _, o := range w.Obstacles() {
		pts = append(pts, densify(outline(o), 0.1)...)
	}
	return chartData(pts)
}

func endpointData(p *geometry.Point3) []opts.Chart3DData {
	if p == nil {
		return nil
	}
	return chartData([]geometry.Point3{*p})
}

func chartData(pts []geometry.Point3) []opts.Chart3DData {
	data := make([]opts.Chart3DData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.Chart3DData{Value: []interface{}{p[0], p[1], p[2]}})
	}
	return data
}
