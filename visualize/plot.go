package visualize

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/world"
)

const pngSize = 8 * vg.Inch

var (
	rgbBounds   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	rgbObstacle = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	rgbVisited  = color.RGBA{R: 158, G: 202, B: 225, A: 255}
	rgbPath     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	rgbStart    = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	rgbGoal     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PNG writes a projection of the scene as a PNG image.
func PNG(out io.Writer, w *world.World, s Scene, v View) error {
	p, err := newPlot(w, s, v)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pngSize, pngSize, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG writes the projection to path. The image format follows the file
// extension.
func SavePNG(path string, w *world.World, s Scene, v View) error {
	p, err := newPlot(w, s, v)
	if err != nil {
		return err
	}
	if err := p.Save(pngSize, pngSize, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func newPlot(w *world.World, s Scene, v View) (*plot.Plot, error) {
	cam := newCamera(v, w.BoundsMin(), w.BoundsMax())

	p := plot.New()
	p.Title.Text = s.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("Motion plan (%s)", v)
	}
	p.X.Label.Text, p.Y.Label.Text = v.axisLabels()

	if err := addLines(p, cam, boxEdges(w.BoundsMin(), w.BoundsMax()), rgbBounds, 0.5); err != nil {
		return nil, err
	}
	for i, o := range w.Obstacles() {
		if err := addLines(p, cam, outline(o), rgbObstacle, 1); err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
	}

	if len(s.Visited) > 0 {
		sc, err := plotter.NewScatter(projectAll(cam, s.Visited))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: rgbVisited, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add("visited", sc)
	}

	if len(s.Path) > 1 {
		line, err := plotter.NewLine(projectAll(cam, s.Path))
		if err != nil {
			return nil, err
		}
		line.Color = rgbPath
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("path", line)
	}

	for _, ep := range []struct {
		name string
		pt   *geometry.Point3
		rgb  color.Color
	}{
		{"start", s.Start, rgbStart},
		{"goal", s.Goal, rgbGoal},
	} {
		if ep.pt == nil {
			continue
		}
		sc, err := plotter.NewScatter(projectAll(cam, []geometry.Point3{*ep.pt}))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: ep.rgb, Radius: vg.Points(5), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add(ep.name, sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func addLines(p *plot.Plot, cam camera, lines [][]geometry.Point3, rgb color.Color, width float64) error {
	for _, l := range lines {
		line, err := plotter.NewLine(projectAll(cam, l))
		if err != nil {
			return err
		}
		line.Color = rgb
		line.Width = vg.Points(width)
		p.Add(line)
	}
	return nil
}

func projectAll(cam camera, pts []geometry.Point3) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = cam.project(pt)
	}
	return xys
}
