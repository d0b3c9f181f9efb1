package visualize

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/qwertyBBeers/motion-planning/geometry"
)

// View selects the direction the static renderer looks from.
type View int

const (
	ViewTop View = iota
	ViewFront
	ViewSide
	ViewIso
)

var viewNames = [...]string{
	ViewTop:   "top",
	ViewFront: "front",
	ViewSide:  "side",
	ViewIso:   "iso",
}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

// ParseView maps a view name to a View. The empty string means ViewIso.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewIso, nil
	}
	for v, name := range viewNames {
		if strings.EqualFold(s, name) {
			return View(v), nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// axisLabels returns the names of the screen axes for the view.
func (v View) axisLabels() (string, string) {
	switch v {
	case ViewTop:
		return "x", "y"
	case ViewFront:
		return "x", "z"
	case ViewSide:
		return "y", "z"
	}
	return "", ""
}

// camera is an orthographic projection onto the view plane. Screen
// coordinates are shifted so that the look-at point keeps its world
// coordinates along the screen axes.
type camera struct {
	view   mgl64.Mat4
	offset [2]float64
}

// newCamera aims the camera at the centre of [lo, hi].
func newCamera(v View, lo, hi geometry.Point3) camera {
	center := lo.Add(hi).Mul(0.5)
	dist := hi.Sub(lo).Len() + 1

	var dir, up mgl64.Vec3
	switch v {
	case ViewTop:
		dir, up = mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0}
	case ViewFront:
		dir, up = mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 0, 1}
	case ViewSide:
		dir, up = mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}
	default:
		dir, up = mgl64.Vec3{1, -1, 1}.Normalize(), mgl64.Vec3{0, 0, 1}
	}
	view := mgl64.LookAtV(center.Add(dir.Mul(dist)), center, up)
	return camera{
		view: view,
		offset: [2]float64{
			view.Row(0).Vec3().Dot(center),
			view.Row(1).Vec3().Dot(center),
		},
	}
}

// project returns the screen coordinates of p.
func (c camera) project(p geometry.Point3) (float64, float64) {
	v := c.view.Mul4x1(p.Vec4(1))
	return v[0] + c.offset[0], v[1] + c.offset[1]
}
