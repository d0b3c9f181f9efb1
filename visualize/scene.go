// Package visualize renders a world together with a planning result, either
// as an interactive 3D HTML page or as a static 2D projection.
package visualize

import (
	"math"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/planner"
)

// Scene is what gets drawn on top of the world. Every field is optional.
type Scene struct {
	Title   string
	Start   *geometry.Point3
	Goal    *geometry.Point3
	Path    []geometry.Point3
	Visited []geometry.Point3
}

// SceneOf builds a Scene from the endpoints and the result of a plan.
func SceneOf(start, goal geometry.Point3, res planner.Result) Scene {
	return Scene{
		Start:   &start,
		Goal:    &goal,
		Path:    res.Path,
		Visited: res.Visited,
	}
}

// circleSegments is the number of chords per sphere great circle.
const circleSegments = 32

// outline returns the wireframe of an obstacle as a set of polylines.
// Boxes yield their twelve edges, spheres three axis-aligned great circles.
func outline(o geometry.Obstacle) [][]geometry.Point3 {
	switch o := o.(type) {
	case geometry.Box:
		return boxEdges(o.Min, o.Max)
	case geometry.Sphere:
		return sphereCircles(o.Center, o.Radius)
	}
	return nil
}

func boxEdges(lo, hi geometry.Point3) [][]geometry.Point3 {
	corner := func(i int) geometry.Point3 {
		c := lo
		for axis := range 3 {
			if i&(1<<axis) != 0 {
				c[axis] = hi[axis]
			}
		}
		return c
	}
	edges := make([][]geometry.Point3, 0, 12)
	for i := range 8 {
		for axis := range 3 {
			if i&(1<<axis) == 0 {
				edges = append(edges, []geometry.Point3{corner(i), corner(i | 1<<axis)})
			}
		}
	}
	return edges
}

func sphereCircles(center geometry.Point3, radius float64) [][]geometry.Point3 {
	planes := [3][2]int{{0, 1}, {0, 2}, {1, 2}}
	circles := make([][]geometry.Point3, 0, len(planes))
	for _, pl := range planes {
		ring := make([]geometry.Point3, 0, circleSegments+1)
		for s := 0; s <= circleSegments; s++ {
			theta := 2 * math.Pi * float64(s) / circleSegments
			p := center
			p[pl[0]] += radius * math.Cos(theta)
			p[pl[1]] += radius * math.Sin(theta)
			ring = append(ring, p)
		}
		circles = append(circles, ring)
	}
	return circles
}

// densify inserts evenly spaced points along each polyline so that no two
// consecutive points are further apart than step.
func densify(lines [][]geometry.Point3, step float64) []geometry.Point3 {
	var out []geometry.Point3
	for _, line := range lines {
		for i, p := range line {
			if i == 0 {
				out = append(out, p)
				continue
			}
			prev := line[i-1]
			n := max(1, int(math.Ceil(geometry.Distance(prev, p)/step)))
			for s := 1; s <= n; s++ {
				t := float64(s) / float64(n)
				out = append(out, prev.Add(p.Sub(prev).Mul(t)))
			}
		}
	}
	return out
}
