package geometry

import "math"

const (
	// parallelEpsilon is the direction magnitude below which a segment is
	// treated as parallel to a slab.
	parallelEpsilon = 1e-9
	// degenerateEpsilon is the squared segment length below which a segment
	// is treated as a point.
	degenerateEpsilon = 1e-12
)

// segmentTests dispatches segment intersection by obstacle kind.
var segmentTests = [...]func(a, b Point3, o Obstacle) bool{
	KindBox:    func(a, b Point3, o Obstacle) bool { return SegmentIntersectsBox(a, b, o.(Box)) },
	KindSphere: func(a, b Point3, o Obstacle) bool { return SegmentIntersectsSphere(a, b, o.(Sphere)) },
}

// SegmentIntersects reports whether the segment a→b touches o.
func SegmentIntersects(a, b Point3, o Obstacle) bool {
	return segmentTests[o.Kind()](a, b, o)
}

// SegmentIntersectsBox reports whether the segment a→b touches box (slab method).
func SegmentIntersectsBox(a, b Point3, box Box) bool {
	tmin, tmax := 0.0, 1.0
	for i := 0; i < 3; i++ {
		d := b[i] - a[i]
		if math.Abs(d) < parallelEpsilon {
			if a[i] < box.Min[i] || a[i] > box.Max[i] {
				return false
			}
			continue
		}
		inv := 1.0 / d
		t1 := (box.Min[i] - a[i]) * inv
		t2 := (box.Max[i] - a[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// SegmentIntersectsSphere reports whether the segment a→b touches sphere.
func SegmentIntersectsSphere(a, b Point3, sphere Sphere) bool {
	d := b.Sub(a)
	f := a.Sub(sphere.Center)
	qa := d.Dot(d)
	if qa < degenerateEpsilon {
		return sphere.Contains(a)
	}
	qb := 2.0 * f.Dot(d)
	qc := f.Dot(f) - sphere.Radius*sphere.Radius
	disc := qb*qb - 4.0*qa*qc
	if disc < 0 {
		return false
	}
	sq := math.Sqrt(disc)
	t1 := (-qb - sq) / (2.0 * qa)
	t2 := (-qb + sq) / (2.0 * qa)
	return (0 <= t1 && t1 <= 1) || (0 <= t2 && t2 <= 1)
}
