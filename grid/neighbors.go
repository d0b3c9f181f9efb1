package grid

// Connectivity selects the neighbourhood of a cell.
type Connectivity uint8

const (
	// Conn6 allows unit steps along one axis.
	Conn6 Connectivity = 6
	// Conn26 allows every non-zero offset in {-1,0,1}³.
	Conn26 Connectivity = 26
)

var (
	offsets6 = []Index{
		{-1, 0, 0}, {1, 0, 0},
		{0, -1, 0}, {0, 1, 0},
		{0, 0, -1}, {0, 0, 1},
	}
	offsets26 = func() []Index {
		out := make([]Index, 0, 26)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					if dx == 0 && dy == 0 && dz == 0 {
						continue
					}
					out = append(out, Index{dx, dy, dz})
				}
			}
		}
		return out
	}()
)

// Offsets returns the neighbour offsets of c in expansion order.
func (c Connectivity) Offsets() []Index {
	if c == Conn26 {
		return offsets26
	}
	return offsets6
}

// Neighbors appends the in-range neighbours of idx to dst and returns it.
func (g Grid) Neighbors(dst []Index, idx Index, c Connectivity) []Index {
	for _, o := range c.Offsets() {
		n := Index{idx.I + o.I, idx.J + o.J, idx.K + o.K}
		if g.InRange(n) {
			dst = append(dst, n)
		}
	}
	return dst
}

// IsNeighbor reports whether b is one step from a under c.
func IsNeighbor(a, b Index, c Connectivity) bool {
	d := Index{b.I - a.I, b.J - a.J, b.K - a.K}
	for _, o := range c.Offsets() {
		if o == d {
			return true
		}
	}
	return false
}
