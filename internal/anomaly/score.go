package anomaly

import "math"

// DifferenceGrid holds one anomaly score per cell together with the global
// score bounds observed while it was built.
type DifferenceGrid struct {
	Width  int
	Height int
	// Min and Max are the smallest and largest scores in the grid. They are
	// only meaningful once Score has returned.
	Min    float64
	Max    float64
	scores []float64
}

// At returns the score at (x, y), or false when the cell does not exist.
func (d *DifferenceGrid) At(x, y int) (float64, bool) {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return 0, false
	}
	return d.scores[y*d.Width+x], true
}

// Scores returns the raw scores in row-major order.
func (d *DifferenceGrid) Scores() []float64 {
	return d.scores
}

// Distance is the Euclidean distance between two pixels over all four
// channels, alpha included.
func Distance(a, b Pixel) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	da := float64(a.A) - float64(b.A)
	return math.Sqrt(dr*dr + dg*dg + db*db + da*da)
}

// Score computes, for every cell of g, the mean Distance to each present
// neighbor inside the square window of half-width radius. Cells with no
// neighbors score 0.
func Score(g *Grid, radius int) *DifferenceGrid {
	d := &DifferenceGrid{
		Width:  g.width,
		Height: g.height,
		scores: make([]float64, g.width*g.height),
	}

	first := true
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			center := g.pix[y*g.width+x]

			var total float64
			count := 0
			yLo, yHi := window(y, radius, g.height)
			xLo, xHi := window(x, radius, g.width)
			for yc := yLo; yc <= yHi; yc++ {
				for xc := xLo; xc <= xHi; xc++ {
					if xc == x && yc == y {
						continue
					}
					n, ok := g.At(xc, yc)
					if !ok {
						continue
					}
					total += Distance(center, n)
					count++
				}
			}

			var score float64
			if count > 0 {
				score = total / float64(count)
			}
			d.scores[y*d.Width+x] = score

			if first || score > d.Max {
				d.Max = score
			}
			if first || score < d.Min {
				d.Min = score
			}
			first = false
		}
	}
	return d
}

// window returns the inclusive range [c-r, c+r] clipped to [0, n). It never
// computes c+r directly, so any radius is safe.
func window(c, r, n int) (lo, hi int) {
	if r < c {
		lo = c - r
	}
	hi = n - 1
	if r < n-1-c {
		hi = c + r
	}
	return lo, hi
}
