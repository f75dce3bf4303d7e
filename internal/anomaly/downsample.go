package anomaly

// Downsample averages non-overlapping factor×factor blocks of g into a new
// grid of size ceil(w/factor) × ceil(h/factor). Blocks on the right and
// bottom edges are truncated rather than padded, and only pixels present in
// the source contribute to a block's mean. A factor of 1 or less returns g
// unchanged.
func Downsample(g *Grid, factor int) *Grid {
	if factor <= 1 {
		return g
	}

	out := NewGrid(ceilDiv(g.width, factor), ceilDiv(g.height, factor))
	for by := 0; by < out.height; by++ {
		for bx := 0; bx < out.width; bx++ {
			var sums [4]int
			count := 0
			for y := by * factor; y < (by+1)*factor; y++ {
				for x := bx * factor; x < (bx+1)*factor; x++ {
					p, ok := g.At(x, y)
					if !ok {
						continue
					}
					count++
					sums[0] += int(p.R)
					sums[1] += int(p.G)
					sums[2] += int(p.B)
					sums[3] += int(p.A)
				}
			}
			if count == 0 {
				// An empty block is kept as a zeroed cell.
				continue
			}
			out.pix[by*out.width+bx] = Pixel{
				R: roundDiv(sums[0], count),
				G: roundDiv(sums[1], count),
				B: roundDiv(sums[2], count),
				A: roundDiv(sums[3], count),
			}
		}
	}
	return out
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// roundDiv returns sum/count rounded half up. Both operands are non-negative.
func roundDiv(sum, count int) uint8 {
	return uint8((2*sum + count) / (2 * count))
}
