package anomaly

import (
	"image"
	"image/color"
	"math"
)

// RenderStats describes the values written by Render.
type RenderStats struct {
	// Histogram counts how many cells were rendered with each value.
	Histogram [256]int
	// Mean is the average rendered value.
	Mean float64
	// Missing counts cells that had no score in the difference grid and were
	// rendered from the grid maximum instead.
	Missing int
}

// Normalize maps score into [0,255] relative to the grid bounds. A grid whose
// bounds are equal normalizes every score to 0.
func Normalize(score, min, max float64) uint8 {
	if max <= min {
		return 0
	}
	v := math.Round((score - min) / (max - min) * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Render draws d as an opaque grayscale image of the given size. Low
// differences are bright unless invert is set. Cells missing from d are
// drawn with d.Max and counted in RenderStats.Missing.
func Render(d *DifferenceGrid, width, height int, invert bool) (*image.RGBA, RenderStats) {
	var stats RenderStats
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	var sum int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			score, ok := d.At(x, y)
			if !ok {
				score = d.Max
				stats.Missing++
			}

			value := Normalize(score, d.Min, d.Max)
			if !invert {
				value = 255 - value
			}

			stats.Histogram[value]++
			sum += int(value)
			img.SetRGBA(x, y, color.RGBA{R: value, G: value, B: value, A: 255})
		}
	}

	if n := width * height; n > 0 {
		stats.Mean = float64(sum) / float64(n)
	}
	return img, stats
}
