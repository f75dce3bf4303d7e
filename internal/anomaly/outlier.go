package anomaly

import (
	"image"
	"image/color"
)

const (
	ringInner = 6
	ringOuter = 7
)

// DefaultMarkerColor is the ring color used when none is configured.
var DefaultMarkerColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// FindOutliers returns the coordinates of every pixel whose red channel is at
// least threshold. A threshold of 0 disables detection.
func FindOutliers(img *image.RGBA, threshold int) []image.Point {
	if threshold <= 0 {
		return nil
	}
	var points []image.Point
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if int(img.RGBAAt(x, y).R) >= threshold {
				points = append(points, image.Pt(x, y))
			}
		}
	}
	return points
}

// MarkOutliers finds the outliers of a rendered map and paints a two pixel
// thick square ring six to seven pixels around each of them. All outliers
// are collected before any ring is painted. Ring pixels outside the image
// are dropped. The alpha channel is left untouched.
func MarkOutliers(img *image.RGBA, threshold int, marker color.RGBA) []image.Point {
	points := FindOutliers(img, threshold)
	for _, p := range points {
		paintRing(img, p, marker)
	}
	return points
}

func paintRing(img *image.RGBA, center image.Point, marker color.RGBA) {
	b := img.Bounds()
	for dy := -ringOuter; dy <= ringOuter; dy++ {
		for dx := -ringOuter; dx <= ringOuter; dx++ {
			if abs(dx) < ringInner && abs(dy) < ringInner {
				continue
			}
			x, y := center.X+dx, center.Y+dy
			if !image.Pt(x, y).In(b) {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = marker.R
			img.Pix[i+1] = marker.G
			img.Pix[i+2] = marker.B
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
