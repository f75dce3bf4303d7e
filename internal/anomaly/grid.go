package anomaly

import (
	"image"

	"golang.org/x/image/draw"
)

// Pixel is a single 8-bit, non-premultiplied RGBA sample.
type Pixel struct {
	R, G, B, A uint8
}

// Grid is a fixed-size 2D array of pixels addressed by (x, y).
type Grid struct {
	width  int
	height int
	pix    []Pixel
}

// NewGrid allocates a zeroed grid of the given size.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		width:  width,
		height: height,
		pix:    make([]Pixel, width*height),
	}
}

// GridFromImage copies a decoded image into a grid. The image bounds are
// rebased so the grid always starts at (0,0).
func GridFromImage(img image.Image) *Grid {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	b := nrgba.Bounds()
	g := NewGrid(b.Dx(), b.Dy())
	for y := 0; y < g.height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+g.width*4]
		for x := 0; x < g.width; x++ {
			o := x * 4
			g.pix[y*g.width+x] = Pixel{R: row[o], G: row[o+1], B: row[o+2], A: row[o+3]}
		}
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// At returns the pixel at (x, y). ok is false when the coordinate lies
// outside the grid.
func (g *Grid) At(x, y int) (p Pixel, ok bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return Pixel{}, false
	}
	return g.pix[y*g.width+x], true
}

// Set stores p at (x, y). Out-of-range writes are ignored.
func (g *Grid) Set(x, y int, p Pixel) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.pix[y*g.width+x] = p
}
