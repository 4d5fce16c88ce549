package scanline

import (
	"image"
	"image/color"
)

// Grid is an immutable width x height raster of interleaved B,G,R bytes.
type Grid struct {
	Width, Height int
	Pix           []uint8 // len = Width*Height*3
}

func NewGrid(w, h int) *Grid {
	w = max(w, 0)
	h = max(h, 0)
	return &Grid{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func (g *Grid) Empty() bool {
	return g == nil || g.Width == 0 || g.Height == 0
}

func (g *Grid) At(x, y int) Pixel {
	off := pixOffset(g.Width, x, y)
	return Pixel{g.Pix[off], g.Pix[off+1], g.Pix[off+2]}
}

func (g *Grid) Set(x, y int, p Pixel) {
	off := pixOffset(g.Width, x, y)
	g.Pix[off] = p[0]
	g.Pix[off+1] = p[1]
	g.Pix[off+2] = p[2]
}

// GridFromImage copies img into a Grid, dropping any alpha.
func GridFromImage(img image.Image) *Grid {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := NewGrid(w, h)
	for y := range h {
		for x := range w {
			r, gr, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := pixOffset(w, x, y)
			g.Pix[off] = uint8(b >> 8)
			g.Pix[off+1] = uint8(gr >> 8)
			g.Pix[off+2] = uint8(r >> 8)
		}
	}
	return g
}

// RGBA renders the grid as an opaque *image.RGBA, used as the base layer
// every frame is reset from.
func (g *Grid) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := range g.Height {
		for x := range g.Width {
			p := g.At(x, y)
			out.SetRGBA(x, y, color.RGBA{R: p.R(), G: p.G(), B: p.B(), A: 255})
		}
	}
	return out
}

// FormatOf names the pixel layout of a decoded image using the OpenCV type
// vocabulary, e.g. CV_8UC3 for 3-channel 8-bit.
func FormatOf(img image.Image) string {
	switch m := img.(type) {
	case *image.YCbCr, *image.RGBA, *image.Paletted:
		return "CV_8UC3"
	case *image.NRGBA:
		if m.Opaque() {
			return "CV_8UC3"
		}
		return "CV_8UC4"
	case *image.CMYK, *image.NYCbCrA:
		return "CV_8UC4"
	case *image.Gray, *image.Alpha:
		return "CV_8UC1"
	case *image.Gray16, *image.Alpha16:
		return "CV_16UC1"
	case *image.RGBA64:
		return "CV_16UC3"
	case *image.NRGBA64:
		return "CV_16UC4"
	default:
		return "unknown"
	}
}
