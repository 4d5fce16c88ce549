package scanline

import (
	"fmt"
	"image"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette assigns a stroke color to each channel curve.
type Palette [models.NumChannels]colorful.Color

var DefaultPaletteHex = []string{"#ff0000", "#00ff00", "#0000ff", "#000000"}

func DefaultPalette() Palette {
	p, _ := ParsePalette(DefaultPaletteHex)
	return p
}

// ParsePalette reads one hex color per channel in red, green, blue, gray order.
func ParsePalette(hex []string) (Palette, error) {
	var p Palette
	if len(hex) != int(models.NumChannels) {
		return p, fmt.Errorf("palette needs %d colors, got %d", models.NumChannels, len(hex))
	}
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return p, fmt.Errorf("palette %s: %w", models.Channel(i), err)
		}
		p[i] = c
	}
	return p, nil
}

// Polyline maps each value to (column, baseline - scale*value). Coordinates
// truncate toward zero.
func Polyline(values []uint8, baseline int, scale float64) []image.Point {
	pts := make([]image.Point, len(values))
	for x, v := range values {
		pts[x] = image.Point{X: x, Y: int(float64(baseline) - scale*float64(v))}
	}
	return pts
}

// DrawPolyline strokes pts as an open polyline onto dst.
func DrawPolyline(dst *image.RGBA, pts []image.Point, col colorful.Color) {
	if len(pts) == 0 {
		return
	}
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(col)
	dc.SetLineWidth(StrokeWidth)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(float64(pts[0].X), float64(pts[0].Y))
	for _, p := range pts[1:] {
		dc.LineTo(float64(p.X), float64(p.Y))
	}
	dc.Stroke()
}

// DrawCurve plots one intensity sequence above the baseline row.
func DrawCurve(dst *image.RGBA, values []uint8, baseline int, scale float64, col colorful.Color) {
	DrawPolyline(dst, Polyline(values, baseline, scale), col)
}

// DrawBaseline marks row y across the full width of dst.
func DrawBaseline(dst *image.RGBA, y int, col colorful.Color) {
	w := dst.Bounds().Dx()
	DrawPolyline(dst, []image.Point{{X: 0, Y: y}, {X: w, Y: y}}, col)
}
