package viewer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/Tutortoise/rowscope/web/scanline"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// Frame is one composited render of the current row.
type Frame struct {
	// Canvas is the full-resolution annotated image. It belongs to the
	// renderer's pool and is recycled once the next frame is shown.
	Canvas  *image.RGBA
	Display image.Image
	Profile *scanline.Profile
	State   models.DisplayState
	Timings models.FrameTimings
}

type Renderer struct {
	grid     *scanline.Grid
	base     *image.RGBA
	sampler  *scanline.Sampler
	pool     *FramePool
	palette  scanline.Palette
	baseline colorful.Color // zero value is black
	frames   int64
}

func NewRenderer(grid *scanline.Grid, palette scanline.Palette) *Renderer {
	base := grid.RGBA()
	return &Renderer{
		grid:    grid,
		base:    base,
		sampler: scanline.NewSampler(grid),
		pool:    NewFramePool(base.Bounds(), DefaultPoolSize),
		palette: palette,
	}
}

func (r *Renderer) Pool() *FramePool { return r.pool }

func (r *Renderer) Close() { r.pool.Destroy() }

// Render composes a frame for state. Every frame is reset from the clean base
// image before the baseline and curves are drawn.
func (r *Renderer) Render(ctx context.Context, state models.DisplayState) (*Frame, error) {
	start := time.Now()
	r.frames++
	f := &Frame{State: state, Timings: models.FrameTimings{Frame: r.frames}}

	canvas, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire frame: %w", err)
	}
	f.Canvas = canvas

	sampleStart := time.Now()
	y := state.RowIndex(r.grid.Height)
	f.Profile = r.sampler.Sample(y)
	f.Timings.Sample = time.Since(sampleStart)

	resetStart := time.Now()
	draw.Draw(canvas, canvas.Bounds(), r.base, image.Point{}, draw.Src)
	f.Timings.Reset = time.Since(resetStart)

	drawStart := time.Now()
	scanline.DrawBaseline(canvas, y, r.baseline)
	scale := state.ScaleFactor()
	for _, c := range scanline.VisibleChannels(state.Visible) {
		scanline.DrawCurve(canvas, f.Profile.Channel(c), y, scale, r.palette[c])
	}
	f.Timings.Draw = time.Since(drawStart)

	resizeStart := time.Now()
	f.Display = Resize(canvas, state.Resize)
	f.Timings.Resize = time.Since(resizeStart)

	f.Timings.Total = time.Since(start)
	return f, nil
}

// Release hands the frame's canvas back to the pool.
func (r *Renderer) Release(f *Frame) {
	if f == nil {
		return
	}
	r.pool.Release(f.Canvas)
}

// Resize scales img by pct percent with bilinear filtering. 100 returns img
// unchanged; each side keeps at least one pixel.
func Resize(img *image.RGBA, pct int) image.Image {
	if pct >= 100 {
		return img
	}
	b := img.Bounds()
	w := max(1, b.Dx()*max(pct, 0)/100)
	h := max(1, b.Dy()*max(pct, 0)/100)
	return imaging.Resize(img, w, h, imaging.Linear)
}

// Save writes img to path, replacing any existing file. The encoder is
// picked from the extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
