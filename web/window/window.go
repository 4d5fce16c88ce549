// Package window shows frames in a native OpenCV window with trackbars.
package window

import (
	"fmt"
	"time"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/Tutortoise/rowscope/web/viewer"
	"gocv.io/x/gocv"
)

type Window struct {
	window *gocv.Window
	row    *gocv.Trackbar
	scale  *gocv.Trackbar
	resize *gocv.Trackbar
}

// Open creates the named window with the Row, Scale and resize trackbars
// positioned at initial.
func Open(name string, initial models.Sliders) *Window {
	initial = initial.Clamp()
	w := &Window{window: gocv.NewWindow(name)}
	w.row = w.window.CreateTrackbar("Row", 100)
	w.scale = w.window.CreateTrackbar("Scale", 100)
	w.resize = w.window.CreateTrackbar("resize", 100)
	w.row.SetPos(initial.Row)
	w.scale.SetPos(initial.Scale)
	w.resize.SetPos(initial.Resize)
	return w
}

func (w *Window) Sliders() models.Sliders {
	return models.Sliders{
		Row:    w.row.GetPos(),
		Scale:  w.scale.GetPos(),
		Resize: w.resize.GetPos(),
	}
}

func (w *Window) Show(f *viewer.Frame) error {
	mat, err := gocv.ImageToMatRGB(f.Display)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	w.window.IMShow(mat)
	return nil
}

func (w *Window) WaitKey(delay time.Duration) int {
	ms := max(int(delay/time.Millisecond), 1)
	return w.window.WaitKey(ms)
}

func (w *Window) Close() error {
	return w.window.Close()
}
