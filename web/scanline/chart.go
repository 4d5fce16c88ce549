package scanline

import (
	"errors"
	"fmt"
	"io"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrProfileTooShort = errors.New("profile needs at least two columns to chart")
	ErrNoChannels      = errors.New("no channels selected")
)

type ChartOptions struct {
	Width, Height int
	Visible       [models.NumChannels]bool
	Palette       Palette
}

// VisibleChannels lists the channels enabled in visible, in plotting order.
func VisibleChannels(visible [models.NumChannels]bool) []models.Channel {
	return lo.Filter(models.AllChannels, func(c models.Channel, _ int) bool {
		return visible[c]
	})
}

func lineStyle(c colorful.Color) chart.Style {
	r, g, b := c.RGB255()
	return chart.Style{
		StrokeWidth: StrokeWidth,
		StrokeColor: drawing.Color{R: r, G: g, B: b, A: 255},
	}
}

// RenderChart writes a PNG line chart of the visible channels of p to w.
func RenderChart(w io.Writer, p *Profile, opt ChartOptions) error {
	if p.Len() < 2 {
		return ErrProfileTooShort
	}
	channels := VisibleChannels(opt.Visible)
	if len(channels) == 0 {
		return ErrNoChannels
	}

	xs := make([]float64, p.Len())
	for i := range xs {
		xs[i] = float64(i)
	}
	series := lo.Map(channels, func(c models.Channel, _ int) chart.Series {
		values := p.Channel(c)
		ys := make([]float64, len(values))
		for i, v := range values {
			ys[i] = float64(v)
		}
		return chart.ContinuousSeries{
			Name:    c.String(),
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(opt.Palette[c]),
		}
	})

	ch := chart.Chart{
		Title:      fmt.Sprintf("Row %d", p.Row),
		Width:      orDefault(opt.Width, DefaultChartWidth),
		Height:     orDefault(opt.Height, DefaultChartHeight),
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "column"},
		YAxis:      chart.YAxis{Name: "intensity", Range: &chart.ContinuousRange{Min: 0, Max: 255}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
