package scanline

import (
	"testing"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioGrid() *Grid {
	g := NewGrid(4, 1)
	g.Set(0, 0, Pixel{10, 20, 30})
	g.Set(1, 0, Pixel{0, 0, 0})
	g.Set(2, 0, Pixel{255, 255, 255})
	g.Set(3, 0, Pixel{100, 100, 100})
	return g
}

func TestSampleRowScenario(t *testing.T) {
	g := scenarioGrid()
	state := models.NewDisplayState(models.Sliders{Row: 0})
	p := SampleRow(g, state.RowIndex(g.Height))

	assert.Equal(t, 0, p.Row)
	assert.Equal(t, []uint8{30, 0, 255, 100}, p.Red)
	assert.Equal(t, []uint8{20, 0, 255, 100}, p.Green)
	assert.Equal(t, []uint8{10, 0, 255, 100}, p.Blue)
	assert.Equal(t, []uint8{21, 0, 255, 100}, p.Gray)
}

func TestSampleLengthEqualsWidth(t *testing.T) {
	g := NewGrid(7, 5)
	for y := range g.Height {
		for x := range g.Width {
			g.Set(x, y, Pixel{uint8(x), uint8(y), uint8(x + y)})
		}
	}
	s := NewSampler(g)
	for y := range g.Height {
		p := s.Sample(y)
		require.Equal(t, y, p.Row)
		for _, c := range models.AllChannels {
			assert.Len(t, p.Channel(c), g.Width, "row %d channel %s", y, c)
		}
		for x := range g.Width {
			assert.Equal(t, uint8(x), p.Blue[x])
			assert.Equal(t, uint8(y), p.Green[x])
			assert.Equal(t, uint8(x+y), p.Red[x])
		}
	}
}

func TestSampleClampsRow(t *testing.T) {
	g := NewGrid(3, 4)
	s := NewSampler(g)
	assert.Equal(t, 0, s.Sample(-5).Row)
	assert.Equal(t, 3, s.Sample(99).Row)
}

func TestSampleEmptyGrid(t *testing.T) {
	p := NewSampler(NewGrid(0, 0)).Sample(0)
	assert.Zero(t, p.Len())
	assert.Empty(t, p.Red)
	assert.Empty(t, p.Green)
	assert.Empty(t, p.Blue)
}

func TestSamplerReusesBuffersButCloneIsIndependent(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, Pixel{1, 1, 1})
	g.Set(0, 1, Pixel{9, 9, 9})
	s := NewSampler(g)

	first := s.Sample(0).Clone()
	second := s.Sample(1)

	assert.Equal(t, uint8(1), first.Red[0])
	assert.Equal(t, uint8(9), second.Red[0])
	assert.Len(t, second.Red, 2)
}
