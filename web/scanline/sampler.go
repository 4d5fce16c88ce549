package scanline

import "github.com/Tutortoise/rowscope/web/models"

// Profile holds the per-column intensities of a single row.
type Profile struct {
	Row   int
	Red   []uint8
	Green []uint8
	Blue  []uint8
	Gray  []uint8
}

func (p *Profile) Channel(c models.Channel) []uint8 {
	switch c {
	case models.Red:
		return p.Red
	case models.Green:
		return p.Green
	case models.Blue:
		return p.Blue
	case models.Gray:
		return p.Gray
	default:
		return nil
	}
}

func (p *Profile) Len() int { return len(p.Gray) }

// Clone returns a deep copy that does not share buffers with p.
func (p *Profile) Clone() Profile {
	return Profile{
		Row:   p.Row,
		Red:   append([]uint8(nil), p.Red...),
		Green: append([]uint8(nil), p.Green...),
		Blue:  append([]uint8(nil), p.Blue...),
		Gray:  append([]uint8(nil), p.Gray...),
	}
}

func (p *Profile) reset(width int) {
	p.Red = p.Red[:0]
	p.Green = p.Green[:0]
	p.Blue = p.Blue[:0]
	p.Gray = p.Gray[:0]
	if cap(p.Gray) < width {
		p.Red = make([]uint8, 0, width)
		p.Green = make([]uint8, 0, width)
		p.Blue = make([]uint8, 0, width)
		p.Gray = make([]uint8, 0, width)
	}
}

// Sampler extracts row profiles from a grid, reusing its buffers between
// calls. The returned profile is only valid until the next Sample.
type Sampler struct {
	grid    *Grid
	profile Profile
}

func NewSampler(g *Grid) *Sampler {
	return &Sampler{grid: g}
}

// Sample scans row y left to right. y is clamped to the grid height.
func (s *Sampler) Sample(y int) *Profile {
	g := s.grid
	s.profile.reset(g.Width)
	if g.Empty() {
		s.profile.Row = 0
		return &s.profile
	}
	y = clampInt(y, 0, g.Height-1)
	s.profile.Row = y
	for x := range g.Width {
		p := g.At(x, y)
		s.profile.Red = append(s.profile.Red, p.R())
		s.profile.Green = append(s.profile.Green, p.G())
		s.profile.Blue = append(s.profile.Blue, p.B())
		s.profile.Gray = append(s.profile.Gray, Gray(p))
	}
	return &s.profile
}

// SampleRow is the one-shot form of Sampler.Sample.
func SampleRow(g *Grid, y int) Profile {
	return NewSampler(g).Sample(y).Clone()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
