package models

import "time"

type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Gray
	NumChannels
)

var AllChannels = []Channel{Red, Green, Blue, Gray}

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Gray:
		return "gray"
	default:
		return "unknown"
	}
}

// Sliders holds the three trackbar percentages as read from the frontend.
type Sliders struct {
	Row    int `json:"row"`
	Scale  int `json:"scale"`
	Resize int `json:"resize"`
}

// Clamp limits every percentage to [0,100].
func (s Sliders) Clamp() Sliders {
	return Sliders{
		Row:    clampPercent(s.Row),
		Scale:  clampPercent(s.Scale),
		Resize: clampPercent(s.Resize),
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

type DisplayState struct {
	Sliders
	Visible [NumChannels]bool
}

func NewDisplayState(s Sliders) DisplayState {
	return DisplayState{
		Sliders: s.Clamp(),
		Visible: [NumChannels]bool{true, true, true, true},
	}
}

func (d *DisplayState) Toggle(c Channel) {
	if c < 0 || c >= NumChannels {
		return
	}
	d.Visible[c] = !d.Visible[c]
}

// RowIndex maps the row percentage onto [0, height-1].
func (d DisplayState) RowIndex(height int) int {
	if height <= 0 {
		return 0
	}
	y := clampPercent(d.Row) * (height - 1) / 100
	if y < 0 {
		return 0
	}
	if y > height-1 {
		return height - 1
	}
	return y
}

// ScaleFactor converts the scale slider into a multiplier per intensity unit.
func (d DisplayState) ScaleFactor() float64 {
	return 0.01 * float64(clampPercent(d.Scale))
}

type FrameTimings struct {
	Frame  int64
	Sample time.Duration
	Reset  time.Duration
	Draw   time.Duration
	Resize time.Duration
	Show   time.Duration
	Total  time.Duration
}
