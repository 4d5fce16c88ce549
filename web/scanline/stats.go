package scanline

import (
	"github.com/Tutortoise/rowscope/web/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type ChannelStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Stats summarises every channel of p. Channels of an empty profile report
// zero values.
func Stats(p *Profile) map[string]ChannelStats {
	out := make(map[string]ChannelStats, models.NumChannels)
	for _, c := range models.AllChannels {
		out[c.String()] = channelStats(p.Channel(c))
	}
	return out
}

func channelStats(values []uint8) ChannelStats {
	if len(values) == 0 {
		return ChannelStats{}
	}
	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	return ChannelStats{
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   mean,
		StdDev: std,
	}
}
