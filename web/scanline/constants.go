package scanline

const (
	DefaultImagePath   = "../baboon.jpg"
	DefaultOutputPath  = "../output.jpg"
	DefaultRowPercent  = 70
	DefaultScale       = 40
	DefaultResize      = 100
	StrokeWidth        = 2.0
	SupportedFormat    = "CV_8UC3"
	DefaultChartWidth  = 1024
	DefaultChartHeight = 400
)
