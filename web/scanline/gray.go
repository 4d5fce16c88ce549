package scanline

// Pixel is one 8-bit triple in blue, green, red order.
type Pixel [3]uint8

func (p Pixel) B() uint8 { return p[0] }
func (p Pixel) G() uint8 { return p[1] }
func (p Pixel) R() uint8 { return p[2] }

// Gray returns floor(0.11*b + 0.59*g + 0.30*r). The weights are applied in
// hundredths so the floor is exact; the result never exceeds 255.
func Gray(p Pixel) uint8 {
	return uint8((11*uint32(p[0]) + 59*uint32(p[1]) + 30*uint32(p[2])) / 100)
}
