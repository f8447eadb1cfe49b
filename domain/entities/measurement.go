package entities

// MeasurementSlots is the number of values reported for a measured node.
const MeasurementSlots = 6

// Measurement is the geometry of a host node in layout units.
type Measurement struct {
	X            float64
	Y            float64
	Width        float64
	Height       float64
	ScrollWidth  float64
	ScrollHeight float64
}

// Slots returns the measurement in slot order: x, y, width, height,
// scroll width, scroll height. Values are rounded toward zero.
func (m Measurement) Slots() [MeasurementSlots]int32 {
	return [MeasurementSlots]int32{
		int32(m.X),
		int32(m.Y),
		int32(m.Width),
		int32(m.Height),
		int32(m.ScrollWidth),
		int32(m.ScrollHeight),
	}
}
