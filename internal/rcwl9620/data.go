// internal/rcwl9620/data.go
package rcwl9620

// Measurable range in millimeters. Distances outside are clamped.
const (
	MinDistance = 20.0
	MaxDistance = 4500.0
)

// maxRaw is the largest value the 24-bit raw encoding can hold.
const maxRaw = 0xFFFFFF

// Data is one raw measurement.
// Raw holds the distance in micrometers as a 24-bit big-endian integer.
type Data struct {
	Raw [3]byte
}

// RawDistance returns the packed 24-bit raw value (micrometers).
func (d Data) RawDistance() uint32 {
	return uint32(d.Raw[0])<<16 | uint32(d.Raw[1])<<8 | uint32(d.Raw[2])
}

// Distance returns the distance in millimeters, clamped to
// [MinDistance, MaxDistance].
func (d Data) Distance() float64 {
	mm := float64(d.RawDistance()) / 1000.0
	if mm < MinDistance {
		return MinDistance
	}
	if mm > MaxDistance {
		return MaxDistance
	}
	return mm
}

// DataFromMicrometers encodes a distance into the raw representation.
// Values that do not fit in 24 bits saturate.
func DataFromMicrometers(um uint32) Data {
	if um > maxRaw {
		um = maxRaw
	}
	return Data{Raw: [3]byte{byte(um >> 16), byte(um >> 8), byte(um)}}
}
