package section

import "math"

func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }
func float64Bits(v float64) uint64        { return math.Float64bits(v) }
