package red

import "github.com/brainmaze/mefd/format"

// computeStatistics builds the 256-bin symbol-frequency histogram over
// (d+128)&0xFF for each difference d, normalized so the most-frequent bin
// maps to 255 and any bin with at least one hit maps to at least 1. This is
// purely informational for compatible readers; decoding never consults it.
func computeStatistics(diffs []int32) [format.REDBlockStatisticsBytes]byte {
	var counts [256]uint32
	for _, d := range diffs {
		symbol := byte((d + 128) & 0xFF)
		counts[symbol]++
	}

	var maxCount uint32
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	var stats [format.REDBlockStatisticsBytes]byte
	if maxCount == 0 {
		return stats
	}
	for i, c := range counts {
		v := byte((uint64(c) * 255) / uint64(maxCount))
		if c > 0 && v == 0 {
			v = 1
		}
		stats[i] = v
	}
	return stats
}

// findExtrema returns the min and max of samples, skipping RED_NAN. If
// samples is empty or contains only RED_NAN, both sentinels are returned
// unchanged (RED_NAN).
func findExtrema(samples []int32) (min, max int32) {
	min = format.REDMaximumSampleValue
	max = format.REDMinimumSampleValue
	seen := false
	for _, v := range samples {
		if v == format.REDNaN {
			continue
		}
		seen = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if !seen {
		return format.REDNaN, format.REDNaN
	}
	return min, max
}
