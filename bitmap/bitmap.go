// Package bitmap applies a GRIB2 Section 6 presence bitmap to a decoded
// value sequence, inserting NaN at grid points the bitmap marks missing.
package bitmap

import (
	"iter"
	"math"
)

// Apply merges presence (true = data present, false = missing, as produced
// by section.ParseSection6) with values (one value per present point, in
// grid order) and yields one value per point: either the next decoded
// value, or NaN where presence is false.
//
// If presence is nil, every point is assumed present and values passes
// through unchanged.
func Apply(presence []bool, values iter.Seq[float32]) iter.Seq[float32] {
	if presence == nil {
		return values
	}
	return func(yield func(float32) bool) {
		next, stop := iter.Pull(values)
		defer stop()
		for _, present := range presence {
			if !present {
				if !yield(float32(math.NaN())) {
					return
				}
				continue
			}
			v, ok := next()
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Bit extracts the MSB-first bit at index i from packed bitmap bytes, the
// raw on-wire form before section.ParseSection6 expands it into []bool.
func Bit(data []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(data) {
		return false
	}
	shift := uint(7 - (i % 8))
	return (data[byteIdx]>>shift)&1 == 1
}
