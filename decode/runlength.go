package decode

import (
	"iter"
	"math"

	"github.com/squallwx/grib2/data"
	"github.com/squallwx/grib2/internal/bitio"
)

// RunLength decodes Data Representation Template 5.200 (run-length packing
// with level values), the categorical encoding used for radar-style
// reflectivity/precipitation-type fields.
//
// Each NumBitsPerValue-wide code in Section 7 is either:
//   - a direct level code (0..MaxLevelValue), emitted once, or
//   - a run-length extension code (> MaxLevelValue) that, combined with any
//     immediately following extension codes, extends the repeat count of
//     the most recently emitted level.
//
// The extension accumulates in base (LNGU - MaxLevelValue), where
// LNGU = 2^NumBitsPerValue - 1: run = 1 + sum_i (code_i - MaxLevelValue - 1) * base^i.
func RunLength(t *data.Template200, packed []byte) (iter.Seq[float32], error) {
	width := int(t.NumBitsPerValue)
	mv := uint32(t.MaxLevelValue)
	lngu := uint32(1<<uint(width)) - 1
	base := lngu - mv
	scale := decimalDivisor(t.DecimalScaleFactor)

	r := bitio.NewReader(packed)

	return func(yield func(float32) bool) {
		emitted := uint32(0)
		for emitted < t.NumberOfDataValues {
			code, ok := r.Next(width)
			if !ok {
				return
			}
			if code > mv {
				// A run-length extension with no preceding level code is
				// malformed; stop rather than emit garbage.
				return
			}
			var value float32
			if code == 0 {
				// Level 0 is the designated missing-value level; it carries
				// no LevelValues entry.
				value = float32(math.NaN())
			} else {
				levelIdx := code - 1
				var level uint16
				if int(levelIdx) < len(t.LevelValues) {
					level = t.LevelValues[levelIdx]
				}
				value = float32(level) / scale
			}

			run := uint32(1)
			power := uint32(1)
			for base > 0 {
				cur := r.Save()
				next, ok := r.Next(width)
				if !ok || next <= mv {
					r.Restore(cur)
					break
				}
				run += (next - mv - 1) * power
				power *= base
			}

			for i := uint32(0); i < run; i++ {
				if emitted >= t.NumberOfDataValues {
					return
				}
				if !yield(value) {
					return
				}
				emitted++
			}
		}
	}, nil
}

func decimalDivisor(decimalScale int16) float32 {
	if decimalScale == 0 {
		return 1
	}
	d := float32(1)
	if decimalScale > 0 {
		for i := int16(0); i < decimalScale; i++ {
			d *= 10
		}
		return d
	}
	for i := int16(0); i > decimalScale; i-- {
		d *= 10
	}
	return 1 / d
}
