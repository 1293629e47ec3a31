// Package decode implements the GRIB2 Data Representation Template packing
// algorithms (Table 5.0) as lazy iterators: each decoder consumes a
// Section 5 preamble (package data) and the raw Section 7 bytes, and
// returns an iter.Seq[float32] that unpacks one value at a time instead of
// allocating the whole field up front.
package decode

import (
	"fmt"
	"iter"
	"math"

	"github.com/squallwx/grib2/data"
	"github.com/squallwx/grib2/internal/bitio"
)

// Simple decodes Data Representation Template 5.0 (simple packing):
// value = (R + X * 2^E) / 10^D.
func Simple(t *data.Template50, packed []byte) (iter.Seq[float32], error) {
	n := int(t.NumberOfDataValues)
	scale := func(x uint32) float32 {
		return applyScaling(t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor, x)
	}

	if t.NumBitsPerValue == 0 {
		// Every point takes the reference value; there is nothing to read
		// from Section 7 at all.
		ref := scale(0)
		return func(yield func(float32) bool) {
			for range bitio.Fixed(0, n) {
				if !yield(ref) {
					return
				}
			}
		}, nil
	}

	r := bitio.NewReader(packed)
	if r.BitsRemaining() < n*int(t.NumBitsPerValue) {
		return nil, fmt.Errorf("simple packing: need %d bits for %d values, have %d", n*int(t.NumBitsPerValue), n, r.BitsRemaining())
	}

	return func(yield func(float32) bool) {
		for v := range r.Uint32s(int(t.NumBitsPerValue), n) {
			if !yield(scale(v)) {
				return
			}
		}
	}, nil
}

// applyScaling is the shared simple/complex packing formula:
// value = (R + X * 2^E) / 10^D, for an unsigned packed value. The simple,
// image and fixed-value paths use it; applyScalingSigned below is the same
// formula for signed packed values.
func applyScaling(reference float32, binaryScale, decimalScale int16, packed uint32) float32 {
	value := float64(reference)
	if packed != 0 {
		value += float64(packed) * math.Pow(2, float64(binaryScale))
	}
	if decimalScale != 0 {
		value /= math.Pow(10, float64(decimalScale))
	}
	return float32(value)
}

// applyScalingSigned is applyScaling for a signed packed value, used by the
// complex-packing decoders where group values are relative to a signed
// group minimum.
func applyScalingSigned(reference float32, binaryScale, decimalScale int16, packed int32) float32 {
	value := float64(reference)
	if packed != 0 {
		value += float64(packed) * math.Pow(2, float64(binaryScale))
	}
	if decimalScale != 0 {
		value /= math.Pow(10, float64(decimalScale))
	}
	return float32(value)
}
