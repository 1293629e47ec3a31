package decode

import (
	"fmt"
	"iter"
	"math"

	"github.com/squallwx/grib2/data"
	"github.com/squallwx/grib2/internal"
	"github.com/squallwx/grib2/internal/bitio"
)

// complexParams is the group-packing preamble shared by Template 5.2
// (complex packing) and Template 5.3 (complex packing with spatial
// differencing); the two data package structs are adapted into this common
// shape so the group-unpacking loop below is written once.
type complexParams struct {
	reference                 float32
	binaryScale               int16
	decimalScale              int16
	numBitsPerValue           uint8
	groupSplittingMethod      uint8
	missingValueManagement    uint8
	numberOfGroups            uint32
	referenceGroupWidth       uint8
	numBitsGroupWidth         uint8
	referenceGroupLength      uint32
	groupLengthIncrement      uint8
	trueLengthLastGroup       uint32
	numBitsGroupLength        uint8
	numberOfDataValues        uint32
	spatialDiff               bool
	spatialDiffOrder          uint8
	numOctetsExtraDescriptors uint8
}

// Complex decodes Data Representation Template 5.2 (complex packing,
// no spatial differencing).
func Complex(t *data.Template52, packed []byte) (iter.Seq[float32], error) {
	return decodeComplex(complexParams{
		reference:              t.ReferenceValue,
		binaryScale:            t.BinaryScaleFactor,
		decimalScale:           t.DecimalScaleFactor,
		numBitsPerValue:        t.NumBitsPerValue,
		groupSplittingMethod:   t.GroupSplittingMethod,
		missingValueManagement: t.MissingValueManagement,
		numberOfGroups:         t.NumberOfGroups,
		referenceGroupWidth:    t.ReferenceGroupWidth,
		numBitsGroupWidth:      t.NumBitsGroupWidth,
		referenceGroupLength:   t.ReferenceGroupLength,
		groupLengthIncrement:   t.GroupLengthIncrement,
		trueLengthLastGroup:    t.TrueLengthLastGroup,
		numBitsGroupLength:     t.NumBitsGroupLength,
		numberOfDataValues:     t.NumberOfDataValues,
	}, packed)
}

// ComplexSpatialDiff decodes Data Representation Template 5.3 (complex
// packing with spatial differencing, order 1 or 2).
func ComplexSpatialDiff(t *data.Template53, packed []byte) (iter.Seq[float32], error) {
	return decodeComplex(complexParams{
		reference:                 t.ReferenceValue,
		binaryScale:               t.BinaryScaleFactor,
		decimalScale:              t.DecimalScaleFactor,
		numBitsPerValue:           t.NumBitsPerValue,
		groupSplittingMethod:      t.GroupSplittingMethod,
		missingValueManagement:    t.MissingValueManagement,
		numberOfGroups:            t.NumberOfGroups,
		referenceGroupWidth:       t.ReferenceGroupWidth,
		numBitsGroupWidth:         t.NumBitsGroupWidth,
		referenceGroupLength:      t.ReferenceGroupLength,
		groupLengthIncrement:      t.GroupLengthIncrement,
		trueLengthLastGroup:       t.TrueLengthLastGroup,
		numBitsGroupLength:        t.NumBitsGroupLength,
		numberOfDataValues:        t.NumberOfDataValues,
		spatialDiff:               true,
		spatialDiffOrder:          t.SpatialDiffOrder,
		numOctetsExtraDescriptors: t.NumOctetsExtraDescriptors,
	}, packed)
}

// decodeComplex reads the spatial-difference preamble (if any) and the
// per-group width/length headers eagerly — these are bounded by the group
// count, typically a few hundred, never by the grid point count — then
// returns a lazy sequence that reads one packed value per yield, reversing
// spatial differencing incrementally as it goes.
func decodeComplex(p complexParams, packed []byte) (iter.Seq[float32], error) {
	if p.groupSplittingMethod != 1 {
		return nil, &NotSupportedError{Codec: "complex packing", Detail: fmt.Sprintf("group splitting method %d not supported", p.groupSplittingMethod)}
	}
	if p.missingValueManagement > 2 {
		return nil, &NotSupportedError{Codec: "complex packing", Detail: fmt.Sprintf("missing value management %d not supported", p.missingValueManagement)}
	}
	if p.spatialDiff && p.spatialDiffOrder != 1 && p.spatialDiffOrder != 2 {
		return nil, &NotSupportedError{Codec: "complex packing spatial differencing", Detail: fmt.Sprintf("order %d not supported", p.spatialDiffOrder)}
	}

	r := bitio.NewReader(packed)

	var firstVals []int32
	var minVal int32
	if p.spatialDiffOrder == 1 || p.spatialDiffOrder == 2 {
		if p.numOctetsExtraDescriptors == 0 {
			return nil, fmt.Errorf("spatial differencing order %d requires extra descriptor octets > 0", p.spatialDiffOrder)
		}
		width := int(p.numOctetsExtraDescriptors) * 8
		firstVals = make([]int32, p.spatialDiffOrder)
		for i := range firstVals {
			v, ok := r.Next(width)
			if !ok {
				return nil, fmt.Errorf("failed to read spatial-diff first value %d", i)
			}
			firstVals[i] = int32(internal.AsGribInt(uint64(v), width))
		}
		mv, ok := r.Next(width)
		if !ok {
			return nil, fmt.Errorf("failed to read spatial-diff min_val")
		}
		minVal = int32(internal.AsGribInt(uint64(mv), width))
	}

	groupMinVals := make([]int32, p.numberOfGroups)
	for i := range groupMinVals {
		v, ok := r.Next(int(p.numBitsPerValue))
		if !ok {
			return nil, fmt.Errorf("failed to read group minimum %d", i)
		}
		groupMinVals[i] = int32(v)
	}

	groupWidths := make([]uint8, p.numberOfGroups)
	for i := range groupWidths {
		if p.numBitsGroupWidth == 0 {
			groupWidths[i] = p.referenceGroupWidth
			continue
		}
		v, ok := r.Next(int(p.numBitsGroupWidth))
		if !ok {
			return nil, fmt.Errorf("failed to read group width %d", i)
		}
		groupWidths[i] = uint8(v) + p.referenceGroupWidth
	}

	groupLengths := make([]uint32, p.numberOfGroups)
	for i := range groupLengths {
		if p.numBitsGroupLength == 0 {
			groupLengths[i] = p.referenceGroupLength
			continue
		}
		v, ok := r.Next(int(p.numBitsGroupLength))
		if !ok {
			return nil, fmt.Errorf("failed to read group length %d", i)
		}
		groupLengths[i] = p.referenceGroupLength + v*uint32(p.groupLengthIncrement)
	}
	if p.numberOfGroups > 0 {
		groupLengths[p.numberOfGroups-1] = p.trueLengthLastGroup
	}

	nbitsMissing1 := uint64(1)<<uint(p.numBitsPerValue) - 1
	nbitsMissing2 := nbitsMissing1 - 1

	return func(yield func(float32) bool) {
		var prev1, prev2 int32
		emitted := 0

		// emitMissing propagates a missing-value sentinel as NaN: it
		// advances the recurrence counter without updating prev1/prev2, so
		// the next valid value still differences against the last known
		// good state rather than against NaN.
		emitMissing := func() bool {
			emitted++
			return yield(float32(math.NaN()))
		}

		emit := func(x int32) bool {
			var actual int32
			switch {
			case p.spatialDiffOrder == 1 && emitted >= 1:
				actual = prev1 + x + minVal
			case p.spatialDiffOrder == 2 && emitted >= 2:
				actual = x + 2*prev1 - prev2 + minVal
			default:
				actual = x
			}
			prev2 = prev1
			prev1 = actual
			emitted++
			return yield(applyScalingSigned(p.reference, p.binaryScale, p.decimalScale, actual))
		}

		for _, fv := range firstVals {
			if !emit(fv) {
				return
			}
		}

		for g := uint32(0); g < p.numberOfGroups; g++ {
			width := groupWidths[g]
			length := groupLengths[g]
			gmin := groupMinVals[g]

			if width == 0 {
				// No per-value bits: the whole group shares one constant.
				// The missing-value sentinel comparison happens on the
				// nbits-wide space (the group reference itself), not on
				// the (zero-width) per-value space.
				isMissing1 := p.missingValueManagement >= 1 && uint64(uint32(gmin)) == nbitsMissing1
				isMissing2 := p.missingValueManagement == 2 && uint64(uint32(gmin)) == nbitsMissing2
				for j := uint32(0); j < length; j++ {
					if isMissing1 || isMissing2 {
						if !emitMissing() {
							return
						}
						continue
					}
					if !emit(gmin) {
						return
					}
				}
				continue
			}

			missing1 := uint64(1)<<uint(width) - 1
			missing2 := missing1 - 1
			for j := uint32(0); j < length; j++ {
				v, ok := r.Next(int(width))
				if !ok {
					return
				}
				if p.missingValueManagement >= 1 && uint64(v) == missing1 {
					if !emitMissing() {
						return
					}
					continue
				}
				if p.missingValueManagement == 2 && uint64(v) == missing2 {
					if !emitMissing() {
						return
					}
					continue
				}
				if !emit(gmin + int32(v)) {
					return
				}
			}
		}
	}, nil
}
