package decode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squallwx/grib2/data"
)

// TestComplexTwoGroups exercises Template 5.2's group layout end to end: two
// 4-bit group minimums, implicit (non-transmitted) group widths and
// lengths, and a 3-bit-per-value payload.
func TestComplexTwoGroups(t *testing.T) {
	// Byte 0: group minimums, 4 bits each: 0b0011 (3), 0b0101 (5).
	// Bytes 1-2: four 3-bit packed values: 000, 010, 001, 011 (+4 pad bits).
	packed := []byte{0x35, 0x08, 0xB0}

	tmpl := &data.Template52{
		ReferenceValue:       0,
		BinaryScaleFactor:    0,
		DecimalScaleFactor:   0,
		NumBitsPerValue:      4,
		GroupSplittingMethod: 1,
		NumberOfGroups:       2,
		ReferenceGroupWidth:  3,
		NumBitsGroupWidth:    0,
		ReferenceGroupLength: 2,
		TrueLengthLastGroup:  2,
		NumBitsGroupLength:   0,
		NumberOfDataValues:   4,
	}

	seq, err := Complex(tmpl, packed)
	require.NoError(t, err)

	got := collectFloats(seq)
	want := []float32{3, 5, 6, 8}
	require.Len(t, got, len(want), "got %v", got)
	assert.Equal(t, want, got)
}

func TestComplexRejectsUnsupportedGroupSplittingMethod(t *testing.T) {
	tmpl := &data.Template52{
		NumBitsPerValue:      4,
		GroupSplittingMethod: 2,
		NumberOfGroups:       1,
		NumberOfDataValues:   1,
	}
	_, err := Complex(tmpl, []byte{0x00})
	require.Error(t, err, "expected error for unsupported group splitting method")
	var nse *NotSupportedError
	assert.ErrorAs(t, err, &nse)
}

func TestComplexRejectsUnsupportedMissingValueManagement(t *testing.T) {
	tmpl := &data.Template52{
		NumBitsPerValue:        4,
		GroupSplittingMethod:   1,
		MissingValueManagement: 3,
		NumberOfGroups:         1,
		NumberOfDataValues:     1,
	}
	_, err := Complex(tmpl, []byte{0x00})
	require.Error(t, err, "expected error for missing value management > 2")
	var nse *NotSupportedError
	assert.ErrorAs(t, err, &nse)
}

func TestComplexZeroWidthGroupIsConstant(t *testing.T) {
	// A single group with width 0: every value in it is the group's
	// reference with no per-value bits consumed.
	packed := []byte{0x70} // group min = 7, in the top 4 bits of a nibble-wide read
	tmpl := &data.Template52{
		NumBitsPerValue:      4,
		GroupSplittingMethod: 1,
		NumberOfGroups:       1,
		ReferenceGroupWidth:  0,
		NumBitsGroupWidth:    0,
		ReferenceGroupLength: 3,
		TrueLengthLastGroup:  3,
		NumBitsGroupLength:   0,
		NumberOfDataValues:   3,
	}

	seq, err := Complex(tmpl, packed)
	require.NoError(t, err)
	got := collectFloats(seq)
	assert.Equal(t, []float32{7, 7, 7}, got)
}

// TestComplexMissingValuePropagation covers spec.md §4.5.2's reserved
// sentinels: a 3-bit group with values 0..7 where 7 (2^3-1) is the primary
// missing indicator and 6 is secondary under management level 2. Both must
// surface as NaN without perturbing the other, non-missing values.
func TestComplexMissingValuePropagation(t *testing.T) {
	// Group minimum (4 bits) = 0, then four 3-bit values: 2, 7 (missing1),
	// 6 (missing2), 1.
	packed := []byte{0b0000_010_1, 0b11_110_001}
	tmpl := &data.Template52{
		NumBitsPerValue:        4,
		MissingValueManagement: 2,
		GroupSplittingMethod:   1,
		NumberOfGroups:         1,
		ReferenceGroupWidth:    3,
		NumBitsGroupWidth:      0,
		ReferenceGroupLength:   4,
		TrueLengthLastGroup:    4,
		NumBitsGroupLength:     0,
		NumberOfDataValues:     4,
	}

	seq, err := Complex(tmpl, packed)
	require.NoError(t, err)
	got := collectFloats(seq)
	require.Len(t, got, 4, "%v", got)
	assert.Equal(t, float32(2), got[0])
	assert.True(t, math.IsNaN(float64(got[1])), "value 1: want NaN (primary missing sentinel), got %v", got[1])
	assert.True(t, math.IsNaN(float64(got[2])), "value 2: want NaN (secondary missing sentinel), got %v", got[2])
	assert.Equal(t, float32(1), got[3])
}

// TestComplexSpatialDiffDescriptorExtraction is spec.md §8 scenario 4: given
// 16 bytes 0x00..0x0f with (order=2, extra-octets=3), the first two level-0
// values are [0x000102, 0x030405] and z_min = 0x060708. A third value taken
// from a single zero-width group confirms z_min was folded into the
// second-order recurrence correctly.
func TestComplexSpatialDiffDescriptorExtraction(t *testing.T) {
	packed := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	}

	tmpl := &data.Template53{
		ReferenceValue:            0,
		BinaryScaleFactor:         0,
		DecimalScaleFactor:        0,
		NumBitsPerValue:           8,
		GroupSplittingMethod:      1,
		NumberOfGroups:            1,
		ReferenceGroupWidth:       0,
		NumBitsGroupWidth:         0,
		ReferenceGroupLength:      1,
		TrueLengthLastGroup:       1,
		NumBitsGroupLength:        0,
		SpatialDiffOrder:          2,
		NumOctetsExtraDescriptors: 3,
		NumberOfDataValues:        3,
	}

	seq, err := ComplexSpatialDiff(tmpl, packed)
	require.NoError(t, err)

	got := collectFloats(seq)
	// x2 = 2*x1 - x0 + (group value 9 + z_min 0x060708) = 790041.
	want := []float32{0x000102, 0x030405, 790041}
	require.Len(t, got, len(want), "%v", got)
	assert.Equal(t, want, got)
}

// TestComplexSpatialDiffFirstValueSignMagnitude covers a first-difference
// value whose top bit is set: per spec.md §4.8 it must decode through the
// same sign-magnitude chokepoint as z_min, not as a raw unsigned bit
// pattern.
func TestComplexSpatialDiffFirstValueSignMagnitude(t *testing.T) {
	packed := []byte{
		0x81, // first value: sign-magnitude -1
		0x00, // z_min: 0
		0x05, // group minimum (width = NumBitsPerValue = 8): 5
	}

	tmpl := &data.Template53{
		ReferenceValue:            0,
		BinaryScaleFactor:         0,
		DecimalScaleFactor:        0,
		NumBitsPerValue:           8,
		GroupSplittingMethod:      1,
		NumberOfGroups:            1,
		ReferenceGroupWidth:       0,
		NumBitsGroupWidth:         0,
		ReferenceGroupLength:      1,
		TrueLengthLastGroup:       1,
		NumBitsGroupLength:        0,
		SpatialDiffOrder:          1,
		NumOctetsExtraDescriptors: 1,
		NumberOfDataValues:        2,
	}

	seq, err := ComplexSpatialDiff(tmpl, packed)
	require.NoError(t, err)

	got := collectFloats(seq)
	// x0 = -1 (the sign-magnitude-decoded first value).
	// x1 = x0 + group value(5) + z_min(0) = 4.
	want := []float32{-1, 4}
	require.Len(t, got, len(want), "%v", got)
	assert.Equal(t, want, got)
}

func TestComplexSpatialDiffRejectsBadOrder(t *testing.T) {
	tmpl := &data.Template53{
		NumBitsPerValue:           8,
		GroupSplittingMethod:      1,
		SpatialDiffOrder:          3,
		NumOctetsExtraDescriptors: 3,
	}
	_, err := ComplexSpatialDiff(tmpl, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Error(t, err, "expected error for unsupported spatial-diff order")
}

func TestComplexSpatialDiffRejectsZeroExtraOctets(t *testing.T) {
	tmpl := &data.Template53{
		NumBitsPerValue:           8,
		GroupSplittingMethod:      1,
		SpatialDiffOrder:          1,
		NumOctetsExtraDescriptors: 0,
	}
	_, err := ComplexSpatialDiff(tmpl, []byte{0, 0, 0, 0})
	assert.Error(t, err, "expected error when extra-descriptor octets is 0 but spatial diff is requested")
}

func TestApplyScalingFixedValue(t *testing.T) {
	// spec.md §8's fixed-value invariant generalised to the shared scaling
	// helper: nbits == 0 means every emitted value equals reference alone.
	got := applyScaling(1.5, 0, 0, 0)
	assert.InDelta(t, 1.5, got, 1e-6)
}
