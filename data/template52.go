package data

import (
	"fmt"

	"github.com/squallwx/grib2/internal"
)

// Template52 represents Data Representation Template 5.2: Complex Packing
// (group splitting, no spatial differencing). It carries the same group
// layout as Template53 but without the spatial-difference reference values
// and min_val preamble.
type Template52 struct {
	ReferenceValue         float32
	BinaryScaleFactor      int16
	DecimalScaleFactor     int16
	NumBitsPerValue        uint8
	OriginalFieldType      uint8
	GroupSplittingMethod   uint8
	MissingValueManagement uint8
	PrimaryMissingValue    float32
	SecondaryMissingValue  float32
	NumberOfGroups         uint32
	ReferenceGroupWidth    uint8
	NumBitsGroupWidth      uint8
	ReferenceGroupLength   uint32
	GroupLengthIncrement   uint8
	TrueLengthLastGroup    uint32
	NumBitsGroupLength     uint8
	NumberOfDataValues     uint32
}

// ParseTemplate52 parses Data Representation Template 5.2.
//
// The template data should be at least 36 bytes for Template 5.2.
func ParseTemplate52(numDataValues uint32, data []byte) (*Template52, error) {
	if len(data) < 36 {
		return nil, fmt.Errorf("template 5.2 requires at least 36 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	groupSplittingMethod, _ := r.Uint8()
	missingValueManagement, _ := r.Uint8()
	primaryMissingValue, _ := r.Float32()
	secondaryMissingValue, _ := r.Float32()
	numberOfGroups, _ := r.Uint32()
	referenceGroupWidth, _ := r.Uint8()
	numBitsGroupWidth, _ := r.Uint8()
	referenceGroupLength, _ := r.Uint32()
	groupLengthIncrement, _ := r.Uint8()
	trueLengthLastGroup, _ := r.Uint32()
	numBitsGroupLength, _ := r.Uint8()

	return &Template52{
		ReferenceValue:         referenceValue,
		BinaryScaleFactor:      binaryScaleFactor,
		DecimalScaleFactor:     decimalScaleFactor,
		NumBitsPerValue:        bitsPerValue,
		OriginalFieldType:      originalFieldType,
		GroupSplittingMethod:   groupSplittingMethod,
		MissingValueManagement: missingValueManagement,
		PrimaryMissingValue:    primaryMissingValue,
		SecondaryMissingValue:  secondaryMissingValue,
		NumberOfGroups:         numberOfGroups,
		ReferenceGroupWidth:    referenceGroupWidth,
		NumBitsGroupWidth:      numBitsGroupWidth,
		ReferenceGroupLength:   referenceGroupLength,
		GroupLengthIncrement:   groupLengthIncrement,
		TrueLengthLastGroup:    trueLengthLastGroup,
		NumBitsGroupLength:     numBitsGroupLength,
		NumberOfDataValues:     numDataValues,
	}, nil
}

// TemplateNumber returns 2 for Template 5.2.
func (t *Template52) TemplateNumber() int { return 2 }

// NumDataValues returns the number of data values.
func (t *Template52) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per value (before grouping).
func (t *Template52) BitsPerValue() uint8 { return t.NumBitsPerValue }

// String returns a human-readable description.
func (t *Template52) String() string {
	return fmt.Sprintf("Template 5.2: Complex Packing, %d values, %d groups, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumberOfGroups, t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor)
}
