package data

import (
	"fmt"

	"github.com/squallwx/grib2/internal"
)

// Template200 represents Data Representation Template 5.200: Run-Length
// Packing with Level Values. Used for categorical/enumerated fields (e.g.
// radar reflectivity, precipitation type) where each distinct value has an
// assigned "level" and runs of identical values are packed as a count plus
// a level index rather than a raw sample per grid point.
type Template200 struct {
	NumBitsPerValue    uint8    // Number of bits used for each packed value/run-length byte
	MaxLevelValue      uint16   // Maximum level value actually present
	NumberOfLevels     uint16   // Number of level values defined below
	DecimalScaleFactor int16    // Decimal scale factor applied to level values
	LevelValues        []uint16 // Scaled level values, indexed by level number
	NumberOfDataValues uint32
}

// ParseTemplate200 parses Data Representation Template 5.200.
//
// The template data should be at least 7 bytes plus 2 bytes per level.
func ParseTemplate200(numDataValues uint32, data []byte) (*Template200, error) {
	if len(data) < 7 {
		return nil, fmt.Errorf("template 5.200 requires at least 7 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)
	bitsPerValue, _ := r.Uint8()
	maxLevelValue, _ := r.Uint16()
	numberOfLevels, _ := r.Uint16()
	decimalScaleFactor, _ := r.Int16()

	expected := 7 + int(numberOfLevels)*2
	if len(data) < expected {
		return nil, fmt.Errorf("template 5.200 with %d levels requires %d bytes, got %d",
			numberOfLevels, expected, len(data))
	}

	levels := make([]uint16, numberOfLevels)
	for i := range levels {
		v, _ := r.Uint16()
		levels[i] = v
	}

	return &Template200{
		NumBitsPerValue:    bitsPerValue,
		MaxLevelValue:      maxLevelValue,
		NumberOfLevels:     numberOfLevels,
		DecimalScaleFactor: decimalScaleFactor,
		LevelValues:        levels,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 200 for Template 5.200.
func (t *Template200) TemplateNumber() int { return 200 }

// NumDataValues returns the number of data values.
func (t *Template200) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per packed run/level entry.
func (t *Template200) BitsPerValue() uint8 { return t.NumBitsPerValue }

// String returns a human-readable description.
func (t *Template200) String() string {
	return fmt.Sprintf("Template 5.200: Run-Length Packing, %d values, %d levels",
		t.NumberOfDataValues, t.NumberOfLevels)
}
