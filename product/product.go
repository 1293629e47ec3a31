// Package product provides product definition types and parsers for GRIB2.
package product

import (
	"math"

	"github.com/squallwx/grib2/internal"
)

// Product represents a GRIB2 product definition.
// Different product templates implement this interface.
type Product interface {
	// TemplateNumber returns the product definition template number (Table 4.0).
	TemplateNumber() int

	// GetParameterCategory returns the parameter category code (Table 4.1).
	GetParameterCategory() uint8

	// GetParameterNumber returns the parameter number code (Table 4.2).
	GetParameterNumber() uint8

	// String returns a human-readable description of the product.
	String() string
}

// scaledValue applies a signed decimal scale factor to a fixed-surface
// value, following the all-ones sentinel GRIB2 uses for "missing": either
// field carrying its own all-ones bit pattern means the surface was not
// set, independent of the other field. Both fields are GRIB sign-magnitude
// (i8 scale factor, i32 scaled value), so each is decoded through the
// single sign-magnitude chokepoint before use.
func scaledValue(scaleFactor uint8, value uint32) float64 {
	if scaleFactor == 0xFF || value == 0xFFFFFFFF {
		return math.NaN()
	}
	signedScale := internal.AsGribInt(uint64(scaleFactor), 8)
	signedValue := internal.AsGribInt(uint64(value), 32)
	if signedScale == 0 {
		return float64(signedValue)
	}
	return float64(signedValue) * math.Pow(10, -float64(signedScale))
}
