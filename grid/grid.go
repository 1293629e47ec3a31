// Package grid provides grid definition types and parsers for GRIB2.
package grid

import "fmt"

// Grid represents a GRIB2 grid definition.
// Different grid templates implement this interface.
type Grid interface {
	// TemplateNumber returns the grid definition template number (Table 3.1).
	TemplateNumber() int

	// NumPoints returns the total number of grid points.
	NumPoints() int

	// String returns a human-readable description of the grid.
	String() string
}

// NotSupportedError reports a grid projection this package can parse but
// cannot resolve to geographic coordinates. Only LatLonGrid implements the
// full inverse projection; Lambert Conformal, Mercator, and Polar
// Stereographic are parsed for their metadata but leave coordinate
// derivation to a dedicated GIS library.
type NotSupportedError struct {
	Projection string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("grid: coordinate derivation not supported for %s projection", e.Projection)
}
