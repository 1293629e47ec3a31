// Package data provides data representation types and decoders for GRIB2.
package data

// Representation represents a parsed GRIB2 Data Representation Template
// (Table 5.0) preamble: the scaling and packing parameters Section 5
// carries, but not the decoded values themselves. Actual unpacking lives
// in package decode, which type-switches on the concrete Representation to
// pick a packing algorithm; this interface exists so Section 5 can hold
// and describe whichever template it parsed without decode depending on
// section, and section depending on decode.
type Representation interface {
	// TemplateNumber returns the data representation template number (Table 5.0).
	TemplateNumber() int

	// NumDataValues returns the number of data values to be unpacked.
	NumDataValues() uint32

	// String returns a human-readable description.
	String() string
}
