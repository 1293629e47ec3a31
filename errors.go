// Package grib2 provides a clean, idiomatic Go library for reading GRIB2
// (GRIdded Binary 2nd edition) meteorological data files.
//
// Basic usage:
//
//	file, err := os.Open("forecast.grib2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	fields, err := grib2.Read(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, f := range fields {
//	    fmt.Printf("%s at %s: %d points\n", f.Parameter, f.Level, f.NumPoints)
//	}
//
// Filtering:
//
//	// Only read temperature fields (discipline 0, category 0, number 0)
//	fields, err := grib2.ReadWithOptions(file,
//	    grib2.WithParameterCategory(0),
//	    grib2.WithParameterNumber(0),
//	)
//
// Performance:
//
// This library parses GRIB2 messages in parallel using goroutines. Use
// WithContext for cancellation support:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	fields, err := grib2.ReadWithOptions(file, grib2.WithContext(ctx))
package grib2

import "fmt"

// ParseError represents an error during GRIB2 parsing.
// It includes context about where in the file the error occurred.
type ParseError struct {
	Section    int    // Which section (0-7), or -1 if file-level
	Offset     int    // Byte offset in file where error occurred
	Message    string // Description of the error
	Underlying error  // Wrapped error, if any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Section == -1 {
		if e.Underlying != nil {
			return fmt.Sprintf("at offset %d: %s: %v", e.Offset, e.Message, e.Underlying)
		}
		return fmt.Sprintf("at offset %d: %s", e.Offset, e.Message)
	}

	if e.Underlying != nil {
		return fmt.Sprintf("section %d at offset %d: %s: %v",
			e.Section, e.Offset, e.Message, e.Underlying)
	}
	return fmt.Sprintf("section %d at offset %d: %s",
		e.Section, e.Offset, e.Message)
}

// Unwrap returns the underlying error, if any.
// This allows errors.Is and errors.As to work correctly.
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// UnsupportedTemplateError indicates a template number that isn't implemented yet.
type UnsupportedTemplateError struct {
	Section        int // Which section (3=grid, 4=product, 5=data)
	TemplateNumber int // The unsupported template number
}

// Error implements the error interface.
func (e *UnsupportedTemplateError) Error() string {
	sectionName := "unknown"
	switch e.Section {
	case 3:
		sectionName = "grid definition"
	case 4:
		sectionName = "product definition"
	case 5:
		sectionName = "data representation"
	}

	return fmt.Sprintf("unsupported %s template %d in section %d",
		sectionName, e.TemplateNumber, e.Section)
}

// DecodeErrorKind classifies a DecodeError.
type DecodeErrorKind int

const (
	// DecodeErrorUnclassified covers malformed packed data that doesn't
	// fit one of the more specific kinds below.
	DecodeErrorUnclassified DecodeErrorKind = iota
	// DecodeErrorNotSupported means the template is recognized but this
	// library cannot decode it (e.g. Data Representation Template 5.42/CCSDS).
	DecodeErrorNotSupported
	// DecodeErrorLengthMismatch means Section 7's packed data is
	// inconsistent with the number of values Section 5 declares.
	DecodeErrorLengthMismatch
)

// DecodeError reports a failure unpacking Section 7 data against its
// Section 5 representation template.
type DecodeError struct {
	Kind    DecodeErrorKind
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s", e.Message)
}

// InvalidFormatError indicates that the data is not a valid GRIB2 file.
type InvalidFormatError struct {
	Message string // Description of what's invalid
	Offset  int    // Byte offset where the invalid data was found
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid GRIB2 format at offset %d: %s", e.Offset, e.Message)
}
