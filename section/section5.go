package section

import (
	"fmt"

	"github.com/squallwx/grib2/data"
	"github.com/squallwx/grib2/internal"
)

// Section5 represents the GRIB2 Data Representation Section (Section 5).
//
// This section describes how the data values are packed/compressed,
// including the packing method, number of bits per value, and scaling parameters.
type Section5 struct {
	Length                       uint32               // Total length of this section in bytes
	NumDataValues                uint32               // Number of data values
	DataRepresentationTemplate   uint16               // Data representation template number (Table 5.0)
	Representation               data.Representation  // Parsed representation (template-specific)
}

// ParseSection5 parses the GRIB2 Data Representation Section (Section 5).
//
// Section 5 structure (variable length, minimum 11 bytes + template):
//   Bytes 1-4:   Length of section (uint32)
//   Byte 5:      Section number (must be 5)
//   Bytes 6-9:   Number of data values (uint32)
//   Bytes 10-11: Data representation template number (Table 5.0)
//   Bytes 12-n:  Data representation (template-specific)
//
// Supported templates (see representationParsers):
//   - 0: Simple packing
//   - 2: Complex packing
//   - 3: Complex packing with spatial differencing
//   - 40, 41, 42: JPEG2000, PNG and CCSDS image packing
//   - 200: Run-length packing with level values
//
// Returns an error if:
//   - The section is too short
//   - The section number is not 5
//   - The template number is not supported
func ParseSection5(sectionData []byte) (*Section5, error) {
	if len(sectionData) < 11 {
		return nil, fmt.Errorf("section 5 must be at least 11 bytes, got %d", len(sectionData))
	}

	r := internal.NewReader(sectionData)

	// Read section length
	length, _ := r.Uint32()

	// Validate section length matches data
	if int(length) != len(sectionData) {
		return nil, fmt.Errorf("section 5 length mismatch: header says %d bytes, have %d bytes", length, len(sectionData))
	}

	// Read and validate section number
	sectionNum, _ := r.Uint8()
	if sectionNum != 5 {
		return nil, fmt.Errorf("expected section 5, got section %d", sectionNum)
	}

	// Read data representation metadata
	numDataValues, _ := r.Uint32()
	dataRepresentationTemplateNumber, _ := r.Uint16()

	// Read template-specific data
	templateData, _ := r.Bytes(r.Remaining())

	parseFn, ok := representationParsers[dataRepresentationTemplateNumber]
	if !ok {
		return nil, fmt.Errorf("unsupported data representation template: %d", dataRepresentationTemplateNumber)
	}
	parsedRepresentation, err := parseFn(numDataValues, templateData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data representation template 5.%d: %w", dataRepresentationTemplateNumber, err)
	}

	return &Section5{
		Length:                     length,
		NumDataValues:              numDataValues,
		DataRepresentationTemplate: dataRepresentationTemplateNumber,
		Representation:             parsedRepresentation,
	}, nil
}

// representationParsers dispatches a Data Representation Template number to
// its parser, the same map-based shape as productParsers in section4.go.
var representationParsers = map[uint16]func(uint32, []byte) (data.Representation, error){
	0:   func(n uint32, b []byte) (data.Representation, error) { return data.ParseTemplate50(n, b) },
	2:   func(n uint32, b []byte) (data.Representation, error) { return data.ParseTemplate52(n, b) },
	3:   func(n uint32, b []byte) (data.Representation, error) { return data.ParseTemplate53(n, b) },
	40:  func(n uint32, b []byte) (data.Representation, error) { return data.ParseTemplate40Image(n, b) },
	41:  func(n uint32, b []byte) (data.Representation, error) { return data.ParseTemplate41Image(n, b) },
	42:  func(n uint32, b []byte) (data.Representation, error) { return data.ParseTemplate42Image(n, b) },
	200: func(n uint32, b []byte) (data.Representation, error) { return data.ParseTemplate200(n, b) },
}

// RepresentationDescription returns a human-readable description of the data representation.
func (s *Section5) RepresentationDescription() string {
	if s.Representation != nil {
		return s.Representation.String()
	}
	return fmt.Sprintf("Unknown data representation template %d", s.DataRepresentationTemplate)
}
