package grib2

import (
	"fmt"
	"iter"

	"github.com/squallwx/grib2/bitmap"
	"github.com/squallwx/grib2/data"
	"github.com/squallwx/grib2/decode"
	"github.com/squallwx/grib2/grid"
	"github.com/squallwx/grib2/section"
	"github.com/squallwx/grib2/submessage"
)

// decodeRepresentation dispatches to the decode package function matching
// the Section 5 template actually present, since data.Representation no
// longer carries a Decode method itself.
func decodeRepresentation(rep data.Representation, packed []byte) (iter.Seq[float32], error) {
	switch t := rep.(type) {
	case *data.Template50:
		return decode.Simple(t, packed)
	case *data.Template52:
		return decode.Complex(t, packed)
	case *data.Template53:
		return decode.ComplexSpatialDiff(t, packed)
	case *data.Template200:
		return decode.RunLength(t, packed)
	case *data.ImageTemplate:
		return decode.Image(t, packed)
	default:
		return nil, fmt.Errorf("no decoder for representation template %d", rep.TemplateNumber())
	}
}

// Message represents one decodable field within a GRIB2 message.
//
// A physical GRIB2 message (bounded by "GRIB"..."7777") contains all the
// information needed to describe and decode one or more meteorological
// fields: Section 0/1 are shared across the whole message, while Sections
// 2 through 7 may repeat to describe additional fields under the same
// header. ParseMessage returns one Message per field.
type Message struct {
	// Section0 contains the indicator section with discipline and message length
	Section0 *section.Section0

	// Section1 contains identification information (center, time, etc.)
	Section1 *section.Section1

	// Section2 contains local use data (optional, may be nil)
	Section2 *section.Section2

	// Section3 contains the grid definition
	Section3 *section.Section3

	// Section4 contains the product definition
	Section4 *section.Section4

	// Section5 contains the data representation template
	Section5 *section.Section5

	// Section6 contains the bitmap (optional, may be nil if all points valid)
	Section6 *section.Section6

	// Section7 contains the packed data
	Section7 *section.Section7

	// RawData is the original message bytes (for debugging/analysis)
	RawData []byte

	// SubmessageIndex is this field's 0-based position within RawData.
	SubmessageIndex int
}

// ParseMessage parses a complete physical GRIB2 message from raw bytes and
// returns one Message per field it contains.
//
// The input data should contain a single complete GRIB2 message starting
// with "GRIB" and ending with "7777". Most messages contain exactly one
// field (len(result) == 1), but Sections 2 through 7 may legally repeat to
// pack several fields — sharing one discipline/reference-time header —
// into a single physical message, in which case ParseMessage returns one
// Message per repetition.
func ParseMessage(data []byte) ([]*Message, error) {
	if err := ValidateMessageStructure(data); err != nil {
		return nil, err
	}

	sec0, err := section.ParseSection0(data[0:16])
	if err != nil {
		return nil, &ParseError{
			Section:    0,
			Offset:     0,
			Message:    "failed to parse Section 0",
			Underlying: err,
		}
	}

	sec1Raw, err := parseSectionAt(data, 16, 1)
	if err != nil {
		return nil, err
	}
	sec1 := sec1Raw.(*section.Section1)

	bodyStart := 16 + int(sec1.Length)
	body := data[bodyStart : len(data)-4]

	subs, err := submessage.Split(body, bodyStart)
	if err != nil {
		return nil, &ParseError{
			Section:    -1,
			Offset:     bodyStart,
			Message:    "failed to split message into submessages",
			Underlying: err,
		}
	}

	messages := make([]*Message, 0, len(subs))
	for _, sub := range subs {
		msg := &Message{
			Section0:        sec0,
			Section1:        sec1,
			RawData:         data,
			SubmessageIndex: sub.Index,
		}

		if sub.Section2 != nil {
			sec2, err := section.ParseSection2(sub.Section2.Data)
			if err != nil {
				return nil, &ParseError{Section: 2, Offset: sub.Section2.Offset, Message: "failed to parse Section 2", Underlying: err}
			}
			msg.Section2 = sec2
		}

		sec3, err := section.ParseSection3(sub.Section3.Data)
		if err != nil {
			return nil, &ParseError{Section: 3, Offset: sub.Section3.Offset, Message: "failed to parse Section 3", Underlying: err}
		}
		msg.Section3 = sec3

		sec4, err := section.ParseSection4(sub.Section4.Data)
		if err != nil {
			return nil, &ParseError{Section: 4, Offset: sub.Section4.Offset, Message: "failed to parse Section 4", Underlying: err}
		}
		msg.Section4 = sec4

		sec5, err := section.ParseSection5(sub.Section5.Data)
		if err != nil {
			return nil, &ParseError{Section: 5, Offset: sub.Section5.Offset, Message: "failed to parse Section 5", Underlying: err}
		}
		msg.Section5 = sec5

		if sub.Section6 != nil {
			numGridPoints := uint32(sec3.NumDataPoints)
			sec6, err := section.ParseSection6(sub.Section6.Data, numGridPoints)
			if err != nil {
				return nil, &ParseError{Section: 6, Offset: sub.Section6.Offset, Message: "failed to parse Section 6", Underlying: err}
			}
			msg.Section6 = sec6
		}

		sec7, err := section.ParseSection7(sub.Section7.Data)
		if err != nil {
			return nil, &ParseError{Section: 7, Offset: sub.Section7.Offset, Message: "failed to parse Section 7", Underlying: err}
		}
		msg.Section7 = sec7

		messages = append(messages, msg)
	}

	return messages, nil
}

// extractSectionData reads a section's length and extracts its data.
func extractSectionData(data []byte, offset int, expectedSection uint8) []byte {
	if offset+5 > len(data) {
		return nil
	}

	// Read section length (first 4 bytes)
	sectionLength := uint32(data[offset])<<24 | uint32(data[offset+1])<<16 |
		uint32(data[offset+2])<<8 | uint32(data[offset+3])

	// Validate we have enough data
	if offset+int(sectionLength) > len(data) {
		return nil
	}

	return data[offset : offset+int(sectionLength)]
}

// parseSectionAt reads a section length and parses the appropriate section type.
func parseSectionAt(data []byte, offset int, expectedSection uint8) (interface{}, error) {
	sectionData := extractSectionData(data, offset, expectedSection)
	if sectionData == nil {
		return nil, &ParseError{
			Section: int(expectedSection),
			Offset:  offset,
			Message: fmt.Sprintf("failed to extract section %d data", expectedSection),
		}
	}

	switch expectedSection {
	case 1:
		return section.ParseSection1(sectionData)
	case 2:
		return section.ParseSection2(sectionData)
	case 3:
		return section.ParseSection3(sectionData)
	case 4:
		return section.ParseSection4(sectionData)
	case 5:
		return section.ParseSection5(sectionData)
	case 7:
		return section.ParseSection7(sectionData)
	default:
		return nil, &ParseError{
			Section: int(expectedSection),
			Offset:  offset,
			Message: fmt.Sprintf("unsupported section number: %d", expectedSection),
		}
	}
}

// DecodeData decodes the data values from this message.
//
// Returns a lazy sequence of float32 values in grid scan order. Missing or
// bitmap-absent values are represented as NaN.
//
// This method combines the data representation (Section 5), bitmap
// (Section 6), and packed data (Section 7) to produce the final decoded
// values without materializing the whole field up front.
func (m *Message) DecodeData() (iter.Seq[float32], error) {
	if m.Section5 == nil || m.Section5.Representation == nil {
		return nil, fmt.Errorf("message has no data representation (Section 5)")
	}
	if m.Section7 == nil {
		return nil, fmt.Errorf("message has no data section (Section 7)")
	}

	values, err := decodeRepresentation(m.Section5.Representation, m.Section7.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	var presence []bool
	if m.Section6 != nil && m.Section6.HasBitmap() {
		presence = m.Section6.Bitmap
	}

	return bitmap.Apply(presence, values), nil
}

// Coordinates returns the lat/lon coordinates for this message's grid.
//
// Returns a lazy sequence of LatLon pairs in grid scan order, matching the
// order of values returned by DecodeData(). Only Template 3.0 (Lat/Lon)
// grids support coordinate derivation; other grid types return
// *grid.NotSupportedError.
func (m *Message) Coordinates() (iter.Seq[grid.LatLon], error) {
	if m.Section3 == nil || m.Section3.Grid == nil {
		return nil, fmt.Errorf("message has no grid definition (Section 3)")
	}

	ll, ok := m.Section3.Grid.(*grid.LatLonGrid)
	if !ok {
		return nil, &grid.NotSupportedError{Projection: m.Section3.Grid.String()}
	}
	return ll.LatLons(), nil
}

// String returns a human-readable summary of the message.
func (m *Message) String() string {
	if m.Section0 == nil {
		return "Invalid GRIB2 message"
	}

	discipline := "Unknown"
	if m.Section0 != nil {
		discipline = m.Section0.DisciplineName()
	}

	gridDesc := "Unknown"
	if m.Section3 != nil && m.Section3.Grid != nil {
		gridDesc = m.Section3.Grid.String()
	}

	product := "Unknown"
	if m.Section4 != nil && m.Section4.Product != nil {
		product = m.Section4.Product.String()
	}

	return fmt.Sprintf("GRIB2 Message: Discipline=%s, Grid=%s, Product=%s",
		discipline, gridDesc, product)
}
