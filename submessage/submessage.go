// Package submessage splits a single GRIB2 message into its constituent
// submessages. A GRIB2 message may repeat sections 2 through 7 to describe
// more than one field (different product, grid, or packing) under one
// Section 0/Section 1 header; this package walks that repetition and
// validates that the section order is legal at each step.
//
// The teacher this module is adapted from assumed exactly one field per
// message and never looked past the first Section 3-7 group; this package
// is the piece that lifts that assumption.
package submessage

import (
	"fmt"

	"github.com/squallwx/grib2/internal"
)

// state names the section-order state machine position.
type state int

const (
	stateStart state = iota
	stateSection1
	stateSection2
	stateSection3
	stateSection4
	stateSection5
	stateSection6
	stateSection7
	stateEnd
)

// RawSection is one length-prefixed section as found in the byte stream,
// with its section number, its start offset relative to the start of the
// message, and its raw bytes (header included).
type RawSection struct {
	Number int
	Offset int
	Data   []byte
}

// Submessage is one coherent (grid, product, packing, data) group within a
// message: the Section 3-7 quintuple plus whichever Section 1/2 applies to
// it (Section 1 is shared by the whole message; Section 2 may repeat).
type Submessage struct {
	Index    int // 0-based position of this submessage within the message
	Section1 RawSection
	Section2 *RawSection // nil if this group has no local-use section
	Section3 RawSection
	Section4 RawSection
	Section5 RawSection
	Section6 *RawSection // nil if no bitmap section
	Section7 RawSection
}

// InvalidSectionOrderError reports a section appearing somewhere the
// section-order grammar does not allow it.
type InvalidSectionOrderError struct {
	Offset  int
	Found   int
	Message string
}

func (e *InvalidSectionOrderError) Error() string {
	return fmt.Sprintf("invalid section order at offset %d: section %d: %s", e.Offset, e.Found, e.Message)
}

// NoGridDefinitionError reports a data section group (4-7) with no grid
// definition in scope — either the message's first group skipped Section
// 3, or grouping logic lost track of which grid a repeat applies to.
type NoGridDefinitionError struct {
	Offset int
}

func (e *NoGridDefinitionError) Error() string {
	return fmt.Sprintf("data section at offset %d has no grid definition in scope", e.Offset)
}

// UnexpectedEndOfDataError reports the byte stream running out before the
// section-order grammar reached a legal stopping state (Section 7 followed
// by end-of-message or a new Section 3).
type UnexpectedEndOfDataError struct {
	Offset int
}

func (e *UnexpectedEndOfDataError) Error() string {
	return fmt.Sprintf("unexpected end of message data at offset %d", e.Offset)
}

// scanSections walks body (the message bytes after the 16-byte Section 0
// and before the trailing "7777") into its length-prefixed sections.
func scanSections(body []byte, bodyStart int) ([]RawSection, error) {
	var sections []RawSection
	offset := 0
	for offset < len(body) {
		if offset+5 > len(body) {
			return nil, &UnexpectedEndOfDataError{Offset: bodyStart + offset}
		}
		r := internal.NewReader(body[offset:])
		length, _ := r.Uint32()
		number, _ := r.Uint8()
		if length < 5 || offset+int(length) > len(body) {
			return nil, &InvalidSectionOrderError{
				Offset:  bodyStart + offset,
				Found:   int(number),
				Message: fmt.Sprintf("declared length %d is invalid for %d remaining bytes", length, len(body)-offset),
			}
		}
		sections = append(sections, RawSection{
			Number: int(number),
			Offset: bodyStart + offset,
			Data:   body[offset : offset+int(length)],
		})
		offset += int(length)
	}
	return sections, nil
}

// Split walks a single GRIB2 message's body — everything between the
// 16-byte Section 0 and the trailing 4-byte "7777" end marker, which the
// caller has already stripped off — and returns its submessages in order.
//
// bodyStart is the absolute byte offset of body within the original
// message, used only to make error offsets meaningful to a caller.
func Split(body []byte, bodyStart int) ([]Submessage, error) {
	sections, err := scanSections(body, bodyStart)
	if err != nil {
		return nil, err
	}

	var result []Submessage
	st := stateStart
	var sec1 RawSection
	var sec2 *RawSection
	var sec3, sec4, sec5 RawSection
	var sec6 *RawSection
	haveGrid := false

	finalizeField := func(sec7 RawSection) {
		result = append(result, Submessage{
			Index:    len(result),
			Section1: sec1,
			Section2: sec2,
			Section3: sec3,
			Section4: sec4,
			Section5: sec5,
			Section6: sec6,
			Section7: sec7,
		})
		sec6 = nil
	}

	for _, s := range sections {
		switch s.Number {
		case 1:
			if st != stateStart {
				return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: 1, Message: "section 1 may only appear once, at the start of a message"}
			}
			sec1 = s
			st = stateSection1
		case 2:
			if st != stateSection1 && st != stateSection7 {
				return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: 2, Message: "section 2 must follow section 1 or a preceding submessage"}
			}
			local := s
			sec2 = &local
			st = stateSection2
		case 3:
			if st != stateSection1 && st != stateSection2 && st != stateSection7 {
				return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: 3, Message: "section 3 must follow section 1, section 2, or a preceding submessage"}
			}
			if st != stateSection2 {
				sec2 = nil
			}
			sec3 = s
			haveGrid = true
			st = stateSection3
		case 4:
			if !haveGrid && (st == stateSection1 || st == stateSection2) {
				return nil, &NoGridDefinitionError{Offset: s.Offset}
			}
			if st != stateSection3 && st != stateSection7 {
				return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: 4, Message: "section 4 must follow section 3, or reuse an earlier one after a completed submessage"}
			}
			if !haveGrid {
				return nil, &NoGridDefinitionError{Offset: s.Offset}
			}
			if st == stateSection7 {
				// Jumping straight from a completed submessage to section 4
				// reuses the earlier section 3 (and drops any section 2,
				// which never carries across submessages implicitly).
				sec2 = nil
			}
			sec4 = s
			st = stateSection4
		case 5:
			if st != stateSection4 {
				return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: 5, Message: "section 5 must follow section 4"}
			}
			sec5 = s
			st = stateSection5
		case 6:
			if st != stateSection5 {
				return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: 6, Message: "section 6 must follow section 5"}
			}
			local := s
			sec6 = &local
			st = stateSection6
		case 7:
			if st != stateSection5 && st != stateSection6 {
				return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: 7, Message: "section 7 must follow section 5 or section 6"}
			}
			finalizeField(s)
			st = stateSection7
		default:
			return nil, &InvalidSectionOrderError{Offset: s.Offset, Found: s.Number, Message: "unknown section number"}
		}
	}

	if st != stateSection7 {
		return nil, &UnexpectedEndOfDataError{Offset: bodyStart + len(body)}
	}

	return result, nil
}
