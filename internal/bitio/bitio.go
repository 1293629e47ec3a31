// Package bitio provides a lazy, MSB-first bit-stream reader used by the
// packing decoders in the data package. Values are produced one at a time
// through a range-over-func iterator so a caller can stop consuming (on a
// bitmap miss, a worker cancellation, or an error) without the reader ever
// having materialized the rest of the field.
package bitio

import "iter"

// Reader walks a byte slice bit by bit, MSB-first, the convention GRIB2
// uses for every packed data field (DRT 5.0, 5.2, 5.3, 5.200 group
// descriptors).
type Reader struct {
	data   []byte
	bitPos int // absolute bit offset, 0 at the MSB of data[0]
}

// NewReader creates a reader over data starting at bit 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt creates a reader over data starting at the given bit offset,
// for callers resuming a bit stream mid-byte (e.g. complex packing's
// per-group values, which start wherever the reference/width/length
// tables left off).
func NewReaderAt(data []byte, bitOffset int) *Reader {
	return &Reader{data: data, bitPos: bitOffset}
}

// Cursor is a clonable, value-type snapshot of a Reader's position. Group
// splitting (DRT 5.2/5.3) needs to probe ahead and rewind without losing
// the original reader, which a plain copy of Reader (value receiver) would
// already give; Cursor exists so callers can hold a position without
// holding the whole reader.
type Cursor struct {
	bitPos int
}

// Save returns the reader's current position.
func (r *Reader) Save() Cursor { return Cursor{bitPos: r.bitPos} }

// Restore rewinds the reader to a previously saved position.
func (r *Reader) Restore(c Cursor) { r.bitPos = c.bitPos }

// Clone returns an independent copy of the reader at the same position.
func (r *Reader) Clone() *Reader {
	return &Reader{data: r.data, bitPos: r.bitPos}
}

// BitsRemaining returns the number of unread bits.
func (r *Reader) BitsRemaining() int {
	total := len(r.data) * 8
	if r.bitPos >= total {
		return 0
	}
	return total - r.bitPos
}

// AlignToByte advances to the next byte boundary; a no-op if already
// aligned.
func (r *Reader) AlignToByte() {
	if rem := r.bitPos % 8; rem != 0 {
		r.bitPos += 8 - rem
	}
}

// Next reads a single width-bit unsigned value, MSB-first. ok is false at
// end of stream.
func (r *Reader) Next(width int) (value uint32, ok bool) {
	if width <= 0 {
		return 0, true
	}
	if width > 32 {
		width = 32
	}
	if r.bitPos+width > len(r.data)*8 {
		return 0, false
	}
	var result uint32
	remaining := width
	for remaining > 0 {
		byteIdx := r.bitPos / 8
		bitOff := r.bitPos % 8
		bitsInByte := 8 - bitOff
		take := remaining
		if take > bitsInByte {
			take = bitsInByte
		}
		shift := bitsInByte - take
		mask := byte((1 << take) - 1)
		bits := (r.data[byteIdx] >> shift) & mask
		result = (result << take) | uint32(bits)
		r.bitPos += take
		remaining -= take
	}
	return result, true
}

// Uint32s returns a lazy sequence of n values of width bits each, read in
// order starting from the reader's current position. Iteration stops early
// (without consuming further bits) if the consumer breaks out of the loop,
// and stops producing once the stream is exhausted.
func (r *Reader) Uint32s(width int, n int) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i := 0; i < n; i++ {
			v, ok := r.Next(width)
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Fixed returns a lazy sequence that yields the same value n times without
// consuming any bits. It models the GRIB2 fixed-value shortcut (simple
// packing with NumBitsPerValue == 0, constant groups in complex packing)
// so downstream code can treat "no bits to read" the same as "read bits"
// without a conditional at every call site.
func Fixed(value uint32, n int) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i := 0; i < n; i++ {
			if !yield(value) {
				return
			}
		}
	}
}
