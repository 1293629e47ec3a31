package grib2

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/squallwx/grib2/grid"
)

// Context is a lazy façade over a GRIB2-bearing stream. Unlike Read/
// ReadWithOptions, which eagerly materialize every field's values and
// coordinates, Context only scans message boundaries up front; it defers
// parsing each message's sections, and decoding each field's packed
// values, until the caller actually asks for them through an accessor.
//
// The underlying io.ReadSeeker is guarded by a mutex so Submessages()
// iteration and per-index accessor calls can interleave safely without the
// caller having to coordinate reads itself.
type Context struct {
	mu          sync.Mutex
	r           io.ReadSeeker
	boundaries  []MessageBoundary
	submessages []*Message
	parsed      bool
}

// NewFromReader scans r for GRIB2 message boundaries and returns a Context
// that can lazily parse and decode them on demand. r must remain valid for
// the lifetime of the Context.
func NewFromReader(r io.ReadSeeker) (*Context, error) {
	boundaries, err := FindMessagesInStream(r)
	if err != nil {
		return nil, err
	}
	return &Context{r: r, boundaries: boundaries}, nil
}

// NewFromBytes wraps an in-memory byte slice as a Context.
func NewFromBytes(data []byte) (*Context, error) {
	return NewFromReader(bytes.NewReader(data))
}

// Len returns the number of physical GRIB2 messages found in the stream.
// A single message may expand into more than one submessage once parsed;
// use the length of Submessages() for the field count.
func (c *Context) Len() int {
	return len(c.boundaries)
}

// IsEmpty reports whether the stream contained no GRIB2 messages.
func (c *Context) IsEmpty() bool {
	return len(c.boundaries) == 0
}

// parseAll reads and parses every message boundary into its constituent
// submessages, caching the result so repeated accessor calls don't re-walk
// the stream. Safe for concurrent callers.
func (c *Context) parseAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.parsed {
		return nil
	}

	var all []*Message
	for _, b := range c.boundaries {
		raw, err := readMessageAt(c.r, int64(b.Start), b.Length)
		if err != nil {
			return fmt.Errorf("failed to read message %d: %w", b.Index, err)
		}
		msgs, err := ParseMessage(raw)
		if err != nil {
			return fmt.Errorf("failed to parse message %d at offset %d: %w", b.Index, b.Start, err)
		}
		all = append(all, msgs...)
	}

	c.submessages = all
	c.parsed = true
	return nil
}

// Submessages returns a lazy sequence over every field in the stream, in
// order. Parsing is triggered on first iteration and cached for later
// calls and other accessors; a parse failure ends the sequence early.
func (c *Context) Submessages() iter.Seq[*Message] {
	return func(yield func(*Message) bool) {
		if err := c.parseAll(); err != nil {
			return
		}
		c.mu.Lock()
		subs := c.submessages
		c.mu.Unlock()
		for _, m := range subs {
			if !yield(m) {
				return
			}
		}
	}
}

// At returns the submessage at the given 0-based index, counted across the
// whole stream rather than per physical message.
func (c *Context) At(i int) (*Message, error) {
	if err := c.parseAll(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.submessages) {
		return nil, fmt.Errorf("submessage index %d out of range [0, %d)", i, len(c.submessages))
	}
	return c.submessages[i], nil
}

// Describe returns a one-line human-readable summary of every submessage
// in the stream.
func (c *Context) Describe() (string, error) {
	if err := c.parseAll(); err != nil {
		return "", err
	}
	var b bytes.Buffer
	for i, m := range c.submessages {
		fmt.Fprintf(&b, "[%d] %s\n", i, m.String())
	}
	return b.String(), nil
}

// GridShape returns the (Ni, Nj) point counts for submessage i's grid, for
// grid templates that carry explicit per-axis dimensions.
func (c *Context) GridShape(i int) (ni, nj int, err error) {
	m, err := c.At(i)
	if err != nil {
		return 0, 0, err
	}
	if m.Section3 == nil || m.Section3.Grid == nil {
		return 0, 0, fmt.Errorf("submessage %d has no grid definition", i)
	}
	ll, ok := m.Section3.Grid.(*grid.LatLonGrid)
	if !ok {
		return 0, 0, &grid.NotSupportedError{Projection: m.Section3.Grid.String()}
	}
	return int(ll.Ni), int(ll.Nj), nil
}

// IJ returns the (i, j) grid-point indices for submessage i, in the same
// scan order as LatLons(i) and Decoder(i)'s values.
func (c *Context) IJ(i int) (iter.Seq2[int, int], error) {
	m, err := c.At(i)
	if err != nil {
		return nil, err
	}
	if m.Section3 == nil || m.Section3.Grid == nil {
		return nil, fmt.Errorf("submessage %d has no grid definition", i)
	}
	ll, ok := m.Section3.Grid.(*grid.LatLonGrid)
	if !ok {
		return nil, &grid.NotSupportedError{Projection: m.Section3.Grid.String()}
	}
	return ll.IJ(), nil
}

// LatLons returns the lat/lon coordinate sequence for submessage i, in the
// same scan order as Decoder(i)'s values.
func (c *Context) LatLons(i int) (iter.Seq[grid.LatLon], error) {
	m, err := c.At(i)
	if err != nil {
		return nil, err
	}
	return m.Coordinates()
}

// Decoder returns a lazy value sequence for submessage i, combining its
// data representation, bitmap, and packed data exactly as Message.DecodeData
// does, without materializing the whole field up front.
func (c *Context) Decoder(i int) (iter.Seq[float32], error) {
	m, err := c.At(i)
	if err != nil {
		return nil, err
	}
	return m.DecodeData()
}
