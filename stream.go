package grib2

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/squallwx/grib2/internal"
	"github.com/squallwx/grib2/section"
)

// scanForGRIBMagic searches r for the next occurrence of the "GRIB" magic
// number at or after from, without requiring the whole stream in memory. It
// restores no stream position on its own; callers seek where they need to
// after a match. Returns found=false if the magic never appears before EOF.
func scanForGRIBMagic(r io.ReadSeeker, from int64) (matchOffset int64, found bool, err error) {
	if _, err := r.Seek(from, io.SeekStart); err != nil {
		return 0, false, err
	}

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	var carry []byte
	pos := from

	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			chunkStart := pos - int64(len(carry))
			window := append(append([]byte(nil), carry...), buf[:n]...)
			if idx := bytes.Index(window, gribMagic); idx != -1 {
				return chunkStart + int64(idx), true, nil
			}
			if len(window) > 3 {
				carry = append(carry[:0:0], window[len(window)-3:]...)
			} else {
				carry = append(carry[:0:0], window...)
			}
			pos += int64(n)
		}
		if readErr == io.EOF {
			return 0, false, nil
		}
		if readErr != nil {
			return 0, false, readErr
		}
	}
}

// FindMessagesInStream scans an io.ReadSeeker for GRIB2 message boundaries.
//
// This function performs a quick scan of the input stream to locate all GRIB2
// messages by finding "GRIB" magic numbers and reading their lengths from
// Section 0. It does not parse the full message content.
//
// The stream position is restored to its original position after scanning.
//
// Returns a slice of MessageBoundary structs indicating where each message
// starts and how long it is. The boundaries preserve the original order of
// messages in the stream.
func FindMessagesInStream(r io.ReadSeeker) ([]MessageBoundary, error) {
	// Save current position
	startPos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to get current position: %w", err)
	}

	// Seek to beginning
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to start: %w", err)
	}

	var boundaries []MessageBoundary
	index := 0
	offset := int64(0)

	// Buffer for reading section 0
	sec0Buf := make([]byte, 16)

	for {
		// Scan forward for the "GRIB" magic number, skipping any leading or
		// between-message bytes (unrelated headers, padding between
		// concatenated messages).
		magicOffset, found, err := scanForGRIBMagic(r, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to scan for GRIB magic at offset %d: %w", offset, err)
		}
		if !found {
			if index == 0 {
				return nil, &InvalidFormatError{
					Offset:  int(offset),
					Message: "GRIB magic number not found before end of stream",
				}
			}
			break
		}
		offset = magicOffset
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to offset %d: %w", offset, err)
		}

		// Try to read Section 0 (16 bytes)
		n, err := io.ReadFull(r, sec0Buf)
		if err == io.EOF {
			// Normal end of file
			break
		}
		if err == io.ErrUnexpectedEOF {
			// Incomplete data at end
			if n > 0 {
				return boundaries, &ParseError{
					Section: -1,
					Offset:  int(offset),
					Message: fmt.Sprintf("incomplete data at end of stream: %d bytes remaining, need at least 16", n),
				}
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read at offset %d: %w", offset, err)
		}

		// Parse Section 0 to get message length
		sec0, err := section.ParseSection0(sec0Buf)
		if err != nil {
			return nil, &ParseError{
				Section:    0,
				Offset:     int(offset),
				Message:    "failed to parse Section 0",
				Underlying: err,
			}
		}

		// Seek to end of message to validate it exists and check end marker
		messageEnd := offset + int64(sec0.MessageLength)

		// Seek to 4 bytes before end to read "7777" marker
		if _, err := r.Seek(messageEnd-4, io.SeekStart); err != nil {
			return nil, &ParseError{
				Section: 0,
				Offset:  int(offset),
				Message: fmt.Sprintf("message length %d exceeds stream size", sec0.MessageLength),
			}
		}

		// Read end marker
		endMarker := make([]byte, 4)
		if _, err := io.ReadFull(r, endMarker); err != nil {
			return nil, &ParseError{
				Section: 0,
				Offset:  int(offset),
				Message: fmt.Sprintf("cannot read end marker for message at offset %d", offset),
			}
		}

		if string(endMarker) != "7777" {
			return nil, &ParseError{
				Section: -1,
				Offset:  int(messageEnd - 4),
				Message: fmt.Sprintf("expected end marker \"7777\", found %q", string(endMarker)),
			}
		}

		// Record this message boundary
		boundaries = append(boundaries, MessageBoundary{
			Start:  int(offset),
			Length: sec0.MessageLength,
			Index:  index,
		})

		// Move to next message
		offset = messageEnd
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			// If we can't seek to the next message, we're at EOF
			break
		}
		index++
	}

	// Restore original position
	if _, err := r.Seek(startPos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to restore stream position: %w", err)
	}

	return boundaries, nil
}

// readMessageAt reads a complete GRIB2 message from the stream at the given offset.
//
// This function seeks to the specified offset, reads the message data into memory,
// and returns it as a byte slice. The stream position after this call is undefined.
func readMessageAt(r io.ReadSeeker, offset int64, length uint64) ([]byte, error) {
	// Seek to message start
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to offset %d: %w", offset, err)
	}

	// Read message data
	msgData := make([]byte, length)
	if _, err := io.ReadFull(r, msgData); err != nil {
		return nil, fmt.Errorf("failed to read message at offset %d: %w", offset, err)
	}

	return msgData, nil
}

// ParseMessagesFromStreamSequential scans an io.ReadSeeker for message
// boundaries, then reads and parses each message in turn.
func ParseMessagesFromStreamSequential(r io.ReadSeeker) ([]*Message, error) {
	boundaries, err := FindMessagesInStream(r)
	if err != nil {
		return nil, fmt.Errorf("failed to find message boundaries: %w", err)
	}

	var messages []*Message
	for _, b := range boundaries {
		msgData, err := readMessageAt(r, int64(b.Start), b.Length)
		if err != nil {
			return nil, fmt.Errorf("failed to read message %d: %w", b.Index, err)
		}
		msgs, err := ParseMessage(msgData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse message %d at offset %d: %w", b.Index, b.Start, err)
		}
		messages = append(messages, msgs...)
	}
	return messages, nil
}

// ParseMessagesFromStreamSequentialSkipErrors is like
// ParseMessagesFromStreamSequential but skips any message that fails to
// read or parse instead of stopping.
func ParseMessagesFromStreamSequentialSkipErrors(r io.ReadSeeker) ([]*Message, error) {
	boundaries, err := FindMessagesInStream(r)
	if err != nil {
		return nil, fmt.Errorf("failed to find message boundaries: %w", err)
	}

	messages := make([]*Message, 0, len(boundaries))
	for _, b := range boundaries {
		msgData, err := readMessageAt(r, int64(b.Start), b.Length)
		if err != nil {
			continue
		}
		msgs, err := ParseMessage(msgData)
		if err != nil {
			continue
		}
		messages = append(messages, msgs...)
	}
	return messages, nil
}

// ParseMessagesFromStreamWithWorkers scans an io.ReadSeeker for message
// boundaries, reads each message into memory sequentially (io.ReadSeeker
// is not safe for concurrent reads), then parses the read messages
// concurrently using a worker pool.
func ParseMessagesFromStreamWithWorkers(r io.ReadSeeker, workers int) ([]*Message, error) {
	return ParseMessagesFromStreamWithContext(context.Background(), r, workers)
}

// ParseMessagesFromStreamWithContext is ParseMessagesFromStreamWithWorkers
// with cancellation support.
func ParseMessagesFromStreamWithContext(ctx context.Context, r io.ReadSeeker, workers int) ([]*Message, error) {
	boundaries, err := FindMessagesInStream(r)
	if err != nil {
		return nil, fmt.Errorf("failed to find message boundaries: %w", err)
	}
	if len(boundaries) == 0 {
		return []*Message{}, nil
	}

	// Reading must happen sequentially against the shared ReadSeeker;
	// only parsing is parallelized.
	rawMessages := make([][]byte, len(boundaries))
	for i, b := range boundaries {
		msgData, err := readMessageAt(r, int64(b.Start), b.Length)
		if err != nil {
			return nil, fmt.Errorf("failed to read message %d: %w", b.Index, err)
		}
		rawMessages[i] = msgData
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perMessage := make([][]*Message, len(rawMessages))
	var mu sync.Mutex
	pool := internal.NewWorkerPool(ctx, workers)

	for i := range rawMessages {
		idx := i
		err := pool.Submit(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			msgs, err := ParseMessage(rawMessages[idx])
			if err != nil {
				return fmt.Errorf("failed to parse message at offset %d: %w", boundaries[idx].Start, err)
			}
			mu.Lock()
			perMessage[idx] = msgs
			mu.Unlock()
			return nil
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to submit task: %w", err)
		}
	}

	if err := pool.Wait(); err != nil {
		return nil, err
	}

	var messages []*Message
	for _, msgs := range perMessage {
		messages = append(messages, msgs...)
	}
	return messages, nil
}
