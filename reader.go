// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// SequentialReader is a forward-only, endian-aware cursor over an io.Reader.
// Multi-byte reads honour the current byte order; reads are all-or-nothing
// and fail with ErrEndOfData when the source cannot satisfy the full width.
//
// Note that this is not thread safe.
type SequentialReader struct {
	r         io.Reader
	byteOrder binary.ByteOrder
	pos       int64

	buf []byte
}

// NewSequentialReader returns a SequentialReader over r.
// The byte order defaults to big-endian ("Motorola" order).
func NewSequentialReader(r io.Reader) *SequentialReader {
	return &SequentialReader{
		r:         r,
		byteOrder: binary.BigEndian,
	}
}

// SetByteOrder sets the byte order used by subsequent multi-byte reads.
func (s *SequentialReader) SetByteOrder(byteOrder binary.ByteOrder) {
	s.byteOrder = byteOrder
}

// ByteOrder returns the current byte order.
func (s *SequentialReader) ByteOrder() binary.ByteOrder {
	return s.byteOrder
}

// IsBigEndian reports whether the reader currently decodes in big-endian
// (Motorola) order.
func (s *SequentialReader) IsBigEndian() bool {
	return s.byteOrder == binary.BigEndian
}

// Pos returns the number of bytes consumed so far.
func (s *SequentialReader) Pos() int64 {
	return s.pos
}

func (s *SequentialReader) allocateBuf(length int) {
	if length > cap(s.buf) {
		s.buf = make([]byte, length)
	}
}

// maxReadChunk caps per-read allocations; larger requests read chunk-wise so
// a lying length field cannot force a giant allocation before the source runs
// dry.
const maxReadChunk = 1 << 20

// readN fills the internal buffer with exactly n bytes.
// The returned slice is only valid until the next read.
func (s *SequentialReader) readN(n int) ([]byte, error) {
	if n < 0 {
		// A negative request and an overflow-sized request both report as
		// plain end of data for the sequential reader.
		return nil, ErrEndOfData
	}
	if s.pos+int64(n) < 0 || s.pos+int64(n) > math.MaxInt32 {
		return nil, ErrEndOfData
	}
	if n > maxReadChunk {
		return s.readLarge(n)
	}
	s.allocateBuf(n)
	if _, err := io.ReadFull(s.r, s.buf[:n]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrEndOfData
		}
		return nil, err
	}
	s.pos += int64(n)
	return s.buf[:n], nil
}

func (s *SequentialReader) readLarge(n int) ([]byte, error) {
	s.allocateBuf(maxReadChunk)
	out := make([]byte, 0, maxReadChunk)
	for remaining := n; remaining > 0; {
		m := remaining
		if m > maxReadChunk {
			m = maxReadChunk
		}
		if _, err := io.ReadFull(s.r, s.buf[:m]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, ErrEndOfData
			}
			return nil, err
		}
		out = append(out, s.buf[:m]...)
		remaining -= m
	}
	s.pos += int64(n)
	return out, nil
}

// Uint8 consumes one byte.
func (s *SequentialReader) Uint8() (uint8, error) {
	b, err := s.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 consumes one byte.
func (s *SequentialReader) Int8() (int8, error) {
	v, err := s.Uint8()
	return int8(v), err
}

// Uint16 consumes two bytes in the current byte order.
func (s *SequentialReader) Uint16() (uint16, error) {
	b, err := s.readN(2)
	if err != nil {
		return 0, err
	}
	return s.byteOrder.Uint16(b), nil
}

// Int16 consumes two bytes in the current byte order.
func (s *SequentialReader) Int16() (int16, error) {
	v, err := s.Uint16()
	return int16(v), err
}

// Uint32 consumes four bytes in the current byte order.
func (s *SequentialReader) Uint32() (uint32, error) {
	b, err := s.readN(4)
	if err != nil {
		return 0, err
	}
	return s.byteOrder.Uint32(b), nil
}

// Int32 consumes four bytes in the current byte order.
func (s *SequentialReader) Int32() (int32, error) {
	v, err := s.Uint32()
	return int32(v), err
}

// Uint64 consumes eight bytes in the current byte order.
func (s *SequentialReader) Uint64() (uint64, error) {
	b, err := s.readN(8)
	if err != nil {
		return 0, err
	}
	return s.byteOrder.Uint64(b), nil
}

// Int64 consumes eight bytes in the current byte order.
func (s *SequentialReader) Int64() (int64, error) {
	v, err := s.Uint64()
	return int64(v), err
}

// Float32 consumes four bytes and reinterprets them as an IEEE-754 bit
// pattern. NaN and Inf patterns are preserved exactly.
func (s *SequentialReader) Float32() (float32, error) {
	v, err := s.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Float64 consumes eight bytes and reinterprets them as an IEEE-754 bit
// pattern. NaN and Inf patterns are preserved exactly.
func (s *SequentialReader) Float64() (float64, error) {
	v, err := s.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bytes consumes exactly n bytes and returns them in a fresh slice.
func (s *SequentialReader) Bytes(n int) ([]byte, error) {
	b, err := s.readN(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// String consumes exactly n bytes and returns them as a string.
func (s *SequentialReader) String(n int) (string, error) {
	b, err := s.readN(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NullTerminatedString reads up to maxLength bytes and returns the text up
// to, but not including, the first NUL byte. The NUL byte itself is consumed
// when present; bytes after it are left in the stream. When no NUL occurs
// within the window, all maxLength bytes are returned.
func (s *SequentialReader) NullTerminatedString(maxLength int) (string, error) {
	var b []byte
	for i := 0; i < maxLength; i++ {
		v, err := s.Uint8()
		if err != nil {
			return "", err
		}
		if v == 0 {
			break
		}
		b = append(b, v)
	}
	return string(b), nil
}

// Skip advances the cursor by n bytes. It fails with ErrEndOfData when the
// source is exhausted before the skip is satisfied.
func (s *SequentialReader) Skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("imgmeta: skip count cannot be negative (%d)", n)
	}
	skipped, err := io.CopyN(io.Discard, s.r, n)
	s.pos += skipped
	if err != nil {
		if err == io.EOF {
			return ErrEndOfData
		}
		return err
	}
	return nil
}

// TrySkip advances the cursor by up to n bytes and reports whether the full
// skip was satisfied. It never returns an error; when fewer than n bytes
// remain it advances to end of data and returns false.
func (s *SequentialReader) TrySkip(n int64) bool {
	if n < 0 {
		return false
	}
	skipped, err := io.CopyN(io.Discard, s.r, n)
	s.pos += skipped
	return err == nil && skipped == n
}
