// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"encoding/binary"
	"math"
)

// IndexedReader is a random-access, endian-aware reader over an in-memory
// buffer. Every call takes an explicit index and no cursor state is kept, so
// an IndexedReader may be shared read-only across goroutines as long as the
// byte order is not changed concurrently.
type IndexedReader struct {
	data      []byte
	byteOrder binary.ByteOrder
}

// NewIndexedReader returns an IndexedReader over data.
// The byte order defaults to big-endian ("Motorola" order).
func NewIndexedReader(data []byte) *IndexedReader {
	return &IndexedReader{
		data:      data,
		byteOrder: binary.BigEndian,
	}
}

// SetByteOrder sets the byte order used by subsequent multi-byte reads.
func (r *IndexedReader) SetByteOrder(byteOrder binary.ByteOrder) {
	r.byteOrder = byteOrder
}

// ByteOrder returns the current byte order.
func (r *IndexedReader) ByteOrder() binary.ByteOrder {
	return r.byteOrder
}

// IsBigEndian reports whether the reader currently decodes in big-endian
// (Motorola) order.
func (r *IndexedReader) IsBigEndian() bool {
	return r.byteOrder == binary.BigEndian
}

// Len returns the length of the underlying buffer.
func (r *IndexedReader) Len() int64 {
	return int64(len(r.data))
}

// validate checks that count bytes can be read starting at index.
// The four failure modes keep distinct messages so that a misbehaving caller
// can be told apart from a truncated source.
func (r *IndexedReader) validate(index, count int64) error {
	switch {
	case index < 0:
		return newNegativeIndexError(index, count)
	case count < 0:
		return newNegativeCountError(index, count)
	case index+count > math.MaxInt32 || index+count < 0:
		return newIndexOverflowError(index, count)
	case index+count > int64(len(r.data)):
		return newPastEndOfDataError(index, count, int64(len(r.data)))
	}
	return nil
}

// Uint8At reads one byte at index.
func (r *IndexedReader) Uint8At(index int64) (uint8, error) {
	if err := r.validate(index, 1); err != nil {
		return 0, err
	}
	return r.data[index], nil
}

// Int8At reads one byte at index.
func (r *IndexedReader) Int8At(index int64) (int8, error) {
	v, err := r.Uint8At(index)
	return int8(v), err
}

// Uint16At reads two bytes at index in the current byte order.
func (r *IndexedReader) Uint16At(index int64) (uint16, error) {
	if err := r.validate(index, 2); err != nil {
		return 0, err
	}
	return r.byteOrder.Uint16(r.data[index:]), nil
}

// Int16At reads two bytes at index in the current byte order.
func (r *IndexedReader) Int16At(index int64) (int16, error) {
	v, err := r.Uint16At(index)
	return int16(v), err
}

// Uint32At reads four bytes at index in the current byte order.
func (r *IndexedReader) Uint32At(index int64) (uint32, error) {
	if err := r.validate(index, 4); err != nil {
		return 0, err
	}
	return r.byteOrder.Uint32(r.data[index:]), nil
}

// Int32At reads four bytes at index in the current byte order.
func (r *IndexedReader) Int32At(index int64) (int32, error) {
	v, err := r.Uint32At(index)
	return int32(v), err
}

// Uint64At reads eight bytes at index in the current byte order.
func (r *IndexedReader) Uint64At(index int64) (uint64, error) {
	if err := r.validate(index, 8); err != nil {
		return 0, err
	}
	return r.byteOrder.Uint64(r.data[index:]), nil
}

// Int64At reads eight bytes at index in the current byte order.
func (r *IndexedReader) Int64At(index int64) (int64, error) {
	v, err := r.Uint64At(index)
	return int64(v), err
}

// Float32At reads four bytes at index as an IEEE-754 bit pattern.
func (r *IndexedReader) Float32At(index int64) (float32, error) {
	v, err := r.Uint32At(index)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Float64At reads eight bytes at index as an IEEE-754 bit pattern.
func (r *IndexedReader) Float64At(index int64) (float64, error) {
	v, err := r.Uint64At(index)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// BytesAt reads count bytes at index into a fresh slice.
func (r *IndexedReader) BytesAt(index, count int64) ([]byte, error) {
	if err := r.validate(index, count); err != nil {
		return nil, err
	}
	out := make([]byte, count)
	copy(out, r.data[index:])
	return out, nil
}

// StringAt reads count bytes at index as a string.
func (r *IndexedReader) StringAt(index, count int64) (string, error) {
	if err := r.validate(index, count); err != nil {
		return "", err
	}
	return string(r.data[index : index+count]), nil
}

// NullTerminatedStringAt reads at most maxLength bytes starting at index and
// returns the text up to, but not including, the first NUL byte. The window
// is clamped to the end of the buffer.
func (r *IndexedReader) NullTerminatedStringAt(index, maxLength int64) (string, error) {
	if err := r.validate(index, 0); err != nil {
		return "", err
	}
	if maxLength < 0 {
		return "", newNegativeCountError(index, maxLength)
	}
	end := index + maxLength
	if end > int64(len(r.data)) {
		end = int64(len(r.data))
	}
	b := r.data[index:end]
	for i, v := range b {
		if v == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}
