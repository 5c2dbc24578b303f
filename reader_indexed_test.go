// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestIndexedReaderReads(t *testing.T) {
	c := qt.New(t)

	r := NewIndexedReader([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})

	v8, err := r.Uint8At(3)
	c.Assert(err, qt.IsNil)
	c.Assert(v8, qt.Equals, uint8(0x03))

	v16, err := r.Uint16At(2)
	c.Assert(err, qt.IsNil)
	c.Assert(v16, qt.Equals, uint16(0x0203))

	v32, err := r.Uint32At(0)
	c.Assert(err, qt.IsNil)
	c.Assert(v32, qt.Equals, uint32(0x00010203))

	v64, err := r.Uint64At(0)
	c.Assert(err, qt.IsNil)
	c.Assert(v64, qt.Equals, uint64(0x0001020304050607))

	// Reads take no cursor; the same index decodes the same value again.
	v32, err = r.Uint32At(0)
	c.Assert(err, qt.IsNil)
	c.Assert(v32, qt.Equals, uint32(0x00010203))

	r.SetByteOrder(binary.LittleEndian)
	v32, err = r.Uint32At(0)
	c.Assert(err, qt.IsNil)
	c.Assert(v32, qt.Equals, uint32(0x03020100))

	b, err := r.BytesAt(2, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(b, qt.DeepEquals, []byte{0x02, 0x03, 0x04})

	c.Assert(r.Len(), qt.Equals, int64(8))
}

func TestIndexedReaderBounds(t *testing.T) {
	c := qt.New(t)

	r := NewIndexedReader(make([]byte, 10))

	_, err := r.Uint8At(-1)
	c.Assert(err.Error(), qt.Equals, "Attempt to read from buffer using a negative index (-1)")

	_, err = r.BytesAt(0, -2)
	c.Assert(err.Error(), qt.Equals, "Number of requested bytes cannot be negative (-2)")

	_, err = r.BytesAt(5, math.MaxInt32)
	c.Assert(err.Error(), qt.Equals, "Number of requested bytes summed with starting index exceed maximum range of signed 32 bit integers (requested index: 5, requested count: 2147483647)")

	_, err = r.BytesAt(8, 4)
	c.Assert(err.Error(), qt.Equals, "Attempt to read from beyond end of underlying data source (requested index: 8, requested count: 4, max index: 9)")

	_, err = r.Uint32At(8)
	c.Assert(err.Error(), qt.Equals, "Attempt to read from beyond end of underlying data source (requested index: 8, requested count: 4, max index: 9)")

	var bbe *BufferBoundsError
	c.Assert(errors.As(err, &bbe), qt.IsTrue)
	c.Assert(bbe.Index, qt.Equals, int64(8))
	c.Assert(bbe.Count, qt.Equals, int64(4))
	c.Assert(bbe.MaxIndex, qt.Equals, int64(9))

	// Empty buffer reports max index -1.
	r = NewIndexedReader(nil)
	_, err = r.Uint8At(0)
	c.Assert(err.Error(), qt.Equals, "Attempt to read from beyond end of underlying data source (requested index: 0, requested count: 1, max index: -1)")
}

func TestIndexedReaderFloats(t *testing.T) {
	c := qt.New(t)

	r := NewIndexedReader([]byte{0x7F, 0xC0, 0x00, 0x00})
	f32, err := r.Float32At(0)
	c.Assert(err, qt.IsNil)
	c.Assert(math.IsNaN(float64(f32)), qt.IsTrue)
	c.Assert(math.Float32bits(f32), qt.Equals, uint32(0x7FC00000))
}

func TestIndexedReaderStrings(t *testing.T) {
	c := qt.New(t)

	r := NewIndexedReader([]byte{'A', 'B', 0x00, 'C'})

	s, err := r.StringAt(0, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.Equals, "AB\x00C")

	s, err = r.NullTerminatedStringAt(0, 10)
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.Equals, "AB")

	s, err = r.NullTerminatedStringAt(3, 10)
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.Equals, "C")

	// The indexed variant keeps no cursor and consumes nothing: the same
	// window decodes the same value again, and the NUL is still in place.
	s, err = r.NullTerminatedStringAt(0, 10)
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.Equals, "AB")
	nul, err := r.Uint8At(2)
	c.Assert(err, qt.IsNil)
	c.Assert(nul, qt.Equals, uint8(0x00))

	_, err = r.NullTerminatedStringAt(-1, 10)
	c.Assert(err.Error(), qt.Equals, "Attempt to read from buffer using a negative index (-1)")
}
