// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDirectorySetValue(t *testing.T) {
	c := qt.New(t)

	d := NewDirectory("IFD0")
	c.Assert(d.Name, qt.Equals, "IFD0")
	c.Assert(d.HasTag(0x010F), qt.IsFalse)

	d.SetValue(0x0112, uint16(6))
	d.SetValue(0x010F, "GoCam")
	d.SetValue(0x0112, uint16(1)) // overwrite keeps first-insertion position

	c.Assert(d.HasTag(0x0112), qt.IsTrue)
	c.Assert(d.TagIDs(), qt.DeepEquals, []int{0x0112, 0x010F})

	v, ok := d.Value(0x0112)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, uint16(1))

	_, ok = d.Value(0x9999)
	c.Assert(ok, qt.IsFalse)
}

func TestDirectoryAccessors(t *testing.T) {
	c := qt.New(t)

	d := NewDirectory("ExifIFD")
	d.SetValue(0x0112, uint16(6))
	d.SetValue(0x010F, "GoCam")
	d.SetValue(0x011A, mustRat[uint32](300, 1))
	d.SetValue(0x9201, 2.5)

	// Integer reports absence as a bool.
	i, ok := d.Integer(0x0112)
	c.Assert(ok, qt.IsTrue)
	c.Assert(i, qt.Equals, 6)
	_, ok = d.Integer(0x1234)
	c.Assert(ok, qt.IsFalse)
	_, ok = d.Integer(0x9201) // float64 is not an int
	c.Assert(ok, qt.IsFalse)

	// Int reports absence as an error.
	i, err := d.Int(0x0112)
	c.Assert(err, qt.IsNil)
	c.Assert(i, qt.Equals, 6)
	_, err = d.Int(0x1234)
	c.Assert(err, qt.ErrorMatches, `imgmeta: ExifIFD: tag 0x1234 not set`)

	s, ok := d.String(0x010F)
	c.Assert(ok, qt.IsTrue)
	c.Assert(s, qt.Equals, "GoCam")

	f, ok := d.Float64(0x011A)
	c.Assert(ok, qt.IsTrue)
	c.Assert(f, qt.Equals, 300.0)
	f, ok = d.Float64(0x9201)
	c.Assert(ok, qt.IsTrue)
	c.Assert(f, qt.Equals, 2.5)

	r, ok := d.Rational(0x011A)
	c.Assert(ok, qt.IsTrue)
	c.Assert(r.Num(), qt.Equals, uint32(300))
	c.Assert(r.Den(), qt.Equals, uint32(1))
	_, ok = d.Rational(0x010F)
	c.Assert(ok, qt.IsFalse)
}

func TestDirectoryErrors(t *testing.T) {
	c := qt.New(t)

	d := NewDirectory("IPTCApplication")
	c.Assert(d.Errors(), qt.HasLen, 0)

	d.AddError("record 2:25: short read")
	d.AddError("record 2:90: unknown character set")

	c.Assert(d.Errors(), qt.DeepEquals, []string{
		"record 2:25: short read",
		"record 2:90: unknown character set",
	})
}

func TestToInt(t *testing.T) {
	c := qt.New(t)

	for _, v := range []any{int(7), uint8(7), int8(7), uint16(7), int16(7), uint32(7), int32(7), int64(7), uint64(7), " 7 "} {
		i, err := toInt(v)
		c.Assert(err, qt.IsNil)
		c.Assert(i, qt.Equals, 7, qt.Commentf("%T", v))
	}

	_, err := toInt("not a number")
	c.Assert(err, qt.ErrorMatches, `cannot convert "not a number" to int`)
	_, err = toInt([]int{1})
	c.Assert(err, qt.ErrorMatches, `cannot convert \[\]int to int`)
}
