// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"fmt"
	"strconv"
	"strings"
)

// Directory is an insertion-ordered collection of typed tag values keyed by
// numeric tag id, plus a list of error messages accumulated while decoding.
// Segment decoders populate one Directory per namespace; per-tag decode
// failures are recorded with AddError rather than aborting the extraction.
type Directory struct {
	// Name identifies the directory, e.g. "IFD0" or "IPTCApplication".
	Name string

	values map[int]any
	order  []int
	errs   []string
}

// NewDirectory returns an empty Directory with the given name.
func NewDirectory(name string) *Directory {
	return &Directory{
		Name:   name,
		values: make(map[int]any),
	}
}

// SetValue stores value under tagType, preserving first-insertion order.
func (d *Directory) SetValue(tagType int, value any) {
	if _, found := d.values[tagType]; !found {
		d.order = append(d.order, tagType)
	}
	d.values[tagType] = value
}

// HasTag reports whether tagType has been set.
func (d *Directory) HasTag(tagType int) bool {
	_, found := d.values[tagType]
	return found
}

// TagIDs returns the tag ids in insertion order.
func (d *Directory) TagIDs() []int {
	return d.order
}

// Value returns the raw value for tagType.
func (d *Directory) Value(tagType int) (any, bool) {
	v, found := d.values[tagType]
	return v, found
}

// AddError records a decode error message.
func (d *Directory) AddError(message string) {
	d.errs = append(d.errs, message)
}

// Errors returns the recorded error messages in order.
func (d *Directory) Errors() []string {
	return d.errs
}

// Integer returns the value of tagType as an int, reporting false when the
// tag is missing or not convertible. Use Int when the absence of the tag is
// an error.
func (d *Directory) Integer(tagType int) (int, bool) {
	v, found := d.values[tagType]
	if !found {
		return 0, false
	}
	i, err := toInt(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Int returns the value of tagType as an int, or an error when the tag is
// missing or not convertible.
func (d *Directory) Int(tagType int) (int, error) {
	v, found := d.values[tagType]
	if !found {
		return 0, fmt.Errorf("imgmeta: %s: tag 0x%04x not set", d.Name, tagType)
	}
	i, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("imgmeta: %s: tag 0x%04x: %w", d.Name, tagType, err)
	}
	return i, nil
}

// String returns the value of tagType rendered as a string, reporting false
// when the tag is missing.
func (d *Directory) String(tagType int) (string, bool) {
	v, found := d.values[tagType]
	if !found {
		return "", false
	}
	return toString(v), true
}

// Float64 returns the value of tagType as a float64, reporting false when
// the tag is missing or not numeric.
func (d *Directory) Float64(tagType int) (float64, bool) {
	v, found := d.values[tagType]
	if !found {
		return 0, false
	}
	switch vv := v.(type) {
	case float64Provider:
		return vv.Float64(), true
	case float64:
		return vv, true
	case float32:
		return float64(vv), true
	default:
		i, err := toInt(v)
		if err != nil {
			return 0, false
		}
		return float64(i), true
	}
}

// Rational returns the value of tagType as a rational number, reporting
// false when the tag is missing or not rational.
func (d *Directory) Rational(tagType int) (Rat[uint32], bool) {
	v, found := d.values[tagType]
	if !found {
		return nil, false
	}
	r, ok := v.(Rat[uint32])
	return r, ok
}

func toInt(v any) (int, error) {
	switch vv := v.(type) {
	case int:
		return vv, nil
	case uint8:
		return int(vv), nil
	case int8:
		return int(vv), nil
	case uint16:
		return int(vv), nil
	case int16:
		return int(vv), nil
	case uint32:
		return int(vv), nil
	case int32:
		return int(vv), nil
	case int64:
		return int(vv), nil
	case uint64:
		return int(vv), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(vv))
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to int", vv)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}
