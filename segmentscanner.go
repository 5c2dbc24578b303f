// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"errors"
	"io"
)

// SegmentFilter selects the segment types a caller wants materialized.
// Segments of other types are length-accounted-for and skipped without
// buffering their payloads.
type SegmentFilter func(SegmentType) bool

// ScanSegments walks a JPEG byte stream and calls handle for each segment in
// file order. Duplicate types are preserved. The scan ends at SOS or EOI, or
// when the source runs out while looking for the next marker. handle may
// return ErrStopWalking to end the scan early without error.
//
// A missing SOI marker or a segment whose declared length runs past the end
// of the source fails the whole scan with an InvalidFormatError: after a
// truncated length field the position of every following segment would be
// unreliable.
func ScanSegments(r io.Reader, filter SegmentFilter, handle func(Segment) error) error {
	sr := NewSequentialReader(r)

	soi, err := sr.Uint16()
	if err != nil {
		return newInvalidFormatErrorf("missing JPEG SOI marker: %s", err)
	}
	if soi != markerSOI {
		return newInvalidFormatErrorf("expected JPEG SOI marker, got 0x%04x", soi)
	}
	if err := emitSegment(Segment{Type: SOI}, filter, handle); err != nil {
		return stopToNil(err)
	}

	for {
		b, err := sr.Uint8()
		if err != nil {
			// Ran out of bytes while looking for a marker. Normal end.
			return nil
		}
		if b != 0xFF {
			continue
		}

		// Skip 0xFF fill bytes; the marker type is the first byte that
		// follows the run.
		typeByte := uint8(0xFF)
		for typeByte == 0xFF {
			typeByte, err = sr.Uint8()
			if err != nil {
				return nil
			}
		}
		if typeByte == 0 {
			// 0xFF00 is a stuffed data byte, not a marker.
			continue
		}

		st := SegmentType(typeByte)

		if !st.hasLengthField() {
			if err := emitSegment(Segment{Type: st}, filter, handle); err != nil {
				return stopToNil(err)
			}
			if st == EOI {
				return nil
			}
			continue
		}

		// The length field includes its own two bytes.
		length, err := sr.Uint16()
		if err != nil {
			return newInvalidFormatErrorf("segment %s: missing length field", st)
		}
		if length < 2 {
			return newInvalidFormatErrorf("segment %s: invalid length %d", st, length)
		}
		payloadLen := int64(length - 2)
		offset := sr.Pos()

		seg := Segment{Type: st, Offset: offset}
		if filter == nil || filter(st) {
			payload, err := sr.Bytes(int(payloadLen))
			if err != nil {
				return newInvalidFormatErrorf("segment %s: length %d exceeds file bounds", st, length)
			}
			seg.Payload = payload
			if err := handle(seg); err != nil {
				return stopToNil(err)
			}
		} else if err := sr.Skip(payloadLen); err != nil {
			return newInvalidFormatErrorf("segment %s: length %d exceeds file bounds", st, length)
		}

		if st == SOS {
			// Entropy-coded image data follows without a length prefix.
			// That ends the metadata-relevant scan.
			return nil
		}
	}
}

// ReadSegments collects the segments of a JPEG byte stream in file order.
// A nil filter keeps every segment.
func ReadSegments(r io.Reader, filter SegmentFilter) ([]Segment, error) {
	var segments []Segment
	err := ScanSegments(r, filter, func(s Segment) error {
		segments = append(segments, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func emitSegment(s Segment, filter SegmentFilter, handle func(Segment) error) error {
	if filter != nil && !filter(s.Type) {
		return nil
	}
	return handle(s)
}

func stopToNil(err error) error {
	if errors.Is(err, ErrStopWalking) {
		return nil
	}
	return err
}
