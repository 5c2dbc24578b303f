// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import "fmt"

// SegmentType identifies a JPEG segment by its marker byte.
type SegmentType uint8

// The JPEG marker bytes.
const (
	TEM   SegmentType = 0x01
	SOF0  SegmentType = 0xC0 // SOFn = SOF0+n, n = 0-15 excluding 4, 8 and 12
	DHT   SegmentType = 0xC4
	JPG   SegmentType = 0xC8
	DAC   SegmentType = 0xCC
	RST0  SegmentType = 0xD0 // RSTn = RST0+n, n = 0-7
	SOI   SegmentType = 0xD8
	EOI   SegmentType = 0xD9
	SOS   SegmentType = 0xDA
	DQT   SegmentType = 0xDB
	DNL   SegmentType = 0xDC
	DRI   SegmentType = 0xDD
	DHP   SegmentType = 0xDE
	EXP   SegmentType = 0xDF
	APP0  SegmentType = 0xE0 // APPn = APP0+n, n = 0-15
	APP1  SegmentType = 0xE1
	APP2  SegmentType = 0xE2
	APP13 SegmentType = 0xED
	APP14 SegmentType = 0xEE
	COM   SegmentType = 0xFE
)

var (
	segmentTypeNames       [256]string
	segmentTypeHasMetadata [256]bool
	segmentTypeNoPayload   [256]bool
)

func init() {
	segmentTypeNames[TEM] = "TEM"
	segmentTypeNames[DHT] = "DHT"
	segmentTypeNames[JPG] = "JPG"
	segmentTypeNames[DAC] = "DAC"
	segmentTypeNames[SOI] = "SOI"
	segmentTypeNames[EOI] = "EOI"
	segmentTypeNames[SOS] = "SOS"
	segmentTypeNames[DQT] = "DQT"
	segmentTypeNames[DNL] = "DNL"
	segmentTypeNames[DRI] = "DRI"
	segmentTypeNames[DHP] = "DHP"
	segmentTypeNames[EXP] = "EXP"
	segmentTypeNames[COM] = "COM"

	for i := 0; i <= 0xF; i++ {
		if i == 4 || i == 8 || i == 12 {
			// DHT, JPG and DAC, not frame markers.
			continue
		}
		segmentTypeNames[int(SOF0)+i] = fmt.Sprintf("SOF%d", i)
		segmentTypeHasMetadata[int(SOF0)+i] = true
	}
	for i := 0; i <= 7; i++ {
		segmentTypeNames[int(RST0)+i] = fmt.Sprintf("RST%d", i)
	}
	for i := 0; i <= 0xF; i++ {
		segmentTypeNames[int(APP0)+i] = fmt.Sprintf("APP%d", i)
		segmentTypeHasMetadata[int(APP0)+i] = true
	}

	segmentTypeHasMetadata[COM] = true

	// Markers not followed by a length field.
	for _, t := range []SegmentType{TEM, SOI, EOI} {
		segmentTypeNoPayload[t] = true
	}
	for i := 0; i <= 7; i++ {
		segmentTypeNoPayload[int(RST0)+i] = true
	}
}

// String returns the conventional marker name, or a hex form for reserved or
// unknown marker bytes.
func (t SegmentType) String() string {
	if name := segmentTypeNames[t]; name != "" {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%.2X", uint8(t))
}

// Known reports whether t is one of the named JPEG markers.
func (t SegmentType) Known() bool {
	return segmentTypeNames[t] != ""
}

// CanContainMetadata reports whether segments of this type may carry
// metadata of interest (the APPn application segments, the SOFn frame
// headers and COM comments).
func (t SegmentType) CanContainMetadata() bool {
	return segmentTypeHasMetadata[t]
}

// hasLengthField reports whether the marker is followed by a two byte
// big-endian length field.
func (t SegmentType) hasLengthField() bool {
	return !segmentTypeNoPayload[t]
}

// Segment is one chunk of a JPEG container: the marker type plus the payload
// bytes that followed the marker and, when present, the length field.
type Segment struct {
	// Type is the marker byte.
	Type SegmentType

	// Offset is the absolute offset of the payload in the source.
	Offset int64

	// Payload holds the segment body, excluding the marker and length bytes.
	// It is nil for markers without a length field.
	Payload []byte
}

func (s Segment) String() string {
	return fmt.Sprintf("%s[%d bytes at %d]", s.Type, len(s.Payload), s.Offset)
}
