// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	iptcCodedCharacterSet = 90
	iptcMetaDataBlockID   = 0x0404

	iptcRecordEnvelope    = 1
	iptcRecordApplication = 2
)

var iptcRecordNames = map[uint8]string{
	1:   "IPTCEnvelope",
	2:   "IPTCApplication",
	3:   "IPTCNewsPhoto",
	7:   "IPTCPreObjectData",
	8:   "IPTCObjectData",
	9:   "IPTCPostObjectData",
	240: "IPTCFotoStation",
}

func getIptcRecordName(record uint8) string {
	name, ok := iptcRecordNames[record]
	if !ok {
		return fmt.Sprintf("IPTCUnknownRecord%d", record)
	}
	return name
}

type vcIPTC struct{}

func (c *vcIPTC) convertDateString(byteOrder binary.ByteOrder, v any) any {
	s := toString(v)
	// 20211020 => 2021:10:20
	if len(s) == 8 {
		return fmt.Sprintf("%s:%s:%s", s[:4], s[4:6], s[6:])
	}
	// 2015-01-22 => 2015:01:22
	if len(s) == 10 {
		return fmt.Sprintf("%s:%s:%s", s[:4], s[5:7], s[8:])
	}
	return s
}

func (c *vcIPTC) convertTime(byteOrder binary.ByteOrder, v any) any {
	s := toString(v)
	// 111116 => 11:11:16
	if len(s) == 6 {
		return fmt.Sprintf("%s:%s:%s", s[:2], s[2:4], s[4:])
	}
	// 130444+1000 => 13:04:44+10:00
	if len(s) == 11 {
		return fmt.Sprintf("%s:%s:%s%s:%s", s[:2], s[2:4], s[4:6], s[6:9], s[9:])
	}
	return s
}

var (
	iptcConverters        = &vcIPTC{}
	iptcValueConverterMap = map[string]valueConverter{
		"DateCreated":         iptcConverters.convertDateString,
		"ReleaseDate":         iptcConverters.convertDateString,
		"DigitalCreationDate": iptcConverters.convertDateString,
		"DigitalCreationTime": iptcConverters.convertTime,
		"TimeCreated":         iptcConverters.convertTime,
		"ReleaseTime":         iptcConverters.convertTime,
		"ProgramVersion": func(byteOrder binary.ByteOrder, v any) any {
			s := toString(v)
			s = strings.TrimSuffix(s, ".0")
			return s
		},
	}
)

func newMetaDecoderIPTC(data []byte, opts Options) *metaDecoderIPTC {
	return &metaDecoderIPTC{
		r:                      NewSequentialReader(bytes.NewReader(data)),
		iso88591CharsetDecoder: charmap.ISO8859_1.NewDecoder(),
		dirByName:              make(map[string]*Directory),
		opts:                   opts,
	}
}

type metaDecoderIPTC struct {
	r *SequentialReader

	charset                string
	iso88591CharsetDecoder *encoding.Decoder

	dirByName map[string]*Directory
	dirs      []*Directory

	opts Options
}

func (e *metaDecoderIPTC) directory(record uint8) *Directory {
	name := getIptcRecordName(record)
	if d, found := e.dirByName[name]; found {
		return d
	}
	d := NewDirectory(name)
	e.dirByName[name] = d
	e.dirs = append(e.dirs, d)
	return d
}

// decodeBlocks decodes the IPTC data from Photoshop resource blocks
// separated by 8BIM. This assumes a reader that starts out at 8BIM
// (no headers).
func (e *metaDecoderIPTC) decodeBlocks() error {
	stringSlices := make(map[TagInfo][]string)

	decodeBlock := func() error {
		blockType, err := e.r.String(4)
		if err != nil || blockType != "8BIM" {
			return errStop
		}

		identifier, err := e.r.Uint16()
		if err != nil {
			return errStop
		}
		isNotMeta := identifier != iptcMetaDataBlockID

		// Pascal string resource name, padded to an even byte count.
		nameLength, err := e.r.Uint8()
		if err != nil {
			return errStop
		}
		if nameLength == 0 {
			nameLength = 2
		} else if nameLength%2 == 1 {
			nameLength++
		}
		if err := e.r.Skip(int64(nameLength - 1)); err != nil {
			return errStop
		}

		dataSize, err := e.r.Uint32()
		if err != nil {
			return errStop
		}

		if isNotMeta {
			if !e.r.TrySkip(int64(dataSize)) {
				return errStop
			}
			return nil
		}

		if dataSize%2 != 0 {
			defer e.r.TrySkip(1)
		}

		for {
			marker, err := e.r.Uint8()
			if err != nil || marker != 0x1C {
				return errStop
			}
			if err := e.decodeRecord(stringSlices); err != nil {
				return err
			}
		}
	}

	for {
		if err := decodeBlock(); err != nil {
			if err == errStop {
				break
			}
			return err
		}
	}

	return e.handleStringSlices(stringSlices)
}

// decodeRecords decodes bare IPTC records delimited by 0x1C,
// without the Photoshop block framing.
func (e *metaDecoderIPTC) decodeRecords() error {
	stringSlices := make(map[TagInfo][]string)
	for {
		marker, err := e.r.Uint8()
		if err != nil || marker != 0x1C {
			break
		}
		if err := e.decodeRecord(stringSlices); err != nil {
			return err
		}
	}
	return e.handleStringSlices(stringSlices)
}

func (e *metaDecoderIPTC) decodeRecord(stringSlices map[TagInfo][]string) error {
	recordType, err := e.r.Uint8()
	if err != nil {
		return err
	}
	datasetNumber, err := e.r.Uint8()
	if err != nil {
		return err
	}
	recordSize, err := e.r.Uint16()
	if err != nil {
		return err
	}

	recordDef, defFound := getIptcRecordFieldDef(recordType, datasetNumber)
	if !defFound {
		// Assume a non repeatable string.
		recordDef = iptcField{
			name:   fmt.Sprintf("%s%d", UnknownPrefix, datasetNumber),
			format: "string",
		}
	}

	dir := e.directory(recordType)

	ti := TagInfo{
		Source:    IPTC,
		Tag:       recordDef.name,
		Namespace: dir.Name,
	}

	if uint32(recordSize) > e.opts.LimitTagSize || !e.opts.ShouldHandleTag(ti) {
		if err := e.r.Skip(int64(recordSize)); err != nil {
			return err
		}
		return nil
	}

	var v any
	switch recordDef.format {
	case "string":
		b, err := e.r.Bytes(int(recordSize))
		if err != nil {
			return err
		}
		v = b
		if e.charset == "" || e.charset == characterSetISO88591 {
			v, _ = e.iso88591CharsetDecoder.Bytes(b)
		}
	case "uint32":
		if v, err = e.r.Uint32(); err != nil {
			return err
		}
	case "short":
		if v, err = e.r.Uint16(); err != nil {
			return err
		}
	case "byte":
		if v, err = e.r.Uint8(); err != nil {
			return err
		}
	default:
		dir.AddError(fmt.Sprintf("unsupported IPTC format %q", recordDef.format))
		return e.r.Skip(int64(recordSize))
	}

	if recordType == iptcRecordEnvelope && datasetNumber == iptcCodedCharacterSet {
		if b, ok := v.([]byte); ok {
			e.charset = resolveCodedCharacterSet(b)
		}
		v = e.charset
	}

	if convert, found := iptcValueConverterMap[recordDef.name]; found {
		v = convert(e.r.ByteOrder(), v)
	}

	if b, ok := v.([]byte); ok {
		v = strings.TrimSpace(string(trimBytesNulls(b)))
	}

	tagType := int(recordType)<<8 | int(datasetNumber)

	if recordDef.repeatable {
		stringSlices[ti] = append(stringSlices[ti], toString(v))
		dir.SetValue(tagType, stringSlices[ti])
		return nil
	}

	dir.SetValue(tagType, v)
	ti.Value = v
	if err := e.opts.HandleTag(ti); err != nil {
		return &handlerAbort{err}
	}
	return nil
}

func (e *metaDecoderIPTC) handleStringSlices(m map[TagInfo][]string) error {
	for ti, values := range m {
		if len(values) == 1 {
			ti.Value = values[0]
		} else {
			ti.Value = values
		}
		if err := e.opts.HandleTag(ti); err != nil {
			return &handlerAbort{err}
		}
	}
	return nil
}

const (
	characterSetUTF8     = "UTF-8"
	characterSetISO88591 = "ISO-8859-1"
)

// resolveCodedCharacterSet resolves the coded character set from the IPTC
// data to either UTF-8 or ISO-8859-1, or an empty string if it cannot be
// resolved.
func resolveCodedCharacterSet(b []byte) string {
	const (
		esc           = 0x1B
		percent       = 0x25
		latinCapitalG = 0x47
		dot           = 0x2E
		latinCapitalA = 0x41
		minus         = 0x2D
	)

	if len(b) > 2 && b[0] == esc && b[1] == percent && b[2] == latinCapitalG {
		return characterSetUTF8
	}

	if len(b) > 2 && b[0] == esc && b[1] == dot && b[2] == latinCapitalA {
		return characterSetISO88591
	}

	if len(b) > 2 && b[0] == esc && b[1] == minus && b[2] == latinCapitalA {
		return characterSetISO88591
	}

	return ""
}
