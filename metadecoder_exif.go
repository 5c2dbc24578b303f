package imgmeta

import (
	"encoding/binary"
	"fmt"
	"math"
	"path"
	"strings"
)

const (
	markerSOI             = 0xffd8
	byteOrderBigEndian    = 0x4d4d
	byteOrderLittleEndian = 0x4949
	tiffMagic             = 42

	tagNameThumbnailOffset = "ThumbnailOffset"
)

// exifType represents the basic TIFF tag data types.
type exifType uint16

const (
	exifTypeUnsignedByte  exifType = 1
	exifTypeUnsignedASCII exifType = 2
	exifTypeUnsignedShort exifType = 3
	exifTypeUnsignedLong  exifType = 4
	exifTypeUnsignedRat   exifType = 5
	exifTypeSignedByte    exifType = 6
	exifTypeUndef         exifType = 7
	exifTypeSignedShort   exifType = 8
	exifTypeSignedLong    exifType = 9
	exifTypeSignedRat     exifType = 10
	exifTypeSignedFloat   exifType = 11
	exifTypeSignedDouble  exifType = 12
)

// Size in bytes of each type.
var exifTypeSize = map[exifType]uint32{
	exifTypeUnsignedByte:  1,
	exifTypeUnsignedASCII: 1,
	exifTypeUnsignedShort: 2,
	exifTypeUnsignedLong:  4,
	exifTypeUnsignedRat:   8,
	exifTypeSignedByte:    1,
	exifTypeUndef:         1,
	exifTypeSignedShort:   2,
	exifTypeSignedLong:    4,
	exifTypeSignedRat:     8,
	exifTypeSignedFloat:   4,
	exifTypeSignedDouble:  8,
}

var exifIFDPointers = map[uint16]string{
	0x8769: "ExifIFD",
	0x8825: "GPSInfoIFD",
	0xa005: "InteroperabilityIFD",
}

type valueConverter func(binary.ByteOrder, any) any

var (
	exifConverters        = &vc{}
	exifValueConverterMap = map[string]valueConverter{
		"ApertureValue":           exifConverters.convertAPEXToFNumber,
		"MaxApertureValue":        exifConverters.convertAPEXToFNumber,
		"ShutterSpeedValue":       exifConverters.convertAPEXToSeconds,
		"GPSLatitude":             exifConverters.convertDegreesToDecimal,
		"GPSLongitude":            exifConverters.convertDegreesToDecimal,
		"GPSMeasureMode":          exifConverters.convertStringToInt,
		"SubSecTimeDigitized":     exifConverters.convertStringToInt,
		"SubSecTimeOriginal":      exifConverters.convertStringToInt,
		"SubSecTime":              exifConverters.convertStringToInt,
		"GPSTimeStamp":            exifConverters.convertToTimestampString,
		"GPSVersionID":            exifConverters.convertBytesToStringSpaceDelim,
		"SubjectArea":             exifConverters.convertNumbersToSpaceLimited,
		"ComponentsConfiguration": exifConverters.convertBytesToStringSpaceDelim,
		"LensInfo":                exifConverters.convertRatsToSpaceLimited,
		"UserComment": func(byteOrder binary.ByteOrder, v any) any {
			return strings.TrimPrefix(printableString(toString(v)), "ASCII")
		},
	}
)

// newMetaDecoderEXIF returns a decoder for one TIFF-structured EXIF payload.
// data starts at the TIFF byte order header; baseOffset is the absolute
// offset of that header in the original file and is only used to resolve
// thumbnail offsets.
func newMetaDecoderEXIF(data []byte, baseOffset int64, opts Options) *metaDecoderEXIF {
	return &metaDecoderEXIF{
		r:          NewIndexedReader(data),
		baseOffset: baseOffset,
		visited:    make(map[int64]bool),
		opts:       opts,
	}
}

// metaDecoderEXIF walks the IFD tree of a TIFF-structured EXIF payload.
// All offsets in the payload are relative to the TIFF header, which is why
// this decoder works on the random-access IndexedReader rather than a
// sequential cursor.
type metaDecoderEXIF struct {
	r          *IndexedReader
	baseOffset int64
	visited    map[int64]bool
	dirs       []*Directory

	opts Options
}

func (e *metaDecoderEXIF) decode() error {
	byteOrderTag, err := e.r.Uint16At(0)
	if err != nil {
		return newInvalidFormatErrorf("EXIF payload too short")
	}

	switch byteOrderTag {
	case byteOrderBigEndian:
		e.r.SetByteOrder(binary.BigEndian)
	case byteOrderLittleEndian:
		e.r.SetByteOrder(binary.LittleEndian)
	default:
		return newInvalidFormatErrorf("unknown EXIF byte order 0x%04x", byteOrderTag)
	}

	if magic, err := e.r.Uint16At(2); err != nil || magic != tiffMagic {
		return newInvalidFormatErrorf("missing TIFF magic in EXIF payload")
	}

	ifd0Offset, err := e.r.Uint32At(4)
	if err != nil {
		return err
	}

	// Main image.
	ifd1Offset, err := e.decodeIFD("IFD0", int64(ifd0Offset))
	if err != nil {
		return err
	}

	// Thumbnail IFD.
	if ifd1Offset != 0 {
		if _, err := e.decodeIFD("IFD1", ifd1Offset); err != nil {
			return err
		}
	}

	return nil
}

// decodeIFD decodes one directory and returns the offset of the next IFD in
// the chain, 0 when there is none.
func (e *metaDecoderEXIF) decodeIFD(namespace string, offset int64) (int64, error) {
	if e.visited[offset] {
		// Offset cycle in a corrupt file. Stop following it.
		return 0, nil
	}
	e.visited[offset] = true

	dir := NewDirectory(namespace)
	e.dirs = append(e.dirs, dir)

	numTags, err := e.r.Uint16At(offset)
	if err != nil {
		return 0, err
	}

	for i := int64(0); i < int64(numTags); i++ {
		entry := offset + 2 + i*12
		if err := e.decodeTag(namespace, dir, entry); err != nil {
			if err == ErrStopWalking || err == errStop {
				return 0, err
			}
			if ha, ok := err.(*handlerAbort); ok {
				return 0, ha
			}
			// A bad tag spoils only itself, not the extraction.
			dir.AddError(err.Error())
			e.opts.Warnf("imgmeta: %s: %s", namespace, err)
		}
	}

	next, err := e.r.Uint32At(offset + 2 + int64(numTags)*12)
	if err != nil {
		return 0, nil
	}
	return int64(next), nil
}

// A tag is represented in 12 bytes:
//   - 2 bytes for the tag ID
//   - 2 bytes for the data type
//   - 4 bytes for the number of data values of the specified type
//   - 4 bytes for the value itself, if it fits, otherwise for a pointer to another location where the data may be found;
//     this could be a pointer to the beginning of another IFD.
func (e *metaDecoderEXIF) decodeTag(namespace string, dir *Directory, entry int64) error {
	tagID, err := e.r.Uint16At(entry)
	if err != nil {
		return err
	}

	tagName := exifFieldsAll[tagID]
	if tagName == "" {
		tagName = fmt.Sprintf("%s0x%x", UnknownPrefix, tagID)
	}

	dataType, err := e.r.Uint16At(entry + 2)
	if err != nil {
		return err
	}
	count, err := e.r.Uint32At(entry + 4)
	if err != nil {
		return err
	}
	if count > 0x10000 {
		return nil
	}

	ifd, isIFDPointer := exifIFDPointers[tagID]

	tagInfo := TagInfo{
		Source:    EXIF,
		Tag:       tagName,
		Namespace: namespace,
	}

	if !isIFDPointer && !e.opts.ShouldHandleTag(tagInfo) {
		return nil
	}

	typ := exifType(dataType)
	size, ok := exifTypeSize[typ]
	if !ok {
		return fmt.Errorf("%w: unknown EXIF type %d for tag %s", errInvalidFormat, typ, tagName)
	}
	valLen := int64(size * count)

	valueIndex := entry + 8
	if valLen > 4 {
		valueOffset, err := e.r.Uint32At(entry + 8)
		if err != nil {
			return err
		}
		valueIndex = int64(valueOffset)
	}

	if isIFDPointer {
		pointer, err := e.r.Uint32At(valueIndex)
		if err != nil {
			return err
		}
		_, err = e.decodeIFD(path.Join(namespace, ifd), int64(pointer))
		return err
	}

	if valLen > int64(e.opts.LimitTagSize) {
		return nil
	}

	val, err := e.convertValues(typ, int64(count), valLen, valueIndex)
	if err != nil {
		return err
	}

	if convert, found := exifValueConverterMap[tagName]; found {
		val = convert(e.r.ByteOrder(), val)
	} else {
		val = toPrintableValue(val)
	}

	if val == nil {
		val = ""
	}

	if tagName == tagNameThumbnailOffset {
		// Resolve the thumbnail offset to a position in the original file.
		if v, ok := val.(uint32); ok {
			val = v + uint32(e.baseOffset)
		}
	}

	dir.SetValue(int(tagID), val)

	tagInfo.Value = val
	if err := e.opts.HandleTag(tagInfo); err != nil {
		return &handlerAbort{err}
	}
	return nil
}

func (e *metaDecoderEXIF) convertValue(typ exifType, idx int64) (any, error) {
	switch typ {
	case exifTypeUnsignedByte, exifTypeUndef:
		return e.r.Uint8At(idx)
	case exifTypeSignedByte:
		return e.r.Int8At(idx)
	case exifTypeUnsignedShort:
		return e.r.Uint16At(idx)
	case exifTypeSignedShort:
		return e.r.Int16At(idx)
	case exifTypeUnsignedLong:
		return e.r.Uint32At(idx)
	case exifTypeSignedLong:
		return e.r.Int32At(idx)
	case exifTypeSignedFloat:
		return e.r.Float32At(idx)
	case exifTypeSignedDouble:
		return e.r.Float64At(idx)
	case exifTypeUnsignedRat:
		n, err := e.r.Uint32At(idx)
		if err != nil {
			return nil, err
		}
		d, err := e.r.Uint32At(idx + 4)
		if err != nil {
			return nil, err
		}
		if d == 0 {
			return math.Inf(1), nil
		}
		return mustRat[uint32](n, d), nil
	case exifTypeSignedRat:
		n, err := e.r.Int32At(idx)
		if err != nil {
			return nil, err
		}
		d, err := e.r.Int32At(idx + 4)
		if err != nil {
			return nil, err
		}
		if d == 0 {
			return math.Inf(1), nil
		}
		return mustRat[int32](n, d), nil
	default:
		return nil, fmt.Errorf("%w: EXIF type %d not implemented", errInvalidFormat, typ)
	}
}

func (e *metaDecoderEXIF) convertValues(typ exifType, count, valLen, idx int64) (any, error) {
	if count == 0 {
		return nil, nil
	}

	if typ == exifTypeUnsignedASCII {
		b, err := e.r.BytesAt(idx, valLen)
		if err != nil {
			return nil, err
		}
		return string(trimBytesNulls(b[:count])), nil
	}

	if count == 1 {
		return e.convertValue(typ, idx)
	}

	size := int64(exifTypeSize[typ])
	values := make([]any, count)
	allBytes := true
	for i := int64(0); i < count; i++ {
		v, err := e.convertValue(typ, idx+i*size)
		if err != nil {
			return nil, err
		}
		values[i] = v
		if allBytes {
			if _, ok := v.(byte); !ok {
				allBytes = false
			}
		}
	}

	if allBytes {
		bs := make([]byte, count)
		for i, v := range values {
			bs[i] = v.(byte)
		}
		return bs, nil
	}
	return values, nil
}
