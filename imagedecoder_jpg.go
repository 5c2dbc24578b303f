package imgmeta

import (
	"bytes"
	"encoding/binary"
	"io"
)

var (
	markerEXIFPrefix = []byte("Exif\x00\x00")
	markerXMPPrefix  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	markerIPTCPrefix = []byte("Photoshop 3.0\x00")
)

// The JPEG comment segment has no numeric tag ids; the whole payload is one
// value.
const tagIDJPEGComment = 0

type imageDecoderJPEG struct {
	r      io.Reader
	opts   Options
	result *DecodeResult
}

func (e *imageDecoderJPEG) decode() error {
	sourceSet := e.opts.Sources

	filter := func(st SegmentType) bool {
		return st.CanContainMetadata()
	}

	return ScanSegments(e.r, filter, func(seg Segment) error {
		if sourceSet.IsZero() {
			return ErrStopWalking
		}

		switch {
		case seg.Type >= SOF0 && seg.Type <= SOF0+0xF:
			if sourceSet.Has(CONFIG) && len(seg.Payload) >= 5 {
				// Frame header: precision (1), height (2), width (2).
				e.result.ImageConfig = ImageConfig{
					Height: int(binary.BigEndian.Uint16(seg.Payload[1:])),
					Width:  int(binary.BigEndian.Uint16(seg.Payload[3:])),
				}
				sourceSet = sourceSet.Remove(CONFIG)
			}
		case seg.Type == APP1:
			if sourceSet.Has(EXIF) && bytes.HasPrefix(seg.Payload, markerEXIFPrefix) {
				sourceSet = sourceSet.Remove(EXIF)
				if err := e.handleEXIF(seg); err != nil {
					return err
				}
			} else if sourceSet.Has(XMP) && bytes.HasPrefix(seg.Payload, markerXMPPrefix) {
				sourceSet = sourceSet.Remove(XMP)
				if err := decodeXMP(bytes.NewReader(seg.Payload[len(markerXMPPrefix):]), e.opts); err != nil {
					return err
				}
			}
		case seg.Type == APP13:
			if sourceSet.Has(IPTC) && bytes.HasPrefix(seg.Payload, markerIPTCPrefix) {
				sourceSet = sourceSet.Remove(IPTC)
				if err := e.handleIPTC(seg); err != nil {
					return err
				}
			}
		case seg.Type == COM:
			// Comments are tag metadata; a CONFIG-only decode skips them.
			if e.opts.Sources.Has(EXIF | IPTC | XMP) {
				e.handleComment(seg)
			}
		}

		return nil
	})
}

// handleEXIF decodes the TIFF-structured payload after the Exif header.
// Per-segment decode failures are recorded on the directory and reported
// through Warnf; they do not abort the rest of the extraction. Errors
// returned by the caller's tag handler do.
func (e *imageDecoderJPEG) handleEXIF(seg Segment) error {
	payload := seg.Payload[len(markerEXIFPrefix):]
	baseOffset := seg.Offset + int64(len(markerEXIFPrefix))

	dec := newMetaDecoderEXIF(payload, baseOffset, e.opts)
	err := dec.decode()
	e.result.Directories = append(e.result.Directories, dec.dirs...)
	if ha, ok := err.(*handlerAbort); ok {
		return ha.Unwrap()
	}
	if err != nil && err != ErrStopWalking {
		e.opts.Warnf("imgmeta: EXIF segment: %s", err)
		if len(dec.dirs) > 0 {
			dec.dirs[len(dec.dirs)-1].AddError(err.Error())
		}
	}
	return nil
}

func (e *imageDecoderJPEG) handleIPTC(seg Segment) error {
	// EXIF may be stored in either byte order, but IPTC is always big-endian.
	dec := newMetaDecoderIPTC(seg.Payload[len(markerIPTCPrefix):], e.opts)
	err := dec.decodeBlocks()
	e.result.Directories = append(e.result.Directories, dec.dirs...)
	if ha, ok := err.(*handlerAbort); ok {
		return ha.Unwrap()
	}
	if err != nil && err != ErrStopWalking {
		e.opts.Warnf("imgmeta: IPTC segment: %s", err)
	}
	return nil
}

func (e *imageDecoderJPEG) handleComment(seg Segment) {
	if len(seg.Payload) == 0 {
		return
	}
	dir := NewDirectory("JpegComment")
	dir.SetValue(tagIDJPEGComment, printableString(string(seg.Payload)))
	e.result.Directories = append(e.result.Directories, dir)
}
