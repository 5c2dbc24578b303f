package imgmeta

import (
	"io"
)

// 10 MB should be plenty for image metadata.
const maxBufSize = 10 * 1024 * 1024

type imageDecoderTIFF struct {
	r      io.Reader
	opts   Options
	result *DecodeResult
}

// decode reads the whole TIFF structure into memory and walks it with the
// EXIF IFD decoder; TIFF value offsets are file-absolute, so the payload is
// the file itself.
func (e *imageDecoderTIFF) decode() error {
	data, err := io.ReadAll(io.LimitReader(e.r, maxBufSize+1))
	if err != nil {
		return err
	}
	if len(data) > maxBufSize {
		return newInvalidFormatErrorf("TIFF length exceeds max %d", maxBufSize)
	}

	opts := e.opts
	if !opts.Sources.Has(EXIF) {
		// Only CONFIG was requested; still walk IFD0 but drop the tags.
		opts.HandleTag = func(TagInfo) error { return nil }
	}

	dec := newMetaDecoderEXIF(data, 0, opts)
	decodeErr := dec.decode()
	e.result.Directories = append(e.result.Directories, dec.dirs...)
	if ha, ok := decodeErr.(*handlerAbort); ok {
		return ha.Unwrap()
	}
	if decodeErr != nil && decodeErr != ErrStopWalking {
		return decodeErr
	}

	if e.opts.Sources.Has(CONFIG) {
		// TIFF dimensions live in the IFD0 tags.
		if dir := e.result.Directory("IFD0"); dir != nil {
			if w, ok := dir.Integer(0x100); ok {
				e.result.ImageConfig.Width = w
			}
			if h, ok := dir.Integer(0x101); ok {
				e.result.ImageConfig.Height = h
			}
		}
	}

	return nil
}
