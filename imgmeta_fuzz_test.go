// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/twest820/imgmeta"
)

func FuzzDecodeJPEG(f *testing.F) {
	f.Add(buildJPEG())
	f.Add([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	f.Add(buildJPEG()[:40])

	f.Fuzz(func(t *testing.T, imageBytes []byte) {
		fuzzDecodeBytes(t, imageBytes, imgmeta.JPEG)
	})
}

func FuzzDecodeTIFF(f *testing.F) {
	f.Add(buildTIFF(true))
	f.Add(buildTIFF(false))
	f.Add(buildTIFF(true)[:20])

	f.Fuzz(func(t *testing.T, imageBytes []byte) {
		fuzzDecodeBytes(t, imageBytes, imgmeta.TIFF)
	})
}

func fuzzDecodeBytes(t *testing.T, imageBytes []byte, f imgmeta.ImageFormat) {
	r := bytes.NewReader(imageBytes)
	_, err := imgmeta.Decode(imgmeta.Options{R: r, ImageFormat: f, Sources: imgmeta.EXIF | imgmeta.IPTC | imgmeta.XMP | imgmeta.CONFIG, Timeout: 600 * time.Millisecond})
	if err != nil {
		if !imgmeta.IsInvalidFormat(err) && !strings.Contains(err.Error(), "timed out") {
			t.Fatalf("unknown error in Decode: %v %T", err, err)
		}
	}
}
