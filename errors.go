// Copyright 2026 The imgmeta authors
// SPDX-License-Identifier: MIT

package imgmeta

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrStopWalking is a sentinel error to signal that the walk should stop.
	ErrStopWalking = fmt.Errorf("stop walking")

	// Internal error to signal that we should stop any further processing.
	errStop = fmt.Errorf("stop")
)

// ErrEndOfData is returned by the sequential reader when a read would pass
// the end of the underlying data source. The message text is fixed; a request
// too large to address reports the same error as plain exhaustion.
var ErrEndOfData = errors.New("End of data reached.")

var errInvalidFormat = errors.New("imgmeta: invalid format")

// InvalidFormatError is used to signal that the image format is invalid.
type InvalidFormatError struct {
	Err error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("imgmeta: invalid format: %s", e.Err)
}

// Is reports whether the target is an InvalidFormatError.
func (e *InvalidFormatError) Is(target error) bool {
	switch target.(type) {
	case *InvalidFormatError:
		return true
	default:
		return target == errInvalidFormat
	}
}

func newInvalidFormatError(err error) error {
	var ife *InvalidFormatError
	if errors.As(err, &ife) {
		return err
	}
	return &InvalidFormatError{Err: err}
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return &InvalidFormatError{Err: fmt.Errorf(format, args...)}
}

// IsInvalidFormat reports whether err signals a broken or truncated image
// structure, as opposed to e.g. a read error or a handler error.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, errInvalidFormat)
}

func isInvalidFormatErrorCandidate(err error) bool {
	if errors.Is(err, errInvalidFormat) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, ErrEndOfData) {
		return true
	}
	// A read past the end of a metadata buffer means the file lied about its
	// own structure.
	var bbe *BufferBoundsError
	if errors.As(err, &bbe) {
		return true
	}
	return strings.Contains(err.Error(), "unexpected EOF")
}

// handlerAbort wraps an error returned by a caller-supplied tag handler so
// it can be told apart from decode errors: handler errors abort the whole
// extraction, decode errors are recorded on the owning directory.
type handlerAbort struct{ err error }

func (e *handlerAbort) Error() string { return e.err.Error() }
func (e *handlerAbort) Unwrap() error { return e.err }

// BufferBoundsError is returned by the indexed reader when a request falls
// outside the underlying buffer. It is a caller error, never clamped.
type BufferBoundsError struct {
	// Index is the requested start index.
	Index int64
	// Count is the requested number of bytes.
	Count int64
	// MaxIndex is the largest valid index, or -1 when the buffer is empty.
	MaxIndex int64

	message string
}

func (e *BufferBoundsError) Error() string {
	return e.message
}

func newNegativeIndexError(index, count int64) *BufferBoundsError {
	return &BufferBoundsError{
		Index: index, Count: count,
		message: fmt.Sprintf("Attempt to read from buffer using a negative index (%d)", index),
	}
}

func newNegativeCountError(index, count int64) *BufferBoundsError {
	return &BufferBoundsError{
		Index: index, Count: count,
		message: fmt.Sprintf("Number of requested bytes cannot be negative (%d)", count),
	}
}

func newIndexOverflowError(index, count int64) *BufferBoundsError {
	return &BufferBoundsError{
		Index: index, Count: count,
		message: fmt.Sprintf("Number of requested bytes summed with starting index exceed maximum range of signed 32 bit integers (requested index: %d, requested count: %d)", index, count),
	}
}

func newPastEndOfDataError(index, count, bufferLength int64) *BufferBoundsError {
	return &BufferBoundsError{
		Index: index, Count: count, MaxIndex: bufferLength - 1,
		message: fmt.Sprintf("Attempt to read from beyond end of underlying data source (requested index: %d, requested count: %d, max index: %d)", index, count, bufferLength-1),
	}
}
