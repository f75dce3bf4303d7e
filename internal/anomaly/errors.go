package anomaly

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode reports source bytes that could not be read as an image.
	ErrDecode = errors.New("decode error")
	// ErrEncode reports a failure writing a rendered map.
	ErrEncode = errors.New("encode error")
	// ErrShapeMismatch reports a render request that did not line up with
	// the difference grid. It is recovered from and only surfaced as a
	// warning.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidConfig reports an unusable Config.
	ErrInvalidConfig = errors.New("invalid config")
)

// ImageError records a failure processing one image file.
type ImageError struct {
	Path string
	Op   string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// NewDecodeError wraps err as a decode failure for path.
func NewDecodeError(path string, err error) error {
	return &ImageError{Path: path, Op: "decode", Err: fmt.Errorf("%w: %w", ErrDecode, err)}
}

// NewEncodeError wraps err as an encode failure for path.
func NewEncodeError(path string, err error) error {
	return &ImageError{Path: path, Op: "encode", Err: fmt.Errorf("%w: %w", ErrEncode, err)}
}
