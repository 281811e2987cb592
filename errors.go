package pinlogo

import (
	"errors"
	"fmt"
)

// ErrEmptyForeground is recorded when no pixel of a logo could be told apart
// from its background. The conversion proceeds with the fallback color.
var ErrEmptyForeground = errors.New("no foreground pixel found")

// DecodeError is returned when the source is not a decodable raster image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cannot decode image: %v", e.Err)
	}
	return fmt.Sprintf("cannot decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TracerError is returned when the tracer fails, times out or produces no path
// for a mask holding foreground pixels.
type TracerError struct {
	Path string
	Err  error
}

func (e *TracerError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tracing failed: %v", e.Err)
	}
	return fmt.Sprintf("tracing %s failed: %v", e.Path, e.Err)
}

func (e *TracerError) Unwrap() error { return e.Err }

// WriteError is returned when an output artifact cannot be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// withPath stamps the source path on the typed pipeline errors.
func withPath(err error, path string) error {
	var (
		decErr *DecodeError
		trcErr *TracerError
	)
	switch {
	case errors.As(err, &decErr) && decErr.Path == "":
		decErr.Path = path
	case errors.As(err, &trcErr) && trcErr.Path == "":
		trcErr.Path = path
	}
	return err
}

// reason returns a short label of the error kind used by the report and the logs.
func reason(err error) string {
	var (
		decErr *DecodeError
		trcErr *TracerError
		wrtErr *WriteError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &decErr):
		return "decode"
	case errors.As(err, &trcErr):
		return "tracer"
	case errors.As(err, &wrtErr):
		return "write"
	default:
		return "error"
	}
}
