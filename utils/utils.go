package utils

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

// DetectContentType sniffs the MIME type of the stream without consuming it.
// The returned reader replays the sniffed bytes and must be used in place of r.
func DetectContentType(r io.Reader) (string, io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", br, err
	}
	// Always returns a valid content-type and "application/octet-stream" if no others seemed to match.
	return http.DetectContentType(head), br, nil
}

// IsImage reports whether the content type describes an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// Contains reports whether the slice holds the value.
func Contains[T comparable](s []T, value T) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}
