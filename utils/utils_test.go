package utils

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_MinMaxAbs(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 7))
	assert.Equal(2, Min(7, 2))
	assert.Equal(7, Max(2, 7))
	assert.Equal(1.5, Max(1.5, -3.0))
	assert.Equal(4, Abs(-4))
	assert.Equal(0.25, Abs(0.25))
}

func TestUtils_Clamp(t *testing.T) {
	testCases := []struct {
		name      string
		x, lo, hi int
		want      int
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -3, 0, 10, 0},
		{"above", 12, 0, 10, 10},
		{"empty interval", 5, 4, 2, 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clamp(tc.x, tc.lo, tc.hi))
		})
	}
}

func TestUtils_Contains(t *testing.T) {
	exts := []string{".png", ".jpg"}
	assert.True(t, Contains(exts, ".png"))
	assert.False(t, Contains(exts, ".svg"))
}

func TestUtils_ShouldDetectImageContentType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	size := buf.Len()

	ctype, r, err := DetectContentType(&buf)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ctype)
	assert.True(t, IsImage(ctype))

	// The sniffed bytes must be replayed.
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, data, size)
}

func TestUtils_ShouldRejectTextContentType(t *testing.T) {
	ctype, _, err := DetectContentType(strings.NewReader("definitely not an image"))
	require.NoError(t, err)
	assert.False(t, IsImage(ctype))
}

func TestUtils_DecorateText(t *testing.T) {
	NoColor = false
	assert.Equal(t, ErrorColor+"boom"+DefaultColor, DecorateText("boom", ErrorMessage))

	NoColor = true
	defer func() { NoColor = false }()
	assert.Equal(t, "boom", DecorateText("boom", ErrorMessage))
}

func TestUtils_FormatTime(t *testing.T) {
	assert.Equal(t, "1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal(t, "2m 5.00s", FormatTime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h 1m 0.00s", FormatTime(time.Hour+time.Minute))
}

func TestUtils_Plural(t *testing.T) {
	assert.Equal(t, "1 file", Plural(1, "file"))
	assert.Equal(t, "3 files", Plural(3, "file"))
}

func TestUtils_SpinnerStartStop(t *testing.T) {
	var buf safeBuffer
	s := NewSpinner(&buf, "working", time.Millisecond, false)
	s.StopMsg = "done\n"

	s.Start()
	s.Start()
	s.SetMessage("still working")
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()

	assert.True(t, strings.HasSuffix(buf.String(), "done\n"))
}
