package pinlogo

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RGB represents an opaque color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// Colors used as fallbacks across the pipeline.
var (
	Black = RGB{0, 0, 0}
	White = RGB{0xff, 0xff, 0xff}
)

// RGBFromNRGBA drops the alpha channel of c.
func RGBFromNRGBA(c color.NRGBA) RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// NRGBA returns the fully opaque color.NRGBA equivalent.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// Luma returns the perceptual brightness in the 0-255 range using the Rec. 709 weights.
func (c RGB) Luma() float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// Distance returns the Euclidean distance between two colors in RGB space.
func (c RGB) Distance(o RGB) float64 {
	return math.Sqrt(c.distanceSq(o))
}

func (c RGB) distanceSq(o RGB) float64 {
	dr := float64(c.R) - float64(o.R)
	dg := float64(c.G) - float64(o.G)
	db := float64(c.B) - float64(o.B)
	return dr*dr + dg*dg + db*db
}

// ParseHex parses #rrggbb or #rgb.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// UnmarshalYAML decodes a #rrggbb scalar.
func (c *RGB) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes the color as a #rrggbb scalar.
func (c RGB) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}

// mean accumulates a running average of colors.
type mean struct {
	r, g, b uint64
	n       int
}

func (m *mean) add(c color.NRGBA) {
	m.r += uint64(c.R)
	m.g += uint64(c.G)
	m.b += uint64(c.B)
	m.n++
}

func (m *mean) rgb() RGB {
	if m.n == 0 {
		return Black
	}
	n := uint64(m.n)
	return RGB{
		R: uint8((m.r + n/2) / n),
		G: uint8((m.g + n/2) / n),
		B: uint8((m.b + n/2) / n),
	}
}
