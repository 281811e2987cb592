// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop on non-premultiplied images.
// The image/draw core package implements only the source-over-destination and source,
// and works on premultiplied colors.
//
// It is used to render the pin previews of the audit report: the pin body is clipped
// to its silhouette (destination-in) and the rasterized icon is laid over it (source-over).
package imop

import (
	"image"
	"image/color"
	"math"

	"github.com/pinlogo/pinlogo/utils"
)

// Op is a Porter-Duff composition operator.
type Op string

const (
	// SrcOver draws the source over the backdrop.
	SrcOver Op = "src_over"
	// DstIn keeps the backdrop where the source is opaque.
	DstIn Op = "dst_in"
)

var ops = []Op{SrcOver, DstIn}

// Composite holds the currently active composition operator.
type Composite struct {
	current Op
}

// InitOp returns a composite with the default source-over operator.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates op. Unsupported operators are ignored and reported as false.
func (c *Composite) Set(op Op) bool {
	if !utils.Contains(ops, op) {
		return false
	}
	c.current = op
	return true
}

// Get returns the active operator.
func (c *Composite) Get() Op {
	return c.current
}

// factors returns the fraction of the source and of the backdrop kept by the operator,
// given the source alpha as and the backdrop alpha ab.
func (c *Composite) factors(as, ab float64) (fa, fb float64) {
	switch c.current {
	case SrcOver:
		return 1, 1 - as
	case DstIn:
		return 0, as
	}
	return 0, 0
}

// Draw composes src over the backdrop dst with the active operator and returns the
// result as a new image of the backdrop size. Source pixels outside the backdrop are ignored,
// backdrop pixels missing from the source are treated as transparent source.
func (c *Composite) Draw(src, dst *image.NRGBA) *image.NRGBA {
	bounds := dst.Bounds()
	out := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var s color.NRGBA
			if (image.Point{X: x, Y: y}).In(src.Bounds()) {
				s = src.NRGBAAt(x, y)
			}
			b := dst.NRGBAAt(x, y)

			as := float64(s.A) / 255
			ab := float64(b.A) / 255
			fa, fb := c.factors(as, ab)

			ao := as*fa + ab*fb
			if ao <= 0 {
				out.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			// Channels are blended premultiplied, then divided back by the output alpha.
			mix := func(cs, cb uint8) uint8 {
				v := (as*fa*float64(cs) + ab*fb*float64(cb)) / ao
				return uint8(utils.Clamp(math.Round(v), 0, 255))
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: mix(s.R, b.R),
				G: mix(s.G, b.G),
				B: mix(s.B, b.B),
				A: uint8(utils.Clamp(math.Round(ao*255), 0, 255)),
			})
		}
	}
	return out
}
