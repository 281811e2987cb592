package pinlogo

import (
	"image"
	"image/color"
)

const (
	ink   = 0x00 // foreground
	paper = 0xff // background
)

// Mask is a binary raster of a logo. Foreground cells are black ink on white paper,
// so it can be handed to the resampling routines and the tracer as a plain grayscale image.
type Mask struct {
	*image.Gray
}

// NewMask returns a mask of the given bounds with every cell set to background.
func NewMask(r image.Rectangle) *Mask {
	m := &Mask{Gray: image.NewGray(r)}
	for i := range m.Pix {
		m.Pix[i] = paper
	}
	return m
}

// Foreground reports whether the cell at (x, y) belongs to the logo.
func (m *Mask) Foreground(x, y int) bool {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return false
	}
	return m.Pix[m.PixOffset(x, y)] < 0x80
}

// SetForeground marks the cell at (x, y).
func (m *Mask) SetForeground(x, y int, fg bool) {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return
	}
	v := uint8(paper)
	if fg {
		v = ink
	}
	m.Pix[m.PixOffset(x, y)] = v
}

// Count returns the number of foreground cells.
func (m *Mask) Count() int {
	var n int
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
		for _, v := range row {
			if v < 0x80 {
				n++
			}
		}
	}
	return n
}

// Crop copies the cells inside r into a new mask with min-point at (0, 0).
func (m *Mask) Crop(r image.Rectangle) *Mask {
	r = r.Intersect(m.Bounds())
	dst := NewMask(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		si := m.PixOffset(r.Min.X, r.Min.Y+y)
		di := dst.PixOffset(0, y)
		copy(dst.Pix[di:di+r.Dx()], m.Pix[si:si+r.Dx()])
	}
	return dst
}

// binarize converts a resampled grayscale image back into a mask.
// Cells darker than threshold become foreground.
func binarize(img image.Image, threshold uint8) *Mask {
	b := img.Bounds()
	m := NewMask(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y < threshold {
				m.Pix[m.PixOffset(x, y)] = ink
			}
		}
	}
	return m
}

// unionMask merges the foreground of every layer.
func unionMask(layers []*Mask) *Mask {
	if len(layers) == 0 {
		return NewMask(image.Rectangle{})
	}
	u := NewMask(layers[0].Bounds())
	for _, l := range layers {
		for i, v := range l.Pix {
			if v < 0x80 {
				u.Pix[i] = ink
			}
		}
	}
	return u
}
