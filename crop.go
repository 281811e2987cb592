package pinlogo

import (
	"image"
	"image/color"

	"github.com/pinlogo/pinlogo/utils"
)

// trimBounds returns the tight bounding box of the pixels which do not belong to the border
// described by ref. It reports false when every pixel matches the border.
func trimBounds(img image.Image, ref color.NRGBA, threshold int) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if matchesBorder(nrgbaAt(img, x, y), ref, threshold) {
				continue
			}
			minX = utils.Min(minX, x)
			maxX = utils.Max(maxX, x)
			minY = utils.Min(minY, y)
			maxY = utils.Max(maxY, y)
		}
	}
	if maxX < minX || maxY < minY {
		return b, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// matchesBorder reports whether c is close enough to ref to be trimmed.
// A transparent reference matches any pixel that is transparent as well.
func matchesBorder(c, ref color.NRGBA, threshold int) bool {
	if int(ref.A) <= threshold {
		return int(c.A) <= threshold
	}
	return utils.Abs(int(c.R)-int(ref.R)) <= threshold &&
		utils.Abs(int(c.G)-int(ref.G)) <= threshold &&
		utils.Abs(int(c.B)-int(ref.B)) <= threshold &&
		utils.Abs(int(c.A)-int(ref.A)) <= threshold
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	switch img := img.(type) {
	case *image.NRGBA:
		return img.NRGBAAt(x, y)
	case *Mask:
		v := img.GrayAt(x, y).Y
		return color.NRGBA{R: v, G: v, B: v, A: 0xff}
	case *image.Gray:
		v := img.GrayAt(x, y).Y
		return color.NRGBA{R: v, G: v, B: v, A: 0xff}
	default:
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
}

// TrimMasks crops every layer to the tight bounding box of their union, treating
// background cells as trimmable white. All layers share the same rectangle so they
// stay registered. When no layer holds foreground the layers are returned untouched.
// The returned rectangle is expressed in the coordinates of the input layers.
func TrimMasks(layers []*Mask, threshold int) ([]*Mask, image.Rectangle) {
	if len(layers) == 0 {
		return layers, image.Rectangle{}
	}
	union := unionMask(layers)
	rect, ok := trimBounds(union, color.NRGBA{R: paper, G: paper, B: paper, A: 0xff}, threshold)
	if !ok {
		return layers, union.Bounds()
	}

	cropped := make([]*Mask, len(layers))
	for i, l := range layers {
		cropped[i] = l.Crop(rect)
	}
	return cropped, rect
}
