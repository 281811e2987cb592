package pinlogo

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pinlogo/pinlogo/utils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Normalized is a decoded logo at analysis resolution.
type Normalized struct {
	Image *image.NRGBA
	// Frame is the untrimmed input at analysis resolution. It is Image when nothing was trimmed.
	Frame *image.NRGBA
	// Border is the color of the padding removed by the first trim, nil when nothing was trimmed.
	Border *color.NRGBA
	// SourceTransparency is the fraction of translucent pixels of the raw input.
	SourceTransparency float64
}

// Decode reads a raster image of any registered format and returns it as NRGBA.
// The content type is sniffed first, so non-image payloads fail early.
func Decode(r io.Reader) (*image.NRGBA, error) {
	ctype, r, err := utils.DetectContentType(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if !utils.IsImage(ctype) {
		return nil, &DecodeError{Err: fmt.Errorf("unsupported content type %q", ctype)}
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return imgToNRGBA(img), nil
}

// Normalize strips the uniform outer padding of src and fits the remaining
// content inside the analysis square. Images are never upscaled.
func Normalize(src *image.NRGBA, cfg AnalysisConfig) *Normalized {
	n := &Normalized{
		Image:              src,
		SourceTransparency: translucentFraction(src, cfg.AlphaKeyed),
	}

	b := src.Bounds()
	if !b.Empty() {
		ref := src.NRGBAAt(b.Min.X, b.Min.Y)
		if rect, ok := trimBounds(src, ref, cfg.TrimThreshold); ok && rect != b {
			n.Image = imaging.Crop(src, rect)
			n.Border = &ref
		}
	}
	n.Image = imaging.Fit(n.Image, cfg.Size, cfg.Size, imaging.Lanczos)
	n.Frame = n.Image
	if n.Border != nil {
		n.Frame = imaging.Fit(src, cfg.Size, cfg.Size, imaging.Lanczos)
	}

	return n
}

// translucentFraction returns the share of pixels whose alpha is below cutoff.
func translucentFraction(img *image.NRGBA, cutoff uint8) float64 {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	var count int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if img.Pix[i+3] < cutoff {
				count++
			}
			i += 4
		}
	}
	return float64(count) / float64(total)
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	case *image.Gray:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				y := src.Pix[si+dstX]
				dst.Pix[di+0] = y
				dst.Pix[di+1] = y
				dst.Pix[di+2] = y
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
