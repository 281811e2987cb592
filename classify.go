package pinlogo

import (
	"image"

	"github.com/pinlogo/pinlogo/utils"
)

// Method is the background detection strategy selected for a logo.
type Method int

const (
	// Transparent logos are keyed on their alpha channel.
	Transparent Method = iota
	// OpaqueCornerDominant logos sit on a background sampled at the corner.
	OpaqueCornerDominant
	// OpaqueCenterDominant logos are box logos whose center color covers most of the frame.
	OpaqueCenterDominant
)

func (m Method) String() string {
	switch m {
	case Transparent:
		return "transparent"
	case OpaqueCornerDominant:
		return "opaque-corner"
	case OpaqueCenterDominant:
		return "opaque-center"
	}
	return "unknown"
}

// SampleSource tells where a color sample comes from.
type SampleSource int

const (
	CornerSampled SampleSource = iota
	CenterSampled
	PixelAveraged
)

func (s SampleSource) String() string {
	switch s {
	case CornerSampled:
		return "corner"
	case CenterSampled:
		return "center"
	case PixelAveraged:
		return "averaged"
	}
	return "unknown"
}

// ColorSample is a color together with its provenance.
type ColorSample struct {
	RGB
	Source SampleSource
}

// BackgroundModel is the outcome of the background classification.
type BackgroundModel struct {
	Method     Method
	Background ColorSample
	// Panel is set for transparent logos whose opaque region holds a
	// background plate distinct from the glyph.
	Panel bool
}

// Classify decides which pixels of the normalized logo represent the background.
// The result is deterministic for a given image and configuration.
func Classify(n *Normalized, cfg AnalysisConfig) BackgroundModel {
	img := n.Image
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return BackgroundModel{
			Method:     OpaqueCornerDominant,
			Background: ColorSample{RGB: White, Source: CornerSampled},
		}
	}

	translucent := utils.Max(n.SourceTransparency, translucentFraction(img, cfg.AlphaKeyed))
	if translucent > cfg.TransparentFraction {
		return classifyTransparent(img, cfg)
	}

	// Uniform content left after trimming a border: the border was the background.
	inner := RGBFromNRGBA(img.NRGBAAt(b.Min.X, b.Min.Y))
	if n.Border != nil && coverage(img, inner, cfg.ColorDistance) >= cfg.UniformFraction {
		if n.Border.A < cfg.AlphaKeyed {
			model := classifyTransparent(img, cfg)
			model.Panel = false
			return model
		}
		return BackgroundModel{
			Method:     OpaqueCornerDominant,
			Background: ColorSample{RGB: RGBFromNRGBA(*n.Border), Source: CornerSampled},
		}
	}

	// Samples and areas are taken on the whole frame, so a full-bleed panel
	// removed by the first trim still counts.
	frame := n.Frame
	if frame == nil {
		frame = img
	}
	fb := frame.Bounds()
	corner := RGBFromNRGBA(frame.NRGBAAt(fb.Min.X, fb.Min.Y))
	center := RGBFromNRGBA(frame.NRGBAAt(fb.Min.X+fb.Dx()/2, fb.Min.Y+fb.Dy()/2))

	cornerFrac := coverage(frame, corner, cfg.ColorDistance)
	centerFrac := coverage(frame, center, cfg.ColorDistance)

	if centerFrac > cfg.CenterDominance && corner.Distance(center) > cfg.CenterDistance {
		return BackgroundModel{
			Method:     OpaqueCenterDominant,
			Background: ColorSample{RGB: center, Source: CenterSampled},
		}
	}

	// A panel framed by a thin margin outweighs the margin color.
	if inner.Distance(corner) > cfg.ColorDistance && coverage(frame, inner, cfg.ColorDistance) > cornerFrac {
		corner = inner
	}

	return BackgroundModel{
		Method:     OpaqueCornerDominant,
		Background: ColorSample{RGB: corner, Source: CornerSampled},
	}
}

// coverage returns the share of pixels of img within dist of c.
func coverage(img *image.NRGBA, c RGB, dist float64) float64 {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	var count int
	forEachPixel(img, func(p RGB, _ uint8) {
		if p.Distance(c) <= dist {
			count++
		}
	})
	return float64(count) / float64(total)
}

// classifyTransparent resolves the background of an alpha keyed logo as the mean of its
// opaque pixels, and looks for a panel among them.
func classifyTransparent(img *image.NRGBA, cfg AnalysisConfig) BackgroundModel {
	var avg mean
	forEachPixel(img, func(c RGB, a uint8) {
		if a > cfg.AlphaMask {
			avg.add(c.NRGBA())
		}
	})
	bg := avg.rgb()

	var far int
	forEachPixel(img, func(c RGB, a uint8) {
		if a > cfg.AlphaMask && c.Distance(bg) > cfg.ColorDistance {
			far++
		}
	})

	return BackgroundModel{
		Method:     Transparent,
		Background: ColorSample{RGB: bg, Source: PixelAveraged},
		Panel:      avg.n > 0 && float64(far) >= cfg.PanelFraction*float64(avg.n),
	}
}

// forEachPixel calls fn with the color and alpha of every pixel in row-major order.
func forEachPixel(img *image.NRGBA, fn func(c RGB, a uint8)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			fn(RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}, img.Pix[i+3])
			i += 4
		}
	}
}
