package pinlogo

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pinlogo/pinlogo/utils"
)

// Placement describes where the logo lands on the supersampled canvas.
type Placement struct {
	// Canvas is the full square canvas, viewBox × scale pixels wide.
	Canvas image.Rectangle
	// Box is the target box centered on the anchor and clamped inside the canvas.
	Box image.Rectangle
	// Content is the area covered by the resized mask, centered inside Box.
	Content image.Rectangle
}

// ComputePlacement fits content of size w×h inside the target box, preserving the aspect ratio.
// The box is centered on the anchor and shifted back inside the canvas when it would overflow.
func ComputePlacement(w, h int, cfg CanvasConfig) Placement {
	side := cfg.ViewBox * cfg.Scale
	scale := float64(cfg.Scale)

	bw := utils.Clamp(int(math.Round(cfg.TargetWidth*scale)), 1, side)
	bh := utils.Clamp(int(math.Round(cfg.TargetHeight*scale)), 1, side)
	ox := utils.Clamp(int(math.Round(cfg.AnchorX*scale-float64(bw)/2)), 0, side-bw)
	oy := utils.Clamp(int(math.Round(cfg.AnchorY*scale-float64(bh)/2)), 0, side-bh)

	p := Placement{
		Canvas: image.Rect(0, 0, side, side),
		Box:    image.Rect(ox, oy, ox+bw, oy+bh),
	}
	if w <= 0 || h <= 0 {
		p.Content = image.Rectangle{Min: p.Box.Min, Max: p.Box.Min}
		return p
	}

	s := utils.Min(float64(bw)/float64(w), float64(bh)/float64(h))
	nw := utils.Clamp(int(math.Round(float64(w)*s)), 1, bw)
	nh := utils.Clamp(int(math.Round(float64(h)*s)), 1, bh)
	cx := ox + (bw-nw)/2
	cy := oy + (bh-nh)/2
	p.Content = image.Rect(cx, cy, cx+nw, cy+nh)

	return p
}

// Place resizes every layer into the target box and composites it onto a white canvas.
// The resampled layers are binarized again so the tracer receives a strictly two-tone image.
func Place(layers []*Mask, cfg Config) ([]*Mask, Placement) {
	var w, h int
	if len(layers) > 0 {
		w, h = layers[0].Bounds().Dx(), layers[0].Bounds().Dy()
	}
	p := ComputePlacement(w, h, cfg.Canvas)
	side := p.Canvas.Dx()

	placed := make([]*Mask, len(layers))
	for i, l := range layers {
		canvas := imaging.New(side, side, color.White)
		if !p.Content.Empty() {
			resized := imaging.Resize(l, p.Content.Dx(), p.Content.Dy(), imaging.Lanczos)
			canvas = imaging.Paste(canvas, resized, p.Content.Min)
		}
		placed[i] = binarize(canvas, cfg.Analysis.AlphaBinarize)
	}
	return placed, p
}
