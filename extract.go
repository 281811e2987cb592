package pinlogo

import (
	"image"
	"sort"
)

// PaletteEntry is a dominant foreground color and the number of pixels it covers.
type PaletteEntry struct {
	Color RGB
	Count int
}

// Extraction holds the foreground palette, most frequent first, and one mask per entry.
type Extraction struct {
	Palette       []PaletteEntry
	Layers        []*Mask
	LowConfidence bool
}

// Fill returns the rank-1 foreground color.
func (e *Extraction) Fill() RGB {
	if len(e.Palette) == 0 {
		return Black
	}
	return e.Palette[0].Color
}

// Extract separates the logo from its background and computes the dominant foreground colors.
// When no pixel qualifies as foreground the palette falls back to black and the
// extraction is flagged as low confidence.
func Extract(img *image.NRGBA, model BackgroundModel, cfg AnalysisConfig) *Extraction {
	isForeground := func(c RGB, a uint8) bool {
		if a < cfg.AlphaMask {
			return false
		}
		if model.Method == Transparent && !model.Panel {
			return true
		}
		return c.Distance(model.Background.RGB) > cfg.ColorDistance
	}

	if cfg.PaletteSize <= 1 {
		return extractSingle(img, isForeground)
	}
	return extractPalette(img, isForeground, cfg)
}

func extractSingle(img *image.NRGBA, isForeground func(RGB, uint8) bool) *Extraction {
	b := img.Bounds()
	mask := NewMask(b)

	var avg mean
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if isForeground(RGBFromNRGBA(c), c.A) {
				mask.Pix[mask.PixOffset(x, y)] = ink
				avg.add(c)
			}
		}
	}

	if avg.n == 0 {
		return emptyExtraction(mask)
	}
	return &Extraction{
		Palette: []PaletteEntry{{Color: avg.rgb(), Count: avg.n}},
		Layers:  []*Mask{mask},
	}
}

type bucket struct {
	key int
	avg mean
}

// extractPalette ranks the foreground colors with a histogram of quantized colors.
// Each bucket is represented by the mean of its pixels, and buckets whose colors
// fall within the color distance of an already selected entry are merged into it.
func extractPalette(img *image.NRGBA, isForeground func(RGB, uint8) bool, cfg AnalysisConfig) *Extraction {
	b := img.Bounds()
	q := cfg.PaletteQuantum
	side := (255 / q) + 1

	buckets := make(map[int]*bucket)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if !isForeground(RGBFromNRGBA(c), c.A) {
				continue
			}
			key := (int(c.R)/q*side+int(c.G)/q)*side + int(c.B)/q
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{key: key}
				buckets[key] = bk
			}
			bk.avg.add(c)
		}
	}
	if len(buckets) == 0 {
		return emptyExtraction(NewMask(b))
	}

	ranked := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		ranked = append(ranked, bk)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].avg.n != ranked[j].avg.n {
			return ranked[i].avg.n > ranked[j].avg.n
		}
		return ranked[i].key < ranked[j].key
	})

	var colors []RGB
	for _, bk := range ranked {
		c := bk.avg.rgb()
		merged := false
		for _, sel := range colors {
			if c.Distance(sel) <= cfg.ColorDistance {
				merged = true
				break
			}
		}
		if !merged && len(colors) < cfg.PaletteSize {
			colors = append(colors, c)
		}
	}

	layers := make([]*Mask, len(colors))
	for i := range layers {
		layers[i] = NewMask(b)
	}
	counts := make([]int, len(colors))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			rgb := RGBFromNRGBA(c)
			if !isForeground(rgb, c.A) {
				continue
			}
			idx := nearest(rgb, colors)
			layers[idx].Pix[layers[idx].PixOffset(x, y)] = ink
			counts[idx]++
		}
	}

	ext := &Extraction{}
	order := make([]int, len(colors))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	for _, i := range order {
		if counts[i] == 0 {
			continue
		}
		ext.Palette = append(ext.Palette, PaletteEntry{Color: colors[i], Count: counts[i]})
		ext.Layers = append(ext.Layers, layers[i])
	}
	return ext
}

func nearest(c RGB, colors []RGB) int {
	best, dist := 0, c.distanceSq(colors[0])
	for i := 1; i < len(colors); i++ {
		if d := c.distanceSq(colors[i]); d < dist {
			best, dist = i, d
		}
	}
	return best
}

func emptyExtraction(mask *Mask) *Extraction {
	return &Extraction{
		Palette:       []PaletteEntry{{Color: Black}},
		Layers:        []*Mask{mask},
		LowConfidence: true,
	}
}
