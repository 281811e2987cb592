package pinlogo

import (
	"bytes"
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMime = "image/svg+xml"

// Layer is the traced geometry of one palette color.
type Layer struct {
	Fill  RGB
	Paths []string
}

// Assemble wraps the traced layers into an SVG document of viewBox×viewBox units.
// Layers are stacked in order, the first one at the bottom.
func Assemble(layers []Layer, viewBox int, opts OutputConfig) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
	if opts.KeepSize {
		fmt.Fprintf(&buf, ` width="%d" height="%d"`, viewBox, viewBox)
	}
	if opts.KeepViewBox {
		fmt.Fprintf(&buf, ` viewBox="0 0 %d %d"`, viewBox, viewBox)
	}
	buf.WriteString(`>`)

	for _, l := range layers {
		if len(l.Paths) == 0 {
			continue
		}
		if opts.KeepGroups {
			fmt.Fprintf(&buf, `<g fill="%s">`, l.Fill.Hex())
			for _, d := range l.Paths {
				fmt.Fprintf(&buf, `<path d="%s"/>`, d)
			}
			buf.WriteString(`</g>`)
			continue
		}
		for _, d := range l.Paths {
			fmt.Fprintf(&buf, `<path fill="%s" d="%s"/>`, l.Fill.Hex(), d)
		}
	}
	buf.WriteString(`</svg>`)

	return buf.Bytes()
}

// Optimize minifies an SVG document, rounding numbers to the configured significant digits.
func Optimize(doc []byte, opts OutputConfig) ([]byte, error) {
	m := minify.New()
	m.Add(svgMime, &svg.Minifier{Precision: opts.Precision})

	out, err := m.Bytes(svgMime, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot optimize svg: %w", err)
	}
	return out, nil
}
