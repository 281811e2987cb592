package pinlogo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pinlogo/pinlogo/imop"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// PreviewSize is the side of the pin previews embedded in the report.
const PreviewSize = 96

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Pin icon report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: 6px 10px; text-align: left; vertical-align: middle; }
img.orig { max-width: 96px; max-height: 96px; }
img.icon { width: 48px; height: 48px; }
.swatch { display: inline-block; width: 12px; height: 12px; border: 1px solid #999; margin-right: 4px; vertical-align: middle; }
.failed { color: #b00020; }
.warn { color: #b26a00; }
</style>
</head>
<body>
<h1>Pin icon report</h1>
<p>{{.Summary.Total}} logos: {{.Summary.Converted}} converted, {{.Summary.Failed}} failed, {{.Summary.LowConfidence}} low confidence.</p>
<table>
<thead><tr><th>Logo</th><th>Original</th><th>Icon</th><th>Pin</th><th>Method</th><th>Fill</th><th>Contrast</th><th>Status</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.ID}}</td>
<td><a href="{{.Original}}"><img class="orig" src="{{.Original}}" alt="{{.ID}}"></a></td>
{{if .OK}}<td><a href="{{.Icon}}"><img class="icon" src="{{.Icon}}" alt="{{.ID}} icon"></a></td>
<td>{{if .Preview}}<img src="{{.Preview}}" width="{{$.Size}}" height="{{$.Size}}" alt="{{.ID}} pin">{{end}}</td>
<td>{{.Method}}</td>
<td><span class="swatch" style="background: {{.Fill}}"></span>{{.Fill}}</td>
<td><span class="swatch" style="background: {{.Contrast}}"></span>{{.Contrast}}</td>
<td{{if .LowConfidence}} class="warn"{{end}}>{{.Status}}</td>
{{else}}<td></td><td></td><td></td><td></td><td></td>
<td class="failed">{{.Status}}</td>
{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type reportRow struct {
	ID            string
	Original      string
	Icon          string
	Preview       template.URL
	Method        string
	Fill          string
	Contrast      string
	Status        string
	OK            bool
	LowConfidence bool
}

// WriteReport writes the HTML audit report of a batch. Links to the original logos and
// to the icons are made relative to dir, the directory holding the report.
func WriteReport(w io.Writer, dir string, results []FileResult, sum *Summary, cfg Config) error {
	rows := make([]reportRow, 0, len(results))
	for _, fr := range results {
		row := reportRow{
			ID:       fr.ID,
			Original: relLink(dir, fr.Source),
		}
		if fr.Err != nil {
			row.Status = fmt.Sprintf("failed (%s): %v", reason(fr.Err), fr.Err)
			rows = append(rows, row)
			continue
		}

		res := fr.Result
		row.OK = true
		row.Icon = relLink(dir, fr.Output)
		row.Method = res.Method()
		row.Fill = res.Fill.Hex()
		row.Contrast = res.Contrast.Hex()
		row.LowConfidence = res.LowConfidence
		row.Status = "ok"
		if res.LowConfidence {
			row.Status = "low confidence"
		}
		if img, err := RenderPreview(res, cfg, PreviewSize); err == nil {
			if uri, err := dataURI(img); err == nil {
				row.Preview = uri
			}
		}
		rows = append(rows, row)
	}

	return reportTmpl.Execute(w, struct {
		Rows    []reportRow
		Summary *Summary
		Size    int
	}{rows, sum, PreviewSize})
}

func relLink(dir, path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if rel, err := filepath.Rel(dir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// RenderPreview rasterizes the icon of res on top of a pin body painted with the contrast color.
func RenderPreview(res *Result, cfg Config, size int) (*image.NRGBA, error) {
	vb := cfg.Canvas.ViewBox
	doc := Assemble(res.Layers, vb, OutputConfig{KeepGroups: true, KeepViewBox: true})

	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("cannot parse the icon: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)

	body := imaging.New(size, size, res.Contrast.NRGBA())

	op := imop.InitOp()
	op.Set(imop.DstIn)
	pin := op.Draw(pinSilhouette(size, cfg.Canvas), body)

	op.Set(imop.SrcOver)
	return op.Draw(imaging.Clone(rgba), pin), nil
}

// pinSilhouette draws an opaque pin: a round head around the anchor with a tail
// pointing at the bottom center of the canvas.
func pinSilhouette(size int, cfg CanvasConfig) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	k := float64(size) / float64(cfg.ViewBox)
	cx, cy := cfg.AnchorX*k, cfg.AnchorY*k
	r := math.Max(cfg.TargetWidth, cfg.TargetHeight) * k * 0.75
	tip := float64(size)

	opaque := color.NRGBA{A: 0xff}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			in := math.Hypot(px-cx, py-cy) <= r
			if !in && py > cy && py < tip && tip > cy {
				half := r * (tip - py) / (tip - cy)
				in = math.Abs(px-cx) <= half
			}
			if in {
				img.SetNRGBA(x, y, opaque)
			}
		}
	}
	return img
}

func dataURI(img image.Image) (template.URL, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
