package pinlogo

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/dennwc/gotrace"
)

// TraceOptions are the parameters handed to a Tracer.
type TraceOptions struct {
	// TurdSize suppresses speckles up to this many pixels.
	TurdSize int
	// AlphaMax is the corner threshold.
	AlphaMax float64
	// OptiCurve enables the curve optimization with OptTolerance.
	OptiCurve    bool
	OptTolerance float64
	// Scale divides every emitted coordinate, mapping canvas pixels back to viewBox units.
	Scale float64
}

// Tracer converts a binary raster into SVG path data.
// Dark pixels of img are foreground.
type Tracer interface {
	Trace(ctx context.Context, img image.Image, opts TraceOptions) ([]string, error)
}

// PotraceTracer traces bitmaps with the potrace algorithm.
type PotraceTracer struct{}

// Trace implements the Tracer interface. Each returned string holds one outer
// contour together with its holes.
func (PotraceTracer) Trace(ctx context.Context, img image.Image, opts TraceOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var bm *gotrace.Bitmap
	// NewBitmapFromImage indexes the image from (0, 0).
	if img.Bounds().Min == (image.Point{}) {
		bm = gotrace.NewBitmapFromImage(img, func(_, _ int, c color.Color) bool {
			return isInk(c)
		})
	} else {
		bm = bitmapFromOffsetImage(img)
	}

	type result struct {
		paths []gotrace.Path
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("tracer panic: %v", r)}
			}
		}()
		paths, err := gotrace.Trace(bm, &gotrace.Params{
			TurdSize:     opts.TurdSize,
			TurnPolicy:   gotrace.TurnMinority,
			AlphaMax:     opts.AlphaMax,
			OptiCurve:    opts.OptiCurve,
			OptTolerance: opts.OptTolerance,
		})
		done <- result{paths: paths, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		scale := opts.Scale
		if scale <= 0 {
			scale = 1
		}
		var out []string
		for _, p := range res.paths {
			out = appendPathData(out, p, scale)
		}
		return out, nil
	}
}

func bitmapFromOffsetImage(img image.Image) *gotrace.Bitmap {
	b := img.Bounds()
	bm := gotrace.NewBitmap(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			bm.Set(x, y, isInk(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return bm
}

func isInk(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < 0x80
}

// appendPathData writes the contour p and its direct holes as a single path.
// Shapes nested inside the holes start new paths.
func appendPathData(out []string, p gotrace.Path, scale float64) []string {
	var sb strings.Builder
	writeCurve(&sb, p.Curve, scale)
	for _, hole := range p.Childs {
		writeCurve(&sb, hole.Curve, scale)
	}
	if sb.Len() > 0 {
		out = append(out, sb.String())
	}
	for _, hole := range p.Childs {
		for _, inner := range hole.Childs {
			out = appendPathData(out, inner, scale)
		}
	}
	return out
}

func writeCurve(sb *strings.Builder, curve []gotrace.Segment, scale float64) {
	if len(curve) == 0 {
		return
	}
	point := func(p gotrace.Point) {
		sb.WriteString(formatCoord(p.X / scale))
		sb.WriteByte(',')
		sb.WriteString(formatCoord(p.Y / scale))
	}

	// The end point of the last segment is the start point of the curve.
	sb.WriteByte('M')
	point(curve[len(curve)-1].Pnt[2])
	for _, s := range curve {
		switch s.Type {
		case gotrace.TypeCorner:
			sb.WriteByte('L')
			point(s.Pnt[1])
			sb.WriteByte('L')
			point(s.Pnt[2])
		case gotrace.TypeBezier:
			sb.WriteByte('C')
			point(s.Pnt[0])
			sb.WriteByte(' ')
			point(s.Pnt[1])
			sb.WriteByte(' ')
			point(s.Pnt[2])
		}
	}
	sb.WriteByte('Z')
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// temporary is implemented by errors worth another attempt.
type temporary interface {
	Temporary() bool
}

func isTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}

// traceLayer runs the tracer under the configured timeout, retrying transient failures.
func traceLayer(ctx context.Context, t Tracer, img image.Image, opts TraceOptions, cfg TraceConfig) ([]string, error) {
	var err error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		var paths []string
		paths, err = traceOnce(ctx, t, img, opts, cfg)
		if err == nil {
			return paths, nil
		}
		if ctx.Err() != nil || !isTemporary(err) {
			break
		}
	}
	return nil, &TracerError{Err: err}
}

func traceOnce(ctx context.Context, t Tracer, img image.Image, opts TraceOptions, cfg TraceConfig) ([]string, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	return t.Trace(ctx, img, opts)
}
