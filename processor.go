package pinlogo

import (
	"context"
	"errors"
	"image"
	"io"

	"go.uber.org/zap"
)

// Processor converts raster logos into pin icons.
type Processor struct {
	Config Config
	// Tracer vectorizes the placed masks. PotraceTracer is used when nil.
	Tracer Tracer
	// Logger receives the pipeline events. Logging is disabled when nil.
	Logger *zap.Logger
}

// NewProcessor returns a processor using the potrace tracer.
func NewProcessor(cfg Config, logger *zap.Logger) *Processor {
	return &Processor{
		Config: cfg,
		Tracer: PotraceTracer{},
		Logger: logger,
	}
}

// Result is the outcome of a single logo conversion.
type Result struct {
	Model   BackgroundModel
	Palette []PaletteEntry
	// Fill is the rank-1 foreground color.
	Fill RGB
	// Contrast is the suggested pin body color.
	Contrast RGB
	Layers   []Layer
	// Assembled is the SVG document before optimization.
	Assembled []byte
	SVG       []byte
	// LowConfidence is set when no foreground was found and the fallback color was used.
	LowConfidence bool
	// Bounds is the tight box of the logo in analysis image coordinates.
	Bounds    image.Rectangle
	Placement Placement
}

// Method returns the label of the background detection strategy.
func (r *Result) Method() string {
	return r.Model.Method.String()
}

// PathData returns the path data of every layer.
func (r *Result) PathData() []string {
	var paths []string
	for _, l := range r.Layers {
		paths = append(paths, l.Paths...)
	}
	return paths
}

func (p *Processor) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Processor) tracer() Tracer {
	if p.Tracer == nil {
		return PotraceTracer{}
	}
	return p.Tracer
}

// Convert runs the whole pipeline on the image read from r.
func (p *Processor) Convert(ctx context.Context, r io.Reader) (*Result, error) {
	cfg := p.Config
	log := p.logger()

	src, err := Decode(r)
	if err != nil {
		return nil, err
	}

	norm := Normalize(src, cfg.Analysis)
	model := Classify(norm, cfg.Analysis)
	ext := Extract(norm.Image, model, cfg.Analysis)

	log.Debug("classified",
		zap.Stringer("method", model.Method),
		zap.Stringer("background", model.Background.RGB),
		zap.Stringer("sample", model.Background.Source),
		zap.Bool("panel", model.Panel),
		zap.Int("colors", len(ext.Palette)),
	)
	if ext.LowConfidence {
		log.Warn("low confidence", zap.Error(ErrEmptyForeground))
	}

	masks, bounds := TrimMasks(ext.Layers, cfg.Analysis.TrimThreshold)
	placed, placement := Place(masks, cfg)

	res := &Result{
		Model:         model,
		Palette:       ext.Palette,
		Fill:          ext.Fill(),
		LowConfidence: ext.LowConfidence,
		Bounds:        bounds,
		Placement:     placement,
	}
	res.Contrast = Contrast(res.Fill, model, cfg.Contrast)

	opts := TraceOptions{
		TurdSize:     cfg.Trace.TurdSize,
		AlphaMax:     cfg.Trace.AlphaMax,
		OptiCurve:    cfg.Trace.OptiCurve,
		OptTolerance: cfg.Trace.OptTolerance,
		Scale:        float64(cfg.Canvas.Scale),
	}

	var traced, ink int
	for i, m := range placed {
		layer := Layer{Fill: ext.Palette[i].Color}
		if !ext.LowConfidence {
			ink += m.Count()
			layer.Paths, err = traceLayer(ctx, p.tracer(), m, opts, cfg.Trace)
			if err != nil {
				return nil, err
			}
			traced += len(layer.Paths)
		}
		res.Layers = append(res.Layers, layer)
	}
	if traced == 0 && ink > 0 {
		return nil, &TracerError{Err: errors.New("no path data for a non-empty mask")}
	}

	res.Assembled = Assemble(res.Layers, cfg.Canvas.ViewBox, cfg.Output)
	if res.SVG, err = Optimize(res.Assembled, cfg.Output); err != nil {
		return nil, err
	}

	return res, nil
}

// Process converts the image read from r and writes the optimized SVG to w.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) (*Result, error) {
	res, err := p.Convert(ctx, r)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(res.SVG); err != nil {
		return nil, &WriteError{Path: writerName(w), Err: err}
	}
	return res, nil
}

func writerName(w io.Writer) string {
	if f, ok := w.(interface{ Name() string }); ok {
		return f.Name()
	}
	return "output"
}
