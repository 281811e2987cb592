package pinlogo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the conversion pipeline.
// The zero value is not usable, start from DefaultConfig.
type Config struct {
	Canvas   CanvasConfig   `yaml:"canvas"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Contrast ContrastConfig `yaml:"contrast"`
	Trace    TraceConfig    `yaml:"trace"`
	Output   OutputConfig   `yaml:"output"`
}

// CanvasConfig describes the icon geometry. Box and anchor are expressed in viewBox units.
type CanvasConfig struct {
	ViewBox      int     `yaml:"view_box"`
	Scale        int     `yaml:"scale"`
	TargetWidth  float64 `yaml:"target_width"`
	TargetHeight float64 `yaml:"target_height"`
	AnchorX      float64 `yaml:"anchor_x"`
	AnchorY      float64 `yaml:"anchor_y"`
}

// AnalysisConfig holds the classifier, mask and trim thresholds.
type AnalysisConfig struct {
	// Size is the side of the square the normalized image must fit in.
	Size          int `yaml:"size"`
	TrimThreshold int `yaml:"trim_threshold"`
	// ColorDistance separates foreground from background (Euclidean RGB).
	ColorDistance float64 `yaml:"color_distance"`
	// CenterDistance is the minimum corner/center separation of a box logo.
	CenterDistance float64 `yaml:"center_distance"`
	// CenterDominance is the share of pixels matching the center sample of a box logo.
	CenterDominance float64 `yaml:"center_dominance"`
	// TransparentFraction is the share of translucent pixels of a transparency-keyed image.
	TransparentFraction float64 `yaml:"transparent_fraction"`
	// UniformFraction is the share of pixels matching the corner of a uniform image.
	UniformFraction float64 `yaml:"uniform_fraction"`
	// PanelFraction is the share of opaque pixels away from the opaque mean
	// that reveals a background panel inside a transparent logo.
	PanelFraction float64 `yaml:"panel_fraction"`
	AlphaKeyed    uint8   `yaml:"alpha_keyed"`
	AlphaMask     uint8   `yaml:"alpha_mask"`
	AlphaBinarize uint8   `yaml:"alpha_binarize"`
	PaletteSize   int     `yaml:"palette_size"`
	// PaletteQuantum is the bucket width per channel of the palette histogram.
	PaletteQuantum int `yaml:"palette_quantum"`
}

// ContrastConfig drives the pin body color selection.
type ContrastConfig struct {
	LightThreshold float64 `yaml:"light_threshold"`
	Dark           RGB     `yaml:"dark"`
	Neutral        RGB     `yaml:"neutral"`
}

// TraceConfig is handed to the tracer.
type TraceConfig struct {
	TurdSize     int           `yaml:"turd_size"`
	AlphaMax     float64       `yaml:"alpha_max"`
	OptiCurve    bool          `yaml:"opti_curve"`
	OptTolerance float64       `yaml:"opt_tolerance"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
}

// OutputConfig controls the SVG assembler and optimizer.
type OutputConfig struct {
	Precision   int  `yaml:"precision"`
	KeepGroups  bool `yaml:"keep_groups"`
	KeepSize    bool `yaml:"keep_size"`
	KeepViewBox bool `yaml:"keep_view_box"`
}

// DefaultConfig returns the canonical defaults.
func DefaultConfig() Config {
	return Config{
		Canvas: CanvasConfig{
			ViewBox:      24,
			Scale:        10,
			TargetWidth:  12,
			TargetHeight: 12,
			AnchorX:      12,
			AnchorY:      10,
		},
		Analysis: AnalysisConfig{
			Size:                800,
			TrimThreshold:       10,
			ColorDistance:       45,
			CenterDistance:      50,
			CenterDominance:     0.40,
			TransparentFraction: 0.10,
			UniformFraction:     0.98,
			PanelFraction:       0.02,
			AlphaKeyed:          50,
			AlphaMask:           100,
			AlphaBinarize:       128,
			PaletteSize:         1,
			PaletteQuantum:      16,
		},
		Contrast: ContrastConfig{
			LightThreshold: 165,
			Dark:           RGB{0x33, 0x33, 0x33},
			Neutral:        RGB{0x80, 0x80, 0x80},
		},
		Trace: TraceConfig{
			TurdSize:     2,
			AlphaMax:     1.0,
			OptiCurve:    true,
			OptTolerance: 0.2,
			Timeout:      30 * time.Second,
			Retries:      1,
		},
		Output: OutputConfig{
			Precision:   4,
			KeepViewBox: true,
		},
	}
}

// LoadConfig reads a YAML file on top of the defaults.
// Keys missing from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// CanvasSize returns the side of the supersampled canvas in pixels.
func (c Config) CanvasSize() int {
	return c.Canvas.ViewBox * c.Canvas.Scale
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c Config) Validate() error {
	var errs []error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	fraction := func(v float64) bool { return v > 0 && v <= 1 }

	check(c.Canvas.ViewBox > 0, "canvas.view_box must be positive, got %d", c.Canvas.ViewBox)
	check(c.Canvas.Scale > 0, "canvas.scale must be positive, got %d", c.Canvas.Scale)
	check(c.Canvas.TargetWidth > 0, "canvas.target_width must be positive, got %v", c.Canvas.TargetWidth)
	check(c.Canvas.TargetHeight > 0, "canvas.target_height must be positive, got %v", c.Canvas.TargetHeight)

	check(c.Analysis.Size > 0, "analysis.size must be positive, got %d", c.Analysis.Size)
	check(c.Analysis.TrimThreshold >= 0, "analysis.trim_threshold must not be negative, got %d", c.Analysis.TrimThreshold)
	check(c.Analysis.ColorDistance > 0, "analysis.color_distance must be positive, got %v", c.Analysis.ColorDistance)
	check(c.Analysis.CenterDistance >= 0, "analysis.center_distance must not be negative, got %v", c.Analysis.CenterDistance)
	check(fraction(c.Analysis.CenterDominance), "analysis.center_dominance must be in (0, 1], got %v", c.Analysis.CenterDominance)
	check(fraction(c.Analysis.TransparentFraction), "analysis.transparent_fraction must be in (0, 1], got %v", c.Analysis.TransparentFraction)
	check(fraction(c.Analysis.UniformFraction), "analysis.uniform_fraction must be in (0, 1], got %v", c.Analysis.UniformFraction)
	check(fraction(c.Analysis.PanelFraction), "analysis.panel_fraction must be in (0, 1], got %v", c.Analysis.PanelFraction)
	check(c.Analysis.AlphaMask > 0, "analysis.alpha_mask must be positive")
	check(c.Analysis.AlphaBinarize > 0, "analysis.alpha_binarize must be positive")
	check(c.Analysis.PaletteSize >= 1, "analysis.palette_size must be at least 1, got %d", c.Analysis.PaletteSize)
	check(c.Analysis.PaletteQuantum >= 1 && c.Analysis.PaletteQuantum <= 256,
		"analysis.palette_quantum must be in [1, 256], got %d", c.Analysis.PaletteQuantum)

	check(c.Contrast.LightThreshold > 0 && c.Contrast.LightThreshold < 255,
		"contrast.light_threshold must be in (0, 255), got %v", c.Contrast.LightThreshold)
	check(c.Contrast.Dark.Luma() < c.Contrast.LightThreshold,
		"contrast.dark %s must be darker than contrast.light_threshold %v", c.Contrast.Dark, c.Contrast.LightThreshold)

	check(c.Trace.TurdSize >= 0, "trace.turd_size must not be negative, got %d", c.Trace.TurdSize)
	check(c.Trace.OptTolerance >= 0, "trace.opt_tolerance must not be negative, got %v", c.Trace.OptTolerance)
	check(c.Trace.Timeout >= 0, "trace.timeout must not be negative, got %v", c.Trace.Timeout)
	check(c.Trace.Retries >= 0, "trace.retries must not be negative, got %d", c.Trace.Retries)

	check(c.Output.Precision >= 0, "output.precision must not be negative, got %d", c.Output.Precision)

	return errors.Join(errs...)
}
