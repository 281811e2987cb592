package pinlogo

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func convert(t *testing.T, p *Processor, img image.Image) (*Result, error) {
	t.Helper()
	return p.Convert(context.Background(), bytes.NewReader(encodePNG(t, img)))
}

func TestProcessor_RedSquareOnWhite(t *testing.T) {
	res, err := convert(t, NewProcessor(DefaultConfig(), nil), scenarioRedSquare())
	require.NoError(t, err)

	assert.Equal(t, "opaque-corner", res.Method())
	assert.Equal(t, White, res.Model.Background.RGB)
	assert.Equal(t, "#ff0000", res.Fill.Hex())
	assert.Equal(t, White, res.Contrast)
	assert.False(t, res.LowConfidence)
	assert.Equal(t, image.Rect(0, 0, 32, 32), res.Bounds)
	assert.Equal(t, image.Rect(60, 40, 180, 160), res.Placement.Content)

	require.Len(t, res.Layers, 1)
	assert.NotEmpty(t, res.PathData())
	assert.Contains(t, string(res.Assembled), `fill="#ff0000"`)
	assert.True(t, bytes.HasPrefix(res.SVG, []byte("<svg")))
}

func TestProcessor_BlackDiskOnTransparent(t *testing.T) {
	res, err := convert(t, NewProcessor(DefaultConfig(), nil), scenarioBlackDisk())
	require.NoError(t, err)

	assert.Equal(t, Transparent, res.Model.Method)
	assert.Less(t, res.Fill.Distance(Black), 10.0)
	assert.Equal(t, DefaultConfig().Contrast.Neutral, res.Contrast)
	assert.NotEmpty(t, res.PathData())
}

func TestProcessor_BluePanel(t *testing.T) {
	res, err := convert(t, NewProcessor(DefaultConfig(), nil), scenarioBluePanel())
	require.NoError(t, err)

	assert.Equal(t, OpaqueCornerDominant, res.Model.Method)
	assert.Equal(t, "#0000ff", res.Model.Background.Hex())
	assert.Equal(t, "#ffffff", res.Fill.Hex())
	assert.Equal(t, "#0000ff", res.Contrast.Hex())
}

func TestProcessor_FullBleedPanel(t *testing.T) {
	res, err := convert(t, NewProcessor(DefaultConfig(), nil), scenarioFullBleedPanel())
	require.NoError(t, err)

	assert.Equal(t, "opaque-corner", res.Method())
	assert.Equal(t, "#0000ff", res.Model.Background.Hex())
	assert.Equal(t, "#ffffff", res.Fill.Hex())
	assert.Equal(t, "#0000ff", res.Contrast.Hex())
	assert.Len(t, res.PathData(), 3)
}

func TestProcessor_AllWhiteIsLowConfidence(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewProcessor(DefaultConfig(), zap.New(core))

	res, err := convert(t, p, newFilledImage(48, 48, opaqueWhite))
	require.NoError(t, err)

	assert.True(t, res.LowConfidence)
	assert.Equal(t, Black, res.Fill)
	assert.Empty(t, res.PathData())
	assert.Contains(t, string(res.SVG), "svg")
	assert.Equal(t, 1, logs.FilterMessage("low confidence").Len())
}

func TestProcessor_DecodeError(t *testing.T) {
	p := NewProcessor(DefaultConfig(), nil)
	_, err := p.Convert(context.Background(), strings.NewReader("definitely not a logo"))

	var decErr *DecodeError
	assert.True(t, errors.As(err, &decErr))
}

type silentTracer struct{}

func (silentTracer) Trace(context.Context, image.Image, TraceOptions) ([]string, error) {
	return nil, nil
}

func TestProcessor_NoPathsIsTracerError(t *testing.T) {
	p := &Processor{Config: DefaultConfig(), Tracer: silentTracer{}}
	_, err := convert(t, p, scenarioRedSquare())

	var trcErr *TracerError
	assert.True(t, errors.As(err, &trcErr))
}

func TestProcessor_MultiColorLayers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.PaletteSize = 2

	img := newFilledImage(100, 100, opaqueWhite)
	fillRect(img, image.Rect(10, 30, 45, 90), opaqueRed)
	fillRect(img, image.Rect(55, 10, 90, 50), opaqueBlue)

	res, err := convert(t, NewProcessor(cfg, nil), img)
	require.NoError(t, err)

	require.Len(t, res.Layers, 2)
	assert.Equal(t, RGBFromNRGBA(opaqueRed), res.Layers[0].Fill)
	assert.Equal(t, RGBFromNRGBA(opaqueBlue), res.Layers[1].Fill)
	for _, l := range res.Layers {
		assert.NotEmpty(t, l.Paths)
	}
	assert.Equal(t, res.Layers[0].Fill, res.Fill)
}

func TestProcessor_Process(t *testing.T) {
	var out bytes.Buffer
	p := NewProcessor(DefaultConfig(), nil)

	res, err := p.Process(context.Background(), bytes.NewReader(encodePNG(t, scenarioRedSquare())), &out)
	require.NoError(t, err)
	assert.Equal(t, res.SVG, out.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestProcessor_ProcessWriteError(t *testing.T) {
	p := NewProcessor(DefaultConfig(), nil)
	_, err := p.Process(context.Background(), bytes.NewReader(encodePNG(t, scenarioRedSquare())), failingWriter{})

	var wrtErr *WriteError
	assert.True(t, errors.As(err, &wrtErr))
}

func TestProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(DefaultConfig(), nil)
	_, err := p.Convert(ctx, bytes.NewReader(encodePNG(t, scenarioRedSquare())))

	var trcErr *TracerError
	assert.ErrorAs(t, err, &trcErr)
	assert.ErrorIs(t, err, context.Canceled)
}
