package pinlogo

import (
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacement_Defaults(t *testing.T) {
	cfg := DefaultConfig().Canvas
	p := ComputePlacement(100, 50, cfg)

	assert.Equal(t, image.Rect(0, 0, 240, 240), p.Canvas)
	assert.Equal(t, image.Rect(60, 40, 180, 160), p.Box)
	assert.Equal(t, image.Rect(60, 70, 180, 130), p.Content)
}

func TestPlacement_TallContent(t *testing.T) {
	cfg := DefaultConfig().Canvas
	p := ComputePlacement(10, 40, cfg)

	assert.Equal(t, 30, p.Content.Dx())
	assert.Equal(t, 120, p.Content.Dy())
	assert.Equal(t, 105, p.Content.Min.X)
}

func TestPlacement_StaysInsideCanvas(t *testing.T) {
	boxes := []float64{1, 6, 12, 20, 24, 30}
	anchors := []float64{0, 2, 12, 22, 24}

	for _, box := range boxes {
		for _, ax := range anchors {
			for _, ay := range anchors {
				cfg := DefaultConfig().Canvas
				cfg.TargetWidth, cfg.TargetHeight = box, box/2
				cfg.AnchorX, cfg.AnchorY = ax, ay

				for _, size := range []image.Point{{1, 1}, {300, 7}, {7, 300}, {50, 50}} {
					t.Run(fmt.Sprintf("box=%v/anchor=%v,%v/size=%v", box, ax, ay, size), func(t *testing.T) {
						p := ComputePlacement(size.X, size.Y, cfg)

						assert.True(t, p.Box.Min.X >= 0 && p.Box.Min.Y >= 0)
						assert.True(t, p.Box.In(p.Canvas), "box %v canvas %v", p.Box, p.Canvas)
						assert.True(t, p.Content.In(p.Box), "content %v box %v", p.Content, p.Box)
						assert.False(t, p.Content.Empty())
					})
				}
			}
		}
	}
}

func TestPlacement_EmptyContent(t *testing.T) {
	p := ComputePlacement(0, 0, DefaultConfig().Canvas)
	assert.True(t, p.Content.Empty())
	assert.Equal(t, p.Box.Min, p.Content.Min)
}

func TestPlacement_Place(t *testing.T) {
	cfg := DefaultConfig()
	m := maskWithRects(10, 10, image.Rect(0, 0, 10, 10))

	placed, p := Place([]*Mask{m}, cfg)
	require.Len(t, placed, 1)

	canvas := placed[0]
	assert.Equal(t, p.Canvas, canvas.Bounds())
	assert.True(t, canvas.Foreground(120, 100))
	assert.True(t, canvas.Foreground(61, 41))
	assert.False(t, canvas.Foreground(5, 5))
	assert.False(t, canvas.Foreground(200, 200))
	assert.InDelta(t, 120*120, canvas.Count(), 2*4*120)
}

func TestPlacement_PlaceEmptyMask(t *testing.T) {
	placed, _ := Place([]*Mask{NewMask(image.Rect(0, 0, 30, 30))}, DefaultConfig())
	assert.Zero(t, placed[0].Count())
}
