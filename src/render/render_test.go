package render

import (
	nImage "image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/seventv/SpriteProcessor/src/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

func solid(w, h int, c color.NRGBA) layout.Item {
	return layout.Item{ID: uuid.New(), Width: w, Height: h, Image: imaging.New(w, h, c)}
}

func scenario() ([]layout.Item, layout.Config) {
	cfg := layout.DefaultConfig()
	cfg.Padding = 10
	cfg.Align = layout.AlignBottom

	return []layout.Item{solid(100, 50, red), solid(80, 60, blue)}, cfg
}

func TestRenderScenario(t *testing.T) {
	f := Render(scenario())

	require.Equal(t, nImage.Rect(0, 0, 230, 80), f.Surface.Bounds())
	assert.Equal(t, Status{Count: 2, Width: 230, Height: 80, Text: StatusReady}, f.Status)

	assert.Equal(t, red, f.Surface.NRGBAAt(10, 20))
	assert.Equal(t, red, f.Surface.NRGBAAt(109, 69))
	assert.Equal(t, layout.DefaultBackground, f.Surface.NRGBAAt(10, 19))
	assert.Equal(t, blue, f.Surface.NRGBAAt(130, 10))
	assert.Equal(t, blue, f.Surface.NRGBAAt(209, 69))
	assert.Equal(t, layout.DefaultBackground, f.Surface.NRGBAAt(129, 10))
	assert.Equal(t, layout.DefaultBackground, f.Surface.NRGBAAt(229, 79))
}

func TestRenderTransparent(t *testing.T) {
	items, cfg := scenario()
	cfg.Transparent = true

	f := Render(items, cfg)

	assert.Equal(t, color.NRGBA{}, f.Surface.NRGBAAt(0, 0))
	assert.Equal(t, red, f.Surface.NRGBAAt(10, 20))
}

func TestRenderEmpty(t *testing.T) {
	f := Render(nil, layout.DefaultConfig())

	assert.Equal(t, 0, f.Surface.Bounds().Dx())
	assert.Equal(t, 0, f.Surface.Bounds().Dy())
	assert.Equal(t, StatusWaiting, f.Status.Text)
	assert.True(t, f.Status.Placeholder)
	assert.Equal(t, 0, f.Status.Count)
}

func TestRenderOversizedAllocatesNothing(t *testing.T) {
	// no raster: the layout alone decides the size
	items := []layout.Item{{ID: uuid.New(), Width: 1 << 20, Height: 1 << 9}}

	f := Render(items, layout.DefaultConfig())

	assert.True(t, f.Layout.Oversized())
	assert.Equal(t, 0, f.Surface.Bounds().Dx())
	assert.Equal(t, 0, f.Overlay.Bounds().Dx())
	assert.Equal(t, Status{Count: 1, Width: 1 << 20, Height: 1 << 9, Text: StatusTooBig}, f.Status)
	assert.Equal(t, 0, Display(f, 2).Bounds().Dx())
}

func TestRenderIdempotent(t *testing.T) {
	items, cfg := scenario()
	cfg.Align = layout.AlignCenter

	a := Render(items, cfg)
	b := Render(items, cfg)

	assert.Equal(t, a.Surface.Rect, b.Surface.Rect)
	assert.Equal(t, a.Surface.Pix, b.Surface.Pix)
}

func TestRenderGridOverlay(t *testing.T) {
	items, cfg := scenario()
	plain := Render(items, cfg)

	cfg.Grid = true
	f := Render(items, cfg)

	assert.Equal(t, plain.Surface.Pix, f.Surface.Pix, "grid must not touch the exported surface")

	assert.Equal(t, GridColor, f.Overlay.NRGBAAt(110, 0))
	assert.Equal(t, GridColor, f.Overlay.NRGBAAt(110, 13))
	assert.Equal(t, color.NRGBA{}, f.Overlay.NRGBAAt(110, 7))
	assert.Equal(t, GridColor, f.Overlay.NRGBAAt(229, 0))
	assert.Equal(t, color.NRGBA{}, f.Overlay.NRGBAAt(50, 40))

	cfg.Policy = layout.PolicyPacked
	packed := Render(items, cfg)
	for _, v := range packed.Overlay.Pix {
		require.Zero(t, v)
	}
}

func TestDisplay(t *testing.T) {
	f := Render(scenario())

	assert.Equal(t, nImage.Rect(0, 0, 460, 160), Display(f, 2).Bounds())
	assert.Equal(t, nImage.Rect(0, 0, 460, 160), Display(f, 3).Bounds())
	assert.Equal(t, nImage.Rect(0, 0, 58, 20), Display(f, -1).Bounds())
	assert.Equal(t, 230, f.Surface.Bounds().Dx())

	empty := Render(nil, layout.DefaultConfig())
	assert.Equal(t, 0, Display(empty, 1).Bounds().Dx())
}
