package render

import (
	nImage "image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/seventv/SpriteProcessor/src/layout"
	"golang.org/x/image/draw"
)

const (
	StatusWaiting = "Waiting for images"
	StatusReady   = "Ready to download"
	StatusTooBig  = "Sheet too large"
)

var (
	GridColor = color.NRGBA{R: 37, G: 99, B: 235, A: 153}
	// GridDash is the on and off length of the grid strokes.
	GridDash = [2]int{6, 6}
)

type Status struct {
	Count  int
	Width  int
	Height int
	Text   string

	// Placeholder is true while there is nothing to show.
	Placeholder bool
}

// Frame is the output of one render pass.
type Frame struct {
	Layout layout.Layout

	// Surface is what gets exported.
	Surface *nImage.NRGBA
	// Overlay holds the grid, it is never exported.
	Overlay *nImage.NRGBA

	Status Status
}

// Render lays out the items and draws them onto a fresh surface.
func Render(items []layout.Item, cfg layout.Config) *Frame {
	l := layout.Compute(items, cfg)

	f := &Frame{
		Layout:  l,
		Surface: &nImage.NRGBA{},
		Overlay: &nImage.NRGBA{},
		Status: Status{
			Count:  len(items),
			Width:  l.Width,
			Height: l.Height,
		},
	}

	switch {
	case l.Empty():
		f.Status.Text = StatusWaiting
		f.Status.Placeholder = true
		return f
	case l.Oversized():
		// nothing is allocated; exporting reports layout.ErrTooLarge
		f.Status.Text = StatusTooBig
		return f
	}

	f.Surface = nImage.NewNRGBA(nImage.Rect(0, 0, l.Width, l.Height))
	f.Overlay = nImage.NewNRGBA(nImage.Rect(0, 0, l.Width, l.Height))

	fill(f.Surface, cfg)

	for i, p := range l.Placements {
		img := items[i].Image
		if img == nil {
			continue
		}

		pt := p.Point()
		r := nImage.Rect(pt.X, pt.Y, pt.X+p.Width, pt.Y+p.Height)
		draw.Draw(f.Surface, r, img, img.Bounds().Min, draw.Over)
	}

	if cfg.Grid && cfg.Policy != layout.PolicyPacked {
		drawGrid(f.Overlay, l)
	}

	f.Status.Text = StatusReady

	return f
}

func fill(dst *nImage.NRGBA, cfg layout.Config) {
	if cfg.Transparent {
		return
	}

	bg := imaging.New(dst.Rect.Dx(), dst.Rect.Dy(), cfg.Background)
	copy(dst.Pix, bg.Pix)
}

func dashed(i int) bool {
	return i%(GridDash[0]+GridDash[1]) < GridDash[0]
}

func vline(dst *nImage.NRGBA, x, y0, y1 int) {
	for y := y0; y < y1; y++ {
		if dashed(y - y0) {
			dst.SetNRGBA(x, y, GridColor)
		}
	}
}

func hline(dst *nImage.NRGBA, y, x0, x1 int) {
	for x := x0; x < x1; x++ {
		if dashed(x - x0) {
			dst.SetNRGBA(x, y, GridColor)
		}
	}
}

// drawGrid strokes one dashed line per cell boundary and the bounding box.
// Points outside the surface are dropped by SetNRGBA.
func drawGrid(dst *nImage.NRGBA, l layout.Layout) {
	for _, x := range l.GridLines {
		vline(dst, x, 0, l.Height)
	}

	hline(dst, 0, 0, l.Width)
	hline(dst, l.Height-1, 0, l.Width)
	vline(dst, 0, 0, l.Height)
	vline(dst, l.Width-1, 0, l.Height)
}

// Display is the surface with the overlay on top, scaled by zoom. It is only
// meant for looking at and never replaces the exported surface.
func Display(f *Frame, zoom float64) *nImage.NRGBA {
	zoom = layout.ClampZoom(zoom)

	src := imaging.Clone(f.Surface)
	draw.Draw(src, src.Bounds(), f.Overlay, nImage.Point{}, draw.Over)

	w := int(float64(src.Rect.Dx())*zoom + 0.5)
	h := int(float64(src.Rect.Dy())*zoom + 0.5)

	// a zoomed view beyond the surface cap is shown unscaled
	if (layout.Layout{Width: w, Height: h}).Oversized() {
		return src
	}

	dst := nImage.NewNRGBA(nImage.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return dst
}
