package layout

import (
	"fmt"
	nImage "image"
	"image/color"
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxSurface is the largest sheet, in pixels, that is ever allocated.
const MaxSurface = 1 << 28

var ErrTooLarge = fmt.Errorf("sheet too large")

type Policy string

const (
	// PolicyEqual gives every image a cell as wide as the widest image.
	PolicyEqual Policy = "equal"
	// PolicyPacked places images back to back at their own width.
	PolicyPacked Policy = "packed"
)

type Align string

const (
	AlignTop    Align = "top"
	AlignCenter Align = "center"
	AlignBottom Align = "bottom"
)

// Config is the normalised sheet configuration.
type Config struct {
	Policy      Policy
	Padding     int
	Align       Align
	Background  color.NRGBA
	Transparent bool
	Grid        bool
	FrameSpeed  time.Duration
	Zoom        float64
	FileName    string
}

func DefaultConfig() Config {
	return Config{
		Policy:     PolicyEqual,
		Align:      AlignTop,
		Background: DefaultBackground,
		FrameSpeed: DefaultFrameSpeed,
		Zoom:       1,
		FileName:   DefaultFileName,
	}
}

// Item is the part of a loaded image the layout and the renderers need.
type Item struct {
	ID      uuid.UUID
	Width   int
	Height  int
	OffsetX int
	Image   nImage.Image
}

type Placement struct {
	ID     uuid.UUID
	X      float64
	Y      float64
	Width  int
	Height int
}

// Point is the pixel the placement is drawn at.
func (p Placement) Point() nImage.Point {
	return nImage.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
}

type Layout struct {
	Width  int
	Height int

	// CellWidth is the widest image; BandHeight the tallest.
	CellWidth  int
	BandHeight int

	// Placements follow the order of the items.
	Placements []Placement

	// GridLines are the x positions of the cell boundaries, equal-cell only.
	GridLines []int
}

func (l Layout) Empty() bool {
	return len(l.Placements) == 0
}

// Oversized reports whether the sheet is beyond MaxSurface and must not be
// allocated.
func (l Layout) Oversized() bool {
	if l.Width <= 0 || l.Height <= 0 {
		return false
	}

	return l.Width > MaxSurface/l.Height
}

// Compute maps the items and configuration to a sheet size and a position for
// every item. An empty input yields a zero sized layout.
func Compute(items []Item, cfg Config) Layout {
	if len(items) == 0 {
		return Layout{}
	}

	padding := min(max(cfg.Padding, 0), MaxPadding)

	maxWidth, maxHeight, sumWidth := 0, 0, 0
	for _, item := range items {
		if item.Width > maxWidth {
			maxWidth = item.Width
		}
		if item.Height > maxHeight {
			maxHeight = item.Height
		}
		sumWidth += item.Width
	}

	n := len(items)
	l := Layout{
		Height:     maxHeight + padding*2,
		CellWidth:  maxWidth,
		BandHeight: maxHeight,
		Placements: make([]Placement, n),
	}

	cursorX := float64(padding)
	for i, item := range items {
		p := Placement{
			ID:     item.ID,
			Y:      offsetY(cfg.Align, padding, maxHeight, item.Height),
			Width:  item.Width,
			Height: item.Height,
		}

		switch cfg.Policy {
		case PolicyPacked:
			p.X = cursorX
			cursorX += float64(item.Width + padding)
		default:
			// offsets are not clamped, an image may leave its cell
			p.X = cursorX + float64(maxWidth-item.Width)/2 + float64(item.OffsetX)
			cursorX += float64(maxWidth + padding)
		}

		l.Placements[i] = p
	}

	switch cfg.Policy {
	case PolicyPacked:
		l.Width = sumWidth + padding*(n+1)
	default:
		l.Width = maxWidth*n + padding*(n+1)
		l.GridLines = make([]int, n+1)
		for i := range l.GridLines {
			l.GridLines[i] = i * (maxWidth + padding)
		}
	}

	return l
}

func offsetY(align Align, padding, bandHeight, height int) float64 {
	switch align {
	case AlignCenter:
		return float64(padding) + float64(bandHeight-height)/2
	case AlignBottom:
		return float64(padding + bandHeight - height)
	default:
		return float64(padding)
	}
}
