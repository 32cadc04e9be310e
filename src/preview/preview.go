package preview

import (
	"context"
	"fmt"
	nImage "image"
	"image/color"
	"image/color/palette"
	"io"
	"sync"
	"time"

	nGif "image/gif"

	"github.com/disintegration/imaging"
	"github.com/seventv/SpriteProcessor/src/layout"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

var ErrNothingToPreview = fmt.Errorf("nothing to preview")

type State int

const (
	Playing State = iota
	Paused
)

func (s State) String() string {
	if s == Paused {
		return "paused"
	}

	return "playing"
}

// Source hands out a consistent copy of the images and configuration.
type Source interface {
	Snapshot() ([]layout.Item, layout.Config)
}

// Previewer cycles through the images one frame per tick.
type Previewer struct {
	src Source

	mtx      sync.Mutex
	state    State
	index    int
	interval time.Duration
	frame    *nImage.NRGBA

	restart chan struct{}
	onFrame func(index int, frame *nImage.NRGBA)
}

type Option func(*Previewer)

// OnFrame is called with every frame drawn.
func OnFrame(fn func(index int, frame *nImage.NRGBA)) Option {
	return func(p *Previewer) {
		p.onFrame = fn
	}
}

func New(src Source, interval time.Duration, opts ...Option) *Previewer {
	if interval < layout.MinFrameSpeed {
		interval = layout.MinFrameSpeed
	}

	p := &Previewer{
		src:      src,
		state:    Playing,
		interval: interval,
		frame:    &nImage.NRGBA{},
		restart:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run drives the ticker until ctx is done.
func (p *Previewer) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.restart:
			ticker.Reset(p.Interval())
			logrus.Debug("preview speed changed: ", p.Interval())
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Tick advances one frame while playing.
func (p *Previewer) Tick() {
	items, cfg := p.src.Snapshot()

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.state != Playing {
		return
	}

	n := len(items)
	if n < 1 {
		n = 1
	}
	p.index = (p.index + 1) % n
	p.draw(items, cfg)
}

// Toggle flips between playing and paused. Resuming redraws the current
// frame right away.
func (p *Previewer) Toggle() State {
	items, cfg := p.src.Snapshot()

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.state == Playing {
		p.state = Paused
	} else {
		p.state = Playing
		p.draw(items, cfg)
	}

	return p.state
}

// SetSpeed changes the tick interval. The frame index is kept.
func (p *Previewer) SetSpeed(d time.Duration) {
	if d < layout.MinFrameSpeed {
		d = layout.MinFrameSpeed
	}

	p.mtx.Lock()
	p.interval = d
	p.mtx.Unlock()

	select {
	case p.restart <- struct{}{}:
	default:
	}
}

// Reset goes back to the first frame and draws it.
func (p *Previewer) Reset() {
	items, cfg := p.src.Snapshot()

	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.index = 0
	p.draw(items, cfg)
}

// Draw redraws the current frame.
func (p *Previewer) Draw() {
	items, cfg := p.src.Snapshot()

	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.draw(items, cfg)
}

func (p *Previewer) draw(items []layout.Item, cfg layout.Config) {
	p.frame = DrawFrame(items, cfg, p.index)
	if p.onFrame != nil {
		p.onFrame(p.index, p.frame)
	}
}

func (p *Previewer) Frame() (*nImage.NRGBA, int) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.frame, p.index
}

func (p *Previewer) State() State {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.state
}

func (p *Previewer) Interval() time.Duration {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.interval
}

// DrawFrame draws image index modulo the item count centred in a surface the
// size of the largest image, shifted by its horizontal offset like in the
// equal-cell sheet.
func DrawFrame(items []layout.Item, cfg layout.Config, index int) *nImage.NRGBA {
	if len(items) == 0 {
		return &nImage.NRGBA{}
	}

	maxWidth, maxHeight := 0, 0
	for _, item := range items {
		if item.Width > maxWidth {
			maxWidth = item.Width
		}
		if item.Height > maxHeight {
			maxHeight = item.Height
		}
	}

	if (layout.Layout{Width: maxWidth, Height: maxHeight}).Oversized() {
		return &nImage.NRGBA{}
	}

	var dst *nImage.NRGBA
	if cfg.Transparent {
		dst = nImage.NewNRGBA(nImage.Rect(0, 0, maxWidth, maxHeight))
	} else {
		dst = imaging.New(maxWidth, maxHeight, cfg.Background)
	}

	item := items[index%len(items)]
	if item.Image == nil {
		return dst
	}

	x := (maxWidth-item.Width)/2 + item.OffsetX
	y := (maxHeight - item.Height) / 2
	draw.Draw(dst, nImage.Rect(x, y, x+item.Width, y+item.Height), item.Image, item.Image.Bounds().Min, draw.Over)

	return dst
}

// EncodeGIF writes one loop over all images as an animated gif.
func EncodeGIF(w io.Writer, items []layout.Item, cfg layout.Config) error {
	if len(items) == 0 {
		return ErrNothingToPreview
	}

	delay := int(cfg.FrameSpeed / (10 * time.Millisecond))
	if delay < 2 {
		delay = 2
	}

	pal := append(color.Palette{color.Transparent}, palette.WebSafe...)

	anim := &nGif.GIF{}
	for i := range items {
		frame := DrawFrame(items, cfg, i)

		paletted := nImage.NewPaletted(frame.Bounds(), pal)
		draw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, nImage.Point{})

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, nGif.DisposalBackground)
	}

	return nGif.EncodeAll(w, anim)
}
