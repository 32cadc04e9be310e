package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	nImage "image"
	"io"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/seventv/SpriteProcessor/src/configure"
	"github.com/seventv/SpriteProcessor/src/containers"
	"github.com/seventv/SpriteProcessor/src/export"
	"github.com/seventv/SpriteProcessor/src/image"
	"github.com/seventv/SpriteProcessor/src/job"
	"github.com/seventv/SpriteProcessor/src/layout"
	"github.com/seventv/SpriteProcessor/src/loader"
	"github.com/seventv/SpriteProcessor/src/preview"
	"github.com/seventv/SpriteProcessor/src/render"
	"github.com/seventv/SpriteProcessor/src/store"
	"github.com/sirupsen/logrus"
)

// App is the sheet editor state. Every command runs under one lock and leaves
// a freshly rendered frame behind.
type App struct {
	mtx   sync.Mutex
	store *store.Store
	cfg   layout.Config
	frame *render.Frame

	queue   *loader.Queue
	preview *preview.Previewer
}

func New(ctx context.Context, cfg layout.Config) *App {
	a := &App{cfg: cfg}

	a.store = store.New(
		store.OnChange(a.rerender),
		store.OnRelease(func(img *image.LoadedImage) {
			logrus.WithField("id", img.ID).Debug("image released")
		}),
	)
	a.queue = loader.NewQueue(ctx)
	a.preview = preview.New(a, cfg.FrameSpeed)

	a.rerender()

	return a
}

// ConfigFromSheet normalises the free-form sheet settings.
func ConfigFromSheet(s configure.Sheet) layout.Config {
	cfg := layout.DefaultConfig()

	cfg.Policy = layout.ParsePolicy(s.Policy)
	cfg.Padding = layout.ParsePadding(s.Padding)
	cfg.Align = layout.ParseAlign(s.Align)
	cfg.Transparent = s.Transparent
	cfg.Grid = s.Grid
	cfg.FrameSpeed = layout.ParseFrameSpeed(s.FrameSpeed)
	cfg.FileName = layout.FileName(s.FileName)

	if s.Zoom != 0 {
		cfg.Zoom = layout.ClampZoom(s.Zoom)
	}

	if s.Background != "" {
		bg, err := layout.ParseBackground(s.Background)
		if err != nil {
			logrus.Warnf("bad background %q, using default: %s", s.Background, err.Error())
		}
		cfg.Background = bg
	}

	return cfg
}

// Close stops the load queue.
func (a *App) Close() {
	a.queue.Close()
}

// RunPreview drives the animation preview until ctx is done.
func (a *App) RunPreview(ctx context.Context) {
	a.preview.Run(ctx)
}

func (a *App) Preview() *preview.Previewer {
	return a.preview
}

// rerender must be called with mtx held.
func (a *App) rerender() {
	a.frame = render.Render(a.items(), a.cfg)

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Trace(spew.Sdump(a.frame.Layout))
	}
}

func (a *App) items() []layout.Item {
	imgs := a.store.Items()
	items := make([]layout.Item, len(imgs))
	for i, img := range imgs {
		items[i] = layout.Item{
			ID:      img.ID,
			Width:   img.Width,
			Height:  img.Height,
			OffsetX: img.OffsetX,
			Image:   img.Raster.Image(),
		}
	}

	return items
}

// mutate runs fn under the lock, then redraws the preview frame.
func (a *App) mutate(fn func()) {
	a.mtx.Lock()
	fn()
	a.mtx.Unlock()

	a.preview.Draw()
}

func (a *App) setConfig(fn func(cfg *layout.Config)) {
	a.mutate(func() {
		fn(&a.cfg)
		a.rerender()
	})
}

// Snapshot implements preview.Source.
func (a *App) Snapshot() ([]layout.Item, layout.Config) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.items(), a.cfg
}

// AddFiles loads files in order and appends each one as soon as it decoded.
// Non-image files are skipped silently. Files that fail to decode are skipped
// too and their errors are returned together.
func (a *App) AddFiles(ctx context.Context, files []loader.File) ([]*image.LoadedImage, error) {
	if len(files) == 0 {
		return nil, nil
	}

	pending := make([]<-chan loader.Result, len(files))
	for i, f := range files {
		pending[i] = a.queue.Enqueue(f)
	}

	var (
		added []*image.LoadedImage
		err   error
	)

	for i, ch := range pending {
		var res loader.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			go discard(pending[i:])
			return added, multierror.Append(err, ctx.Err()).ErrorOrNil()
		}

		switch {
		case errors.Is(res.Err, loader.ErrNotImage):
			logrus.Debug("skipping non image file: ", res.File.Name)
			continue
		case res.Err != nil:
			logrus.WithError(res.Err).Warn("failed to load image")
			err = multierror.Append(err, res.Err)
			continue
		}

		a.mutate(func() {
			a.store.Append(res.Image)
		})
		added = append(added, res.Image)
	}

	a.preview.Reset()

	return added, err
}

// discard releases images that finished loading after the caller gave up.
func discard(pending []<-chan loader.Result) {
	for _, ch := range pending {
		if res := <-ch; res.Image != nil {
			res.Image.Raster.Release()
		}
	}
}

func (a *App) Remove(id uuid.UUID) bool {
	var ok bool
	a.mutate(func() {
		ok = a.store.RemoveByID(id)
	})

	return ok
}

func (a *App) Reorder(movedID, targetID uuid.UUID) bool {
	var ok bool
	a.mutate(func() {
		ok = a.store.Reorder(movedID, targetID)
	})

	return ok
}

func (a *App) Clear() {
	a.mutate(a.store.Clear)
}

// SetOffset parses a free-form horizontal offset for one image.
func (a *App) SetOffset(id uuid.UUID, text string) bool {
	var ok bool
	a.mutate(func() {
		ok = a.store.SetOffset(id, layout.ParseOffset(text))
	})

	return ok
}

func (a *App) SetPadding(text string) {
	a.setConfig(func(cfg *layout.Config) {
		cfg.Padding = layout.ParsePadding(text)
	})
}

func (a *App) SetAlign(text string) {
	a.setConfig(func(cfg *layout.Config) {
		cfg.Align = layout.ParseAlign(text)
	})
}

func (a *App) SetPolicy(text string) {
	a.setConfig(func(cfg *layout.Config) {
		cfg.Policy = layout.ParsePolicy(text)
	})
}

// SetBackground keeps the current colour when text is not a valid colour.
func (a *App) SetBackground(text string) {
	bg, err := layout.ParseBackground(text)
	if err != nil {
		logrus.Warnf("ignoring background %q: %s", text, err.Error())
		return
	}

	a.setConfig(func(cfg *layout.Config) {
		cfg.Background = bg
	})
}

func (a *App) SetTransparent(v bool) {
	a.setConfig(func(cfg *layout.Config) {
		cfg.Transparent = v
	})
}

func (a *App) SetGrid(v bool) {
	a.setConfig(func(cfg *layout.Config) {
		cfg.Grid = v
	})
}

func (a *App) SetFileName(text string) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	a.cfg.FileName = layout.FileName(text)
}

// SetFrameSpeed restarts the preview timer without touching the frame index.
func (a *App) SetFrameSpeed(text string) {
	speed := layout.ParseFrameSpeed(text)

	a.mtx.Lock()
	a.cfg.FrameSpeed = speed
	a.mtx.Unlock()

	a.preview.SetSpeed(speed)
}

func (a *App) TogglePlay() preview.State {
	return a.preview.Toggle()
}

// SetZoom only changes how the sheet is displayed, never the exported pixels.
func (a *App) SetZoom(z float64) float64 {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	a.cfg.Zoom = layout.ClampZoom(z)

	return a.cfg.Zoom
}

func (a *App) ZoomIn() float64 {
	return a.SetZoom(a.Config().Zoom + layout.ZoomStep)
}

func (a *App) ZoomOut() float64 {
	return a.SetZoom(a.Config().Zoom - layout.ZoomStep)
}

func (a *App) Config() layout.Config {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.cfg
}

func (a *App) Frame() *render.Frame {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.frame
}

func (a *App) Status() render.Status {
	return a.Frame().Status
}

func (a *App) Count() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.store.Count()
}

// Images returns the loaded images in sheet order.
func (a *App) Images() []*image.LoadedImage {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.store.Items()
}

// Display is the zoomed sheet with the grid overlay.
func (a *App) Display() *nImage.NRGBA {
	a.mtx.Lock()
	f, zoom := a.frame, a.cfg.Zoom
	a.mtx.Unlock()

	return render.Display(f, zoom)
}

// PreviewGIF writes the animation preview as a gif.
func (a *App) PreviewGIF(w io.Writer) error {
	items, cfg := a.Snapshot()
	return preview.EncodeGIF(w, items, cfg)
}

// ExportPreview saves the animation preview gif next to the sheet.
func (a *App) ExportPreview(ctx context.Context, sink export.Sink) (*job.File, error) {
	buf := &bytes.Buffer{}
	if err := a.PreviewGIF(buf); err != nil {
		if errors.Is(err, preview.ErrNothingToPreview) {
			return nil, nil
		}
		return nil, err
	}

	frame, _ := a.preview.Frame()
	return a.save(ctx, sink, &export.Artifact{
		Name:        layout.FileName(a.Config().FileName) + "_preview.gif",
		ContentType: "image/gif",
		Data:        buf.Bytes(),
		Width:       frame.Rect.Dx(),
		Height:      frame.Rect.Dy(),
		Animated:    true,
	})
}

// ExportDisplay saves the zoomed sheet with its grid overlay.
func (a *App) ExportDisplay(ctx context.Context, sink export.Sink) (*job.File, error) {
	if a.Count() == 0 {
		return nil, nil
	}

	if l := a.Frame().Layout; l.Oversized() {
		return nil, fmt.Errorf("%w: %dx%d", layout.ErrTooLarge, l.Width, l.Height)
	}

	img := a.Display()

	buf := &bytes.Buffer{}
	if err := containers.EncodePNG(buf, img); err != nil {
		return nil, err
	}

	return a.save(ctx, sink, &export.Artifact{
		Name:        layout.FileName(a.Config().FileName) + "_display.png",
		ContentType: "image/png",
		Data:        buf.Bytes(),
		Width:       img.Rect.Dx(),
		Height:      img.Rect.Dy(),
	})
}

func (a *App) save(ctx context.Context, sink export.Sink, artifact *export.Artifact) (*job.File, error) {
	file, err := export.Save(ctx, sink, artifact)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// Export re-renders and saves the sheet through sink. It returns nil when the
// collection is empty.
func (a *App) Export(ctx context.Context, sink export.Sink) (*job.File, error) {
	a.mtx.Lock()
	a.rerender()
	f, name := a.frame, a.cfg.FileName
	a.mtx.Unlock()

	artifact, err := export.Sheet(f, name)
	if err != nil || artifact == nil {
		return nil, err
	}

	return a.save(ctx, sink, artifact)
}
