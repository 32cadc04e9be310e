package export

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/seventv/SpriteProcessor/src/containers"
	"github.com/seventv/SpriteProcessor/src/job"
	"github.com/seventv/SpriteProcessor/src/layout"
	"github.com/seventv/SpriteProcessor/src/render"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// Artifact is one encoded output waiting to be saved.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	Animated    bool
}

// Sheet encodes the exported surface of f as png. It returns nil when there
// is nothing to export and layout.ErrTooLarge when the sheet was too big to
// draw. The overlay is never part of it.
func Sheet(f *render.Frame, fileName string) (*Artifact, error) {
	if f == nil || f.Layout.Empty() {
		return nil, nil
	}

	if f.Layout.Oversized() {
		return nil, fmt.Errorf("%w: %dx%d", layout.ErrTooLarge, f.Layout.Width, f.Layout.Height)
	}

	buf := &bytes.Buffer{}
	if err := containers.EncodePNG(buf, f.Surface); err != nil {
		return nil, fmt.Errorf("png encode failed: %s", err.Error())
	}

	return &Artifact{
		Name:        layout.OutputName(fileName),
		ContentType: "image/png",
		Data:        buf.Bytes(),
		Width:       f.Surface.Rect.Dx(),
		Height:      f.Surface.Rect.Dy(),
	}, nil
}

// Save stores a through sink and describes the stored file.
func Save(ctx context.Context, sink Sink, a *Artifact) (job.File, error) {
	start := time.Now()

	location, err := sink.Save(ctx, a.Name, a.ContentType, a.Data)
	if err != nil {
		return job.File{}, err
	}

	sum := blake2b.Sum256(a.Data)

	file := job.File{
		Name:        a.Name,
		Size:        len(a.Data),
		ContentType: a.ContentType,
		Animated:    a.Animated,
		Width:       a.Width,
		Height:      a.Height,
		Checksum:    hex.EncodeToString(sum[:]),
		Location:    location,
		TimeTaken:   time.Since(start),
	}

	logrus.WithFields(logrus.Fields{
		"name":     file.Name,
		"size":     file.Size,
		"location": file.Location,
	}).Info("exported")

	return file, nil
}
