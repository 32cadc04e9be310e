package loader

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/seventv/SpriteProcessor/src/containers"
	"github.com/seventv/SpriteProcessor/src/image"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotImage = fmt.Errorf("not an image")
	ErrDecode   = fmt.Errorf("decode failed")
)

// File is an input as offered by the user: a name, the declared media type
// (may be empty) and its contents.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// DeclaredType is the media type of f, falling back to the extension and then
// to the sniffed container.
func (f File) DeclaredType() string {
	if f.ContentType != "" {
		return f.ContentType
	}

	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name))); t != "" {
		return t
	}

	if t, err := containers.ToType(f.Data); err == nil {
		return t.MediaType()
	}

	return ""
}

// Load decodes f. Files that do not declare an image type, or whose contents
// turn out to be a video container, return ErrNotImage.
func Load(ctx context.Context, f File) (*image.LoadedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	declared := f.DeclaredType()
	if !strings.HasPrefix(declared, "image/") {
		return nil, ErrNotImage
	}

	imgType, err := containers.ToType(f.Data)
	if err == nil && !strings.HasPrefix(imgType.MediaType(), "image/") {
		return nil, ErrNotImage
	}

	img, err := containers.Decode(f.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, f.Name, err.Error())
	}

	loaded := image.New(f.Name, declared, imgType, img)

	logrus.WithFields(logrus.Fields{
		"id":     loaded.ID,
		"name":   f.Name,
		"type":   imgType,
		"width":  loaded.Width,
		"height": loaded.Height,
	}).Debug("image loaded")

	return loaded, nil
}
