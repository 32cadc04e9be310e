package loader

import (
	"bytes"
	"context"
	nImage "image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/seventv/SpriteProcessor/src/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFile(t *testing.T, name string, w, h int) File {
	t.Helper()

	img := nImage.NewNRGBA(nImage.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 0xff})

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	return File{Name: name, Data: buf.Bytes()}
}

func TestLoadPNG(t *testing.T) {
	img, err := Load(context.Background(), pngFile(t, "walk_01.png", 100, 50))
	require.NoError(t, err)

	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 50, img.Height)
	assert.Equal(t, image.PNG, img.Type)
	assert.Equal(t, "image/png", img.ContentType)
	assert.NotNil(t, img.Raster.Image())
}

func TestLoadSkipsNonImages(t *testing.T) {
	f := pngFile(t, "notes.txt", 1, 1)
	f.ContentType = "text/plain"

	_, err := Load(context.Background(), f)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Load(context.Background(), File{Name: "clip.mp4", Data: []byte("\x00\x00\x00\x18ftypisom\x00\x00\x00\x00")})
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Load(context.Background(), File{Name: "clip", ContentType: "image/png", Data: []byte("\x00\x00\x00\x18ftypisom\x00\x00\x00\x00")})
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLoadCorrupt(t *testing.T) {
	_, err := Load(context.Background(), File{Name: "broken.png", Data: []byte("\x89PNG\r\n\x1a\nnope")})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDeclaredType(t *testing.T) {
	assert.Equal(t, "image/gif", File{Name: "x", ContentType: "image/gif"}.DeclaredType())
	assert.Equal(t, "image/png", File{Name: "x.PNG"}.DeclaredType())
	assert.Equal(t, "image/png", pngFile(t, "noext", 1, 1).DeclaredType())
	assert.Equal(t, "", File{Name: "noext", Data: []byte("??")}.DeclaredType())
}

func TestQueuePreservesOrder(t *testing.T) {
	defer leaktest.Check(t)()

	q := NewQueue(context.Background())
	defer q.Close()

	// the first file is the slowest to decode
	q.load = func(ctx context.Context, f File) (*image.LoadedImage, error) {
		if f.Name == "0" {
			time.Sleep(20 * time.Millisecond)
		}
		return Load(ctx, f)
	}

	names := []string{"0", "1", "2", "3"}
	results := make([]<-chan Result, len(names))
	for i, name := range names {
		f := pngFile(t, name, i+1, 1)
		f.ContentType = "image/png"
		results[i] = q.Enqueue(f)
	}

	for i, ch := range results {
		res := <-ch
		require.NoError(t, res.Err)
		assert.Equal(t, names[i], res.Image.Name)
		assert.Equal(t, i+1, res.Image.Width)
	}
}

func TestQueueClosed(t *testing.T) {
	defer leaktest.Check(t)()

	q := NewQueue(context.Background())
	q.Close()
	q.Close()

	res := <-q.Enqueue(pngFile(t, "late.png", 1, 1))
	assert.ErrorIs(t, res.Err, context.Canceled)
}
