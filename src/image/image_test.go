package image

import (
	nImage "image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsNaturalSize(t *testing.T) {
	img := New("a.png", "image/png", PNG, nImage.NewNRGBA(nImage.Rect(0, 0, 100, 50)))

	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 50, img.Height)
	assert.Equal(t, 0, img.OffsetX)
	assert.NotEqual(t, img.ID, New("b.png", "image/png", PNG, nImage.NewNRGBA(nImage.Rect(0, 0, 1, 1))).ID)
}

func TestRasterReleasesOnce(t *testing.T) {
	r := NewRaster(nImage.NewNRGBA(nImage.Rect(0, 0, 4, 4)))
	require.NotNil(t, r.Image())

	var (
		wg    sync.WaitGroup
		mtx   sync.Mutex
		count int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Release() {
				mtx.Lock()
				count++
				mtx.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, count)
	assert.True(t, r.Released())
	assert.Nil(t, r.Image())
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "image/png", PNG.MediaType())
	assert.Equal(t, "video/mp4", MP4.MediaType())
	assert.Equal(t, "", ImageType("xyz").MediaType())
}
