package image

import (
	nImage "image"
	"sync"

	"github.com/google/uuid"
)

type ImageType string

const (
	AVI  ImageType = "avi"
	AVIF ImageType = "avif"
	BMP  ImageType = "bmp"
	FLV  ImageType = "flv"
	GIF  ImageType = "gif"
	JPEG ImageType = "jpeg"
	MP4  ImageType = "mp4"
	PNG  ImageType = "png"
	TIFF ImageType = "tiff"
	WEBM ImageType = "webm"
	WEBP ImageType = "webp"
	MOV  ImageType = "mov"
)

var mediaTypes = map[ImageType]string{
	AVI:  "video/x-msvideo",
	AVIF: "image/avif",
	BMP:  "image/bmp",
	FLV:  "video/x-flv",
	GIF:  "image/gif",
	JPEG: "image/jpeg",
	MP4:  "video/mp4",
	PNG:  "image/png",
	TIFF: "image/tiff",
	WEBM: "video/webm",
	WEBP: "image/webp",
	MOV:  "video/quicktime",
}

// MediaType returns the IANA media type of t, or "" when t is unknown.
func (t ImageType) MediaType() string {
	return mediaTypes[t]
}

// Raster owns a decoded image. Its pixels are dropped by the first Release;
// later calls do nothing.
type Raster struct {
	once     sync.Once
	mtx      sync.RWMutex
	img      nImage.Image
	released bool
}

func NewRaster(img nImage.Image) *Raster {
	return &Raster{img: img}
}

// Image returns the decoded pixels, or nil once released.
func (r *Raster) Image() nImage.Image {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.img
}

// Release drops the pixel buffer. It reports whether this call was the one
// that released it.
func (r *Raster) Release() bool {
	released := false
	r.once.Do(func() {
		r.mtx.Lock()
		defer r.mtx.Unlock()

		r.img = nil
		r.released = true
		released = true
	})

	return released
}

func (r *Raster) Released() bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.released
}

// LoadedImage is one decoded input of the sheet.
type LoadedImage struct {
	ID          uuid.UUID
	Name        string
	ContentType string
	Type        ImageType
	Raster      *Raster

	// Width and Height are the natural size read once at decode time.
	Width  int
	Height int

	// OffsetX shifts the image horizontally inside its equal-width cell.
	OffsetX int
}

func New(name, contentType string, imgType ImageType, img nImage.Image) *LoadedImage {
	size := img.Bounds().Size()

	return &LoadedImage{
		ID:          uuid.New(),
		Name:        name,
		ContentType: contentType,
		Type:        imgType,
		Raster:      NewRaster(img),
		Width:       size.X,
		Height:      size.Y,
	}
}
