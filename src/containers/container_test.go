package containers

import (
	"bytes"
	nImage "image"
	"image/color"
	"testing"

	"github.com/seventv/SpriteProcessor/src/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want image.ImageType
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), image.PNG},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), image.GIF},
		{"jpeg", []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF"), image.JPEG},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), image.WEBP},
		{"avi", []byte("RIFF\x00\x00\x00\x00AVI LIST"), image.AVI},
		{"mp4", []byte("\x00\x00\x00\x18ftypisom\x00\x00"), image.MP4},
		{"mov", []byte("\x00\x00\x00\x14ftypqt  \x00\x00"), image.MOV},
		{"avif", []byte("\x00\x00\x00\x1cftypavif\x00\x00"), image.AVIF},
		{"tiff", []byte("II*\x00\x08\x00\x00\x00"), image.TIFF},
		{"bmp", []byte("BM\x00\x00\x00\x00\x00\x00\x00\x00\x36\x00\x00\x00"), image.BMP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToType(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ToType([]byte("hello world"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := nImage.NewNRGBA(nImage.Rect(0, 0, 3, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	buf := &bytes.Buffer{}
	require.NoError(t, EncodePNG(buf, src))

	imgType, err := ToType(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.PNG, imgType)

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, nImage.Pt(3, 2), img.Bounds().Size())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 128}, color.NRGBAModel.Convert(img.At(1, 1)))
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode([]byte("\x89PNG\r\n\x1a\ngarbage"))
	assert.Error(t, err)
}
