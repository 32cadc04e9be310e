package containers

import (
	"bytes"
	"fmt"
	nImage "image"
	"io"

	nPng "image/png"

	// registers the webp decoder; imaging already pulls in png, jpeg, gif, bmp and tiff
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/seventv/SpriteProcessor/src/image"
)

var ErrUnknownFormat = fmt.Errorf("unknown image format")

type sniffer struct {
	imgType image.ImageType
	test    func(data []byte) bool
}

// Checked in order. avif goes last because its test is very loose.
var sniffers = []sniffer{
	{image.AVI, isAVI},
	{image.BMP, isBMP},
	{image.FLV, isFLV},
	{image.GIF, isGIF},
	{image.JPEG, isJPEG},
	{image.MP4, isMP4},
	{image.PNG, isPNG},
	{image.TIFF, isTIFF},
	{image.WEBM, isWEBM},
	{image.WEBP, isWEBP},
	{image.MOV, isMOV},
	{image.AVIF, isAVIF},
}

func ToType(data []byte) (image.ImageType, error) {
	for _, s := range sniffers {
		if s.test(data) {
			return s.imgType, nil
		}
	}

	return "", ErrUnknownFormat
}

// Decode decodes a still image with its EXIF orientation applied. Animated
// inputs decode to their first frame.
func Decode(data []byte) (nImage.Image, error) {
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// EncodePNG writes img as a lossless, alpha-capable png.
func EncodePNG(w io.Writer, img nImage.Image) error {
	enc := nPng.Encoder{CompressionLevel: nPng.BestCompression}
	return enc.Encode(w, img)
}

// Magic numbers from https://www.garykessler.net/library/file_sigs.html

func hasPrefix(data []byte, offset int, sig string) bool {
	if len(data) < offset+len(sig) {
		return false
	}

	return string(data[offset:offset+len(sig)]) == sig
}

func isAVI(data []byte) bool {
	return len(data) >= 16 && hasPrefix(data, 0, "RIFF") && hasPrefix(data, 8, "AVI LIST")
}

func isBMP(data []byte) bool {
	return len(data) >= 14 && hasPrefix(data, 0, "BM")
}

func isFLV(data []byte) bool {
	return hasPrefix(data, 0, "FLV\x01")
}

func isGIF(data []byte) bool {
	return hasPrefix(data, 0, "GIF87a") || hasPrefix(data, 0, "GIF89a")
}

func isJPEG(data []byte) bool {
	return hasPrefix(data, 0, "\xFF\xD8\xFF")
}

func isMP4(data []byte) bool {
	return hasPrefix(data, 4, "ftypMSNV") || hasPrefix(data, 4, "ftypisom") || hasPrefix(data, 4, "ftypmp42")
}

func isPNG(data []byte) bool {
	return hasPrefix(data, 0, "\x89PNG\r\n\x1a\n")
}

func isTIFF(data []byte) bool {
	return hasPrefix(data, 0, "II*\x00") || hasPrefix(data, 0, "MM\x00*")
}

func isWEBM(data []byte) bool {
	return hasPrefix(data, 0, "\x1A\x45\xDF\xA3")
}

func isWEBP(data []byte) bool {
	return hasPrefix(data, 0, "RIFF") && hasPrefix(data, 8, "WEBP")
}

func isMOV(data []byte) bool {
	return hasPrefix(data, 4, "ftypqt  ")
}

func isAVIF(data []byte) bool {
	return hasPrefix(data, 4, "ftypavif") || hasPrefix(data, 4, "ftypavis")
}
