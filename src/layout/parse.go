package layout

import (
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultFrameSpeed = 150 * time.Millisecond
	MinFrameSpeed     = 20 * time.Millisecond
	MaxFrameSpeed     = time.Minute

	MaxPadding = 1024
	MaxOffset  = 1 << 16

	MinZoom  = 0.25
	MaxZoom  = 2.0
	ZoomStep = 0.1

	DefaultFileName = "spritesheet"
	Extension       = ".png"
)

var DefaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// ParsePadding reads free-form padding input. Anything that is not a finite,
// non-negative number becomes 0, and the result never exceeds MaxPadding.
func ParsePadding(s string) int {
	f, ok := parseNumber(s)
	if !ok || f < 0 {
		return 0
	}

	return int(math.Min(f, MaxPadding))
}

// ParseOffset reads a signed horizontal offset within ±MaxOffset; invalid
// input is 0.
func ParseOffset(s string) int {
	f, _ := parseNumber(s)
	return int(math.Max(-MaxOffset, math.Min(f, MaxOffset)))
}

// ParseFrameSpeed reads an interval in milliseconds. Empty, zero or invalid
// input falls back to the default, and the result stays within
// [MinFrameSpeed, MaxFrameSpeed].
func ParseFrameSpeed(s string) time.Duration {
	f, ok := parseNumber(s)
	if !ok || f == 0 {
		return DefaultFrameSpeed
	}

	ms := math.Max(float64(MinFrameSpeed/time.Millisecond), math.Min(f, float64(MaxFrameSpeed/time.Millisecond)))

	return time.Duration(ms * float64(time.Millisecond))
}

func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}

	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

func ZoomPercent(z float64) int {
	return int(math.Round(z * 100))
}

func ParseAlign(s string) Align {
	switch Align(strings.ToLower(strings.TrimSpace(s))) {
	case AlignCenter:
		return AlignCenter
	case AlignBottom:
		return AlignBottom
	default:
		return AlignTop
	}
}

func ParsePolicy(s string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(s))) == PolicyPacked {
		return PolicyPacked
	}

	return PolicyEqual
}

// ParseBackground reads a hex colour (#rgb or #rrggbb).
func ParseBackground(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return DefaultBackground, err
	}

	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// FileName normalises the user supplied output name. Blank input gives the
// default and directory components are dropped.
func FileName(s string) string {
	s = strings.TrimSpace(s)
	if s != "" {
		s = filepath.Base(filepath.Clean(s))
	}

	if s == "" || s == "." || s == ".." || s == string(filepath.Separator) {
		return DefaultFileName
	}

	return s
}

// OutputName is the file name the sheet is saved under.
func OutputName(s string) string {
	return FileName(s) + Extension
}
