// Package render lays out the two faces of a duty card in millimetres and
// rasterizes them for preview and export.
package render

import (
	"fmt"
	"math"
	"strings"
)

// Physical card size (ID-1) and the CSS pixel density used for previews.
const (
	CardLongMM  = 85.6
	CardShortMM = 53.98
	MMToPX      = 3.7795275591 // 96 DPI

	PhotoWidthMM  = 20.0
	PhotoHeightMM = 24.0
	PaddingMM     = 3.0
)

// Orientation of a rendered panel.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ParseOrientation accepts "portrait" or "landscape"; empty means portrait.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case "", Portrait:
		return Portrait, nil
	case Landscape:
		return Landscape, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// Size returns width and height in millimetres.
func (o Orientation) Size() (float64, float64) {
	if o == Landscape {
		return CardLongMM, CardShortMM
	}
	return CardShortMM, CardLongMM
}

// PixelSize converts a length in millimetres to device pixels at scale.
func PixelSize(mm float64, scale int) int {
	return int(math.Round(mm * MMToPX * float64(scale)))
}
