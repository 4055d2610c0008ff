package render

import (
	"image"
	"math"
)

// CropRect returns the largest centered region of a srcW×srcH image that has
// the target aspect ratio. Wider sources lose equal margins left and right;
// taller or equal ones lose them top and bottom.
func CropRect(srcW, srcH int, targetW, targetH float64) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || targetW <= 0 || targetH <= 0 {
		return image.Rect(0, 0, max(srcW, 0), max(srcH, 0))
	}
	imgAspect := float64(srcW) / float64(srcH)
	targetAspect := targetW / targetH

	if imgAspect > targetAspect {
		w := int(math.Round(float64(srcH) * targetAspect))
		x := (srcW - w) / 2
		return image.Rect(x, 0, x+w, srcH)
	}
	h := int(math.Round(float64(srcW) / targetAspect))
	y := (srcH - h) / 2
	return image.Rect(0, y, srcW, y+h)
}

// containRect fits a srcW×srcH image inside box without cropping, centered.
func containRect(srcW, srcH int, box image.Rectangle) image.Rectangle {
	bw, bh := box.Dx(), box.Dy()
	if srcW <= 0 || srcH <= 0 || bw <= 0 || bh <= 0 {
		return image.Rectangle{}
	}
	scale := math.Min(float64(bw)/float64(srcW), float64(bh)/float64(srcH))
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	x := box.Min.X + (bw-w)/2
	y := box.Min.Y + (bh-h)/2
	return image.Rect(x, y, x+w, y+h)
}
