package storage

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail scales src down so its longer side is at most maxDim,
// preserving aspect ratio. Images already within bounds are returned
// unchanged.
func Thumbnail(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return src
	}

	if width >= height {
		height = height * maxDim / width
		width = maxDim
	} else {
		width = width * maxDim / height
		height = maxDim
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
