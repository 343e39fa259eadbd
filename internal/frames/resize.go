package frames

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Downscale shrinks img so its long edge is at most maxDim, preserving
// aspect ratio. Images already within bounds, or maxDim <= 0, are returned as is.
func Downscale(img *image.RGBA, maxDim int) *image.RGBA {
	if img == nil || maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := max(w, h)
	if long <= maxDim {
		return img
	}
	nw := max(1, w*maxDim/long)
	nh := max(1, h*maxDim/long)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
