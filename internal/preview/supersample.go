package preview

import (
	"image"

	"golang.org/x/image/draw"
)

// downsample resolves a supersampled canvas to a size×size image. The scaler
// filters into premultiplied RGBA, so transparent pixels around the skeleton
// do not bleed dark fringes into the strokes.
func downsample(canvas *image.NRGBA, size int) *image.NRGBA {
	b := canvas.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return canvas
	}

	premul := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(premul, premul.Bounds(), canvas, b, draw.Src, nil)

	out := image.NewNRGBA(premul.Bounds())
	for i := 0; i < len(premul.Pix); i += 4 {
		a := premul.Pix[i+3]
		out.Pix[i+3] = a
		if a == 0 {
			continue
		}
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = unpremultiply(premul.Pix[i+c], a)
		}
	}
	return out
}

// unpremultiply recovers a straight channel value. CatmullRom overshoot can
// leave v above a, which saturates to 255.
func unpremultiply(v, a uint8) uint8 {
	if v >= a {
		return 255
	}
	return uint8((uint32(v)*255 + uint32(a)/2) / uint32(a))
}
