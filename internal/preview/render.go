// Package preview draws a posed skeleton to an image for quick inspection of
// baked frames.
package preview

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"bonedriver/internal/rig"
)

// Reference camera angles in degrees: Rx(-15°) @ Ry(12°).
const (
	DefaultPitch = -15.0
	DefaultYaw   = 12.0
)

var (
	boneColor   = color.NRGBA{160, 160, 170, 255}
	jointColor  = color.NRGBA{220, 220, 230, 255}
	drivenColor = color.NRGBA{255, 140, 0, 255}
)

// Options controls the preview camera and canvas.
type Options struct {
	Size        int
	Supersample int
	Pitch       float64 // degrees
	Yaw         float64 // degrees
	Backdrop    image.Image
}

// DefaultOptions returns a 256px, 2x supersampled reference view.
func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Pitch: DefaultPitch, Yaw: DefaultYaw}
}

// ViewMatrix returns the camera rotation for the given angles.
func ViewMatrix(pitch, yaw float64) mgl64.Mat3 {
	return mgl64.Rotate3DX(mgl64.DegToRad(pitch)).Mul3(mgl64.Rotate3DY(mgl64.DegToRad(yaw)))
}

// Project maps joint positions to canvas pixels. The returned depth grows
// toward the camera.
func Project(positions []mgl64.Vec3, view mgl64.Mat3, renderSize, margin int) ([]mgl64.Vec2, []float64) {
	pts := make([]mgl64.Vec2, len(positions))
	depth := make([]float64, len(positions))
	if len(positions) == 0 {
		return pts, depth
	}

	minV := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	maxV := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for i, p := range positions {
		v := view.Mul3x1(p)
		pts[i] = mgl64.Vec2{v.X(), -v.Y()}
		depth[i] = v.Z()
		for k := 0; k < 2; k++ {
			minV[k] = min(minV[k], pts[i][k])
			maxV[k] = max(maxV[k], pts[i][k])
		}
	}

	span := max(maxV[0]-minV[0], maxV[1]-minV[1], 0.001)
	scale := float64(renderSize-2*margin) / span
	center := minV.Add(maxV).Mul(0.5)
	half := float64(renderSize) / 2
	for i := range pts {
		pts[i] = pts[i].Sub(center).Mul(scale).Add(mgl64.Vec2{half, half})
	}
	return pts, depth
}

// Render draws the character's current skeleton pose. Joints written by the
// driver since the last reset are highlighted.
func Render(ch *rig.Character, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}

	renderSize := opts.Size * opts.Supersample
	canvas := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	if opts.Backdrop != nil {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), opts.Backdrop, opts.Backdrop.Bounds(), draw.Src, nil)
	}

	joints := ch.Skeleton.Joints()
	if len(joints) > 0 {
		margin := 16 * opts.Supersample
		pts, depth := Project(ch.Skeleton.WorldPositions(), ViewMatrix(opts.Pitch, opts.Yaw), renderSize, margin)

		// Painter's order, far joints first.
		order := make([]int, len(joints))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return depth[order[a]] < depth[order[b]] })

		ras := vector.NewRasterizer(renderSize, renderSize)
		width := float64(3 * opts.Supersample)
		radius := float64(4 * opts.Supersample)

		for _, i := range order {
			if p := joints[i].Parent; p >= 0 {
				if boneQuad(ras, pts[p], pts[i], width) {
					fill(canvas, ras, boneColor)
				}
			}
		}
		for _, i := range order {
			c := jointColor
			if joints[i].Posed() {
				c = drivenColor
			}
			diamond(ras, pts[i], radius)
			fill(canvas, ras, c)
		}
	}

	if opts.Supersample > 1 {
		return downsample(canvas, opts.Size)
	}
	return canvas
}

// boneQuad tapers from the parent end to the child end. It reports false for
// bones too short to draw.
func boneQuad(r *vector.Rasterizer, from, to mgl64.Vec2, width float64) bool {
	d := to.Sub(from)
	if d.Len() < 1e-6 {
		return false
	}
	n := mgl64.Vec2{-d.Y(), d.X()}.Normalize()
	a := from.Add(n.Mul(width))
	b := to.Add(n.Mul(width / 3))
	c := to.Sub(n.Mul(width / 3))
	e := from.Sub(n.Mul(width))

	r.MoveTo(float32(a.X()), float32(a.Y()))
	r.LineTo(float32(b.X()), float32(b.Y()))
	r.LineTo(float32(c.X()), float32(c.Y()))
	r.LineTo(float32(e.X()), float32(e.Y()))
	r.ClosePath()
	return true
}

func diamond(r *vector.Rasterizer, c mgl64.Vec2, radius float64) {
	x, y, s := float32(c.X()), float32(c.Y()), float32(radius)
	r.MoveTo(x, y-s)
	r.LineTo(x+s, y)
	r.LineTo(x, y+s)
	r.LineTo(x-s, y)
	r.ClosePath()
}

// fill composites the rasterizer's path onto dst and clears it.
func fill(dst *image.NRGBA, r *vector.Rasterizer, c color.Color) {
	r.DrawOp = draw.Over
	r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	b := r.Bounds()
	r.Reset(b.Dx(), b.Dy())
}
