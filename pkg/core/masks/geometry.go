// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package masks

import (
	"image"
	"math"
	"math/rand/v2"

	"golang.org/x/image/vector"
)

// kappa is the distance of the control points of a cubic Bézier quarter circle of radius 1.
const kappa = 0.5522847498307936

// EllipseGeometry describes a filled ellipse, in pixel units.
type EllipseGeometry struct {
	// CenterX, CenterY is the pixel at the centre of the ellipse.
	CenterX, CenterY int

	// RadiusX, RadiusY are the semi-axes before rotation.
	RadiusX, RadiusY int

	// Angle of rotation in degrees, clockwise on screen (y grows downwards).
	Angle float64
}

// RandomEllipse draws the geometry of a point effect for an image of the given size:
// each radius is 5% to 35% (in 1% steps) of the smaller image dimension, the angle is an integer
// number of degrees in [0, 360] and the centre is at least max(RadiusX, RadiusY) away from every
// border.
func RandomEllipse(rng *rand.Rand, width, height int) EllipseGeometry {
	minDim := min(width, height)
	scaleX := 0.01 * float64(randInt(rng, 5, 35))
	scaleY := 0.01 * float64(randInt(rng, 5, 35))
	g := EllipseGeometry{
		RadiusX: max(1, int(math.Floor(scaleX*float64(minDim)))),
		RadiusY: max(1, int(math.Floor(scaleY*float64(minDim)))),
		Angle:   float64(randInt(rng, 0, 360)),
	}
	radius := max(g.RadiusX, g.RadiusY)
	g.CenterY = randInt(rng, radius, height-radius)
	g.CenterX = randInt(rng, radius, width-radius)
	return g
}

// Blend returns the dilated ellipse of the transition band: same centre and angle, radii grown
// by 5% and by at least one pixel.
func (g EllipseGeometry) Blend() EllipseGeometry {
	g.RadiusX = max(int(1.05*float64(g.RadiusX)), g.RadiusX+1)
	g.RadiusY = max(int(1.05*float64(g.RadiusY)), g.RadiusY+1)
	return g
}

// Rasterize returns the mask of the filled ellipse.
func (g EllipseGeometry) Rasterize(width, height int) *Mask {
	z := vector.NewRasterizer(width, height)
	sin, cos := math.Sincos(g.Angle * math.Pi / 180)
	cx, cy := float64(g.CenterX)+0.5, float64(g.CenterY)+0.5
	rx, ry := float64(g.RadiusX), float64(g.RadiusY)
	transform := func(u, v float64) (float32, float32) {
		u, v = u*rx, v*ry
		return float32(cx + u*cos - v*sin), float32(cy + u*sin + v*cos)
	}

	z.MoveTo(transform(1, 0))
	for quadrant := range 4 {
		a0 := float64(quadrant) * math.Pi / 2
		a1 := a0 + math.Pi/2
		s0, c0 := math.Sincos(a0)
		s1, c1 := math.Sincos(a1)
		bx, by := transform(c0-kappa*s0, s0+kappa*c0)
		ccx, ccy := transform(c1+kappa*s1, s1-kappa*c1)
		dx, dy := transform(c1, s1)
		z.CubeTo(bx, by, ccx, ccy, dx, dy)
	}
	z.ClosePath()
	return draw(z, width, height)
}

// SliceGeometry describes a horizontal slice of the image: the quadrilateral from the top
// border down to the line joining (0, LeftCut) to (width, RightCut).
type SliceGeometry struct {
	LeftCut, RightCut int
}

// RandomSlice draws the cuts of a streak effect: each one is an integer row in
// [height/4, 3*height/4].
func RandomSlice(rng *rand.Rand, width, height int) SliceGeometry {
	return SliceGeometry{
		LeftCut:  randInt(rng, height/4, 3*height/4),
		RightCut: randInt(rng, height/4, 3*height/4),
	}
}

// Shift returns the slice with both cuts moved down by delta rows (up if negative).
func (g SliceGeometry) Shift(delta int) SliceGeometry {
	return SliceGeometry{LeftCut: g.LeftCut + delta, RightCut: g.RightCut + delta}
}

// Rasterize returns the mask of the slice.
func (g SliceGeometry) Rasterize(width, height int) *Mask {
	return fillPolygon(width, height, [][2]float64{
		{0, 0}, {float64(width), 0},
		{float64(width), float64(g.RightCut)}, {0, float64(g.LeftCut)},
	})
}

// PipeGeometry describes a horizontal band across the image, between the top line joining
// (0, TopLeftCut) to (width, TopRightCut) and the bottom line joining (0, BottomLeftCut) to
// (width, BottomRightCut).
type PipeGeometry struct {
	TopLeftCut, TopRightCut       int
	BottomLeftCut, BottomRightCut int
}

// RandomPipe draws the cuts of a pipe effect: top cuts in [0.1*height, height/3] and bottom cuts
// in [0.55*height, 2*height/3], so the top line is always above the bottom line.
func RandomPipe(rng *rand.Rand, width, height int) PipeGeometry {
	h := float64(height)
	return PipeGeometry{
		TopLeftCut:     randInt(rng, int(0.1*h), height/3),
		TopRightCut:    randInt(rng, int(0.1*h), height/3),
		BottomLeftCut:  randInt(rng, int(h/2*1.1), 2*height/3),
		BottomRightCut: randInt(rng, int(h/2*1.1), 2*height/3),
	}
}

// Rasterize returns the mask of the band.
func (g PipeGeometry) Rasterize(width, height int) *Mask {
	w := float64(width)
	return fillPolygon(width, height, [][2]float64{
		{0, float64(g.TopLeftCut)}, {w, float64(g.TopRightCut)},
		{w, float64(g.BottomRightCut)}, {0, float64(g.BottomLeftCut)},
	})
}

// belowMask rasterizes everything below the line joining (0, leftCut) to (width, rightCut).
func belowMask(width, height, leftCut, rightCut int) *Mask {
	w, h := float64(width), float64(height)
	return fillPolygon(width, height, [][2]float64{
		{0, float64(leftCut)}, {w, float64(rightCut)}, {w, h}, {0, h},
	})
}

// BlendMargin returns the width in pixels of the transition band of slices and pipes: 1% of the
// smaller image dimension, at least one pixel.
func BlendMargin(width, height int) int {
	return max(1, int(0.01*float64(min(width, height))))
}

// fillPolygon rasterizes a closed polygon, with vertices clamped to the image.
func fillPolygon(width, height int, points [][2]float64) *Mask {
	z := vector.NewRasterizer(width, height)
	for ii, p := range points {
		x := float32(min(max(p[0], 0), float64(width)))
		y := float32(min(max(p[1], 0), float64(height)))
		if ii == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	return draw(z, width, height)
}

// draw renders the rasterizer path as coverage and thresholds it into a binary mask.
func draw(z *vector.Rasterizer, width, height int) *Mask {
	alpha := image.NewAlpha(image.Rect(0, 0, width, height))
	z.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})
	return FromAlpha(alpha)
}

// randInt returns a uniform integer in [lo, hi], both inclusive. If the interval is empty
// (only possible for tiny images) it returns its midpoint.
func randInt(rng *rand.Rand, lo, hi int) int {
	if hi < lo {
		return (lo + hi) / 2
	}
	return lo + rng.IntN(hi-lo+1)
}
