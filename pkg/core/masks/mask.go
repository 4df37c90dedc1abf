// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package masks builds the binary masks used to composite environment effects: geometry
// (ellipses, slices and pipes), their rasterization, mask algebra and region compositing.
package masks

import (
	"image"

	"github.com/gomlx/facenoise/pkg/core/raster"
	"github.com/pkg/errors"
)

// On is the value of a set mask pixel. Unset pixels are 0.
const On = 0xFF

// Mask is a single channel binary mask: each pixel is either 0 or On.
type Mask struct {
	Width, Height int
	Pix           []uint8
}

// New returns an empty mask.
func New(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// NewLike returns an empty mask with the size of img.
func NewLike(img *raster.Image) *Mask {
	return New(img.Width, img.Height)
}

// FromAlpha thresholds an alpha coverage image: pixels with at least 50% coverage are set.
func FromAlpha(alpha *image.Alpha) *Mask {
	bounds := alpha.Bounds()
	m := New(bounds.Dx(), bounds.Dy())
	for y := range m.Height {
		row := alpha.Pix[alpha.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := range m.Width {
			if row[x] >= 0x80 {
				m.Pix[y*m.Width+x] = On
			}
		}
	}
	return m
}

// Bounds returns the mask rectangle anchored at (0, 0).
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Has returns whether pixel (x, y) is set. Pixels outside the mask are never set.
func (m *Mask) Has(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set pixel (x, y) to on or off.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	if on {
		m.Pix[y*m.Width+x] = On
	} else {
		m.Pix[y*m.Width+x] = 0
	}
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	count := 0
	for _, v := range m.Pix {
		if v != 0 {
			count++
		}
	}
	return count
}

// Contains returns whether every pixel set in other is also set in m.
func (m *Mask) Contains(other *Mask) bool {
	for ii, v := range other.Pix {
		if v != 0 && m.Pix[ii] == 0 {
			return false
		}
	}
	return true
}

func combine(a, b *Mask, op func(x, y bool) bool) *Mask {
	if a.Width != b.Width || a.Height != b.Height {
		panic(errors.Errorf("masks with different sizes: %dx%d and %dx%d", a.Width, a.Height, b.Width, b.Height))
	}
	out := New(a.Width, a.Height)
	for ii := range out.Pix {
		if op(a.Pix[ii] != 0, b.Pix[ii] != 0) {
			out.Pix[ii] = On
		}
	}
	return out
}

// Or returns the union of the masks.
func Or(a, b *Mask) *Mask {
	return combine(a, b, func(x, y bool) bool { return x || y })
}

// And returns the intersection of the masks.
func And(a, b *Mask) *Mask {
	return combine(a, b, func(x, y bool) bool { return x && y })
}

// Xor returns the pixels set in exactly one of the masks.
func Xor(a, b *Mask) *Mask {
	return combine(a, b, func(x, y bool) bool { return x != y })
}

// AndNot returns the pixels set in a but not in b (a saturating a-b for binary masks).
func AndNot(a, b *Mask) *Mask {
	return combine(a, b, func(x, y bool) bool { return x && !y })
}

// Not returns the complement of m.
func Not(m *Mask) *Mask {
	out := New(m.Width, m.Height)
	for ii, v := range m.Pix {
		if v == 0 {
			out.Pix[ii] = On
		}
	}
	return out
}

// Apply returns a copy of img with every pixel outside the mask zeroed, the equivalent of a
// bitwise AND of the image with the mask broadcast over the channels.
func Apply(img *raster.Image, m *Mask) (*raster.Image, error) {
	if img.Width != m.Width || img.Height != m.Height {
		return nil, errors.Errorf("mask %dx%d does not match image %dx%d", m.Width, m.Height, img.Width, img.Height)
	}
	out := raster.NewLike(img)
	channels := img.Channels()
	for ii, v := range m.Pix {
		if v != 0 {
			copy(out.Pix[ii*channels:(ii+1)*channels], img.Pix[ii*channels:(ii+1)*channels])
		}
	}
	return out, nil
}
