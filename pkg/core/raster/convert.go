// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Luma converts an RGB triplet to luma with the ITU-R 601-2 weights (0.299, 0.587, 0.114),
// using 16-bit fixed point arithmetic with rounding.
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// Convert returns a copy of img in the requested layout.
//
//   - RGB -> Gray/GrayAlpha uses Luma; the alpha of a converted image is opaque (255).
//   - Gray/GrayAlpha -> RGB replicates the luma in the three channels and drops the alpha.
//   - GrayAlpha -> Gray drops the alpha; Gray -> GrayAlpha adds an opaque alpha.
//
// If img already has the requested layout, a clone is returned.
func Convert(img *Image, layout Layout) *Image {
	if img.Layout == layout {
		return img.Clone()
	}
	dst := New(img.Width, img.Height, layout)
	srcChannels, dstChannels := img.Channels(), dst.Channels()
	numPixels := img.NumPixels()
	for ii := range numPixels {
		src := img.Pix[ii*srcChannels : (ii+1)*srcChannels]
		out := dst.Pix[ii*dstChannels : (ii+1)*dstChannels]
		var luma uint8
		if img.Layout == RGB {
			luma = Luma(src[0], src[1], src[2])
		} else {
			luma = src[0]
		}
		switch layout {
		case Gray:
			out[0] = luma
		case GrayAlpha:
			out[0] = luma
			if img.Layout == GrayAlpha {
				out[1] = src[1]
			} else {
				out[1] = 0xFF
			}
		case RGB:
			if img.Layout == RGB {
				copy(out, src)
			} else {
				out[0], out[1], out[2] = luma, luma, luma
			}
		}
	}
	return dst
}

// ToLumaAlpha converts the image to the GrayAlpha layout used by the infrared noise path.
func ToLumaAlpha(img *Image) *Image {
	return Convert(img, GrayAlpha)
}

// ExpandRGB converts the image to the 3-channel RGB layout.
func ExpandRGB(img *Image) *Image {
	return Convert(img, RGB)
}

// FromImage converts any standard library image to an Image.
//
// *image.Gray and *image.Gray16 become Gray. Everything else is converted to non-premultiplied
// RGBA first: it becomes GrayAlpha if every pixel is neutral (R==G==B) and at least one pixel is
// not opaque, and RGB (alpha dropped) otherwise.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	switch m := src.(type) {
	case *image.Gray:
		dst := New(bounds.Dx(), bounds.Dy(), Gray)
		for y := range dst.Height {
			row := m.Pix[m.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(dst.Pix[y*dst.Width:(y+1)*dst.Width], row[:dst.Width])
		}
		return dst
	case *image.Gray16:
		dst := New(bounds.Dx(), bounds.Dy(), Gray)
		for y := range dst.Height {
			for x := range dst.Width {
				dst.Pix[y*dst.Width+x] = uint8(m.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y >> 8)
			}
		}
		return dst
	}

	nrgba := imaging.Clone(src)
	neutral, opaque := true, true
	for pos := 0; pos < len(nrgba.Pix); pos += 4 {
		p := nrgba.Pix[pos : pos+4]
		if p[0] != p[1] || p[1] != p[2] {
			neutral = false
		}
		if p[3] != 0xFF {
			opaque = false
		}
	}
	layout := RGB
	if neutral && !opaque {
		layout = GrayAlpha
	}
	return FromNRGBA(nrgba, layout)
}

// FromNRGBA extracts an Image with the given layout from an NRGBA image: Gray takes the red
// channel, GrayAlpha takes red and alpha, RGB takes the three colour channels.
//
// It is the inverse of ToNRGBA.
func FromNRGBA(src *image.NRGBA, layout Layout) *Image {
	bounds := src.Bounds()
	dst := New(bounds.Dx(), bounds.Dy(), layout)
	channels := dst.Channels()
	for y := range dst.Height {
		srcPos := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		dstPos := y * dst.Width * channels
		for range dst.Width {
			p := src.Pix[srcPos : srcPos+4]
			switch layout {
			case Gray:
				dst.Pix[dstPos] = p[0]
			case GrayAlpha:
				dst.Pix[dstPos] = p[0]
				dst.Pix[dstPos+1] = p[3]
			case RGB:
				copy(dst.Pix[dstPos:dstPos+3], p[:3])
			}
			srcPos += 4
			dstPos += channels
		}
	}
	return dst
}

// ToNRGBA converts the image to a non-premultiplied RGBA image, replicating luma on the three
// colour channels for the gray layouts. Images without alpha are made opaque.
func ToNRGBA(img *Image) *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	channels := img.Channels()
	numPixels := img.NumPixels()
	for ii := range numPixels {
		src := img.Pix[ii*channels : (ii+1)*channels]
		out := dst.Pix[ii*4 : ii*4+4]
		switch img.Layout {
		case Gray:
			out[0], out[1], out[2], out[3] = src[0], src[0], src[0], 0xFF
		case GrayAlpha:
			out[0], out[1], out[2], out[3] = src[0], src[0], src[0], src[1]
		case RGB:
			out[0], out[1], out[2], out[3] = src[0], src[1], src[2], 0xFF
		}
	}
	return dst
}

// ToImage converts the image to the closest standard library type: *image.Gray for Gray and
// *image.NRGBA otherwise.
func ToImage(img *Image) image.Image {
	if img.Layout == Gray {
		dst := image.NewGray(img.Bounds())
		copy(dst.Pix, img.Pix)
		return dst
	}
	return ToNRGBA(img)
}

// At returns the colour of pixel (x, y), mostly useful for debugging and tests.
func (img *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return color.NRGBA{}
	}
	p := img.Pix[img.Offset(x, y):]
	switch img.Layout {
	case Gray:
		return color.Gray{Y: p[0]}
	case GrayAlpha:
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: p[1]}
	default:
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: 0xFF}
	}
}
