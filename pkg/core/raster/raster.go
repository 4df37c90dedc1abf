// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package raster defines the 8-bit image value type used by the noise generators.
//
// An Image carries an explicit channel Layout (Gray, GrayAlpha or RGB), and every conversion
// between layouts, to and from floating point intermediates and to and from the standard
// library image types is an explicit function in this package.
package raster

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Layout of the channels of an Image.
type Layout uint8

const (
	// Gray is a single luma channel.
	Gray Layout = iota

	// GrayAlpha is luma followed by alpha.
	GrayAlpha

	// RGB is three colour channels, no alpha.
	RGB
)

// Channels returns the number of samples per pixel.
func (l Layout) Channels() int {
	switch l {
	case Gray:
		return 1
	case GrayAlpha:
		return 2
	case RGB:
		return 3
	}
	return 0
}

// ColorChannels returns the number of samples per pixel that are not alpha.
func (l Layout) ColorChannels() int {
	if l == GrayAlpha {
		return 1
	}
	return l.Channels()
}

// HasAlpha returns whether the last sample of each pixel is an alpha channel.
func (l Layout) HasAlpha() bool {
	return l == GrayAlpha
}

func (l Layout) String() string {
	switch l {
	case Gray:
		return "Gray"
	case GrayAlpha:
		return "GrayAlpha"
	case RGB:
		return "RGB"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Image is an 8-bit image stored row-major with interleaved channels.
type Image struct {
	Width, Height int
	Layout        Layout

	// Pix holds Width*Height*Layout.Channels() samples.
	Pix []uint8
}

// New returns a black (and, if there is an alpha channel, transparent) image.
func New(width, height int, layout Layout) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Layout: layout,
		Pix:    make([]uint8, width*height*layout.Channels()),
	}
}

// NewLike returns a zeroed image with the same size and layout as img.
func NewLike(img *Image) *Image {
	return New(img.Width, img.Height, img.Layout)
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	c := NewLike(img)
	copy(c.Pix, img.Pix)
	return c
}

// Channels is a shortcut to img.Layout.Channels().
func (img *Image) Channels() int {
	return img.Layout.Channels()
}

// Bounds returns the image rectangle, always anchored at (0, 0).
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// NumPixels returns Width*Height.
func (img *Image) NumPixels() int {
	return img.Width * img.Height
}

// Offset returns the index in Pix of the first sample of pixel (x, y).
func (img *Image) Offset(x, y int) int {
	return (y*img.Width + x) * img.Channels()
}

// SameSize returns whether both images have the same width and height.
func (img *Image) SameSize(other *Image) bool {
	return img.Width == other.Width && img.Height == other.Height
}

// Validate checks the image is well-formed.
func (img *Image) Validate() error {
	if img == nil {
		return errors.New("nil image")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return errors.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	if img.Layout.Channels() == 0 {
		return errors.Errorf("invalid image layout %s", img.Layout)
	}
	if want := img.Width * img.Height * img.Channels(); len(img.Pix) != want {
		return errors.Errorf("image %dx%d %s should have %d samples, got %d",
			img.Width, img.Height, img.Layout, want, len(img.Pix))
	}
	return nil
}

// MeanLuminance returns the mean of the colour samples (alpha excluded) normalized to [0, 1].
func MeanLuminance(img *Image) float64 {
	channels := img.Channels()
	colors := img.Layout.ColorChannels()
	var sum uint64
	for pos := 0; pos < len(img.Pix); pos += channels {
		for ch := range colors {
			sum += uint64(img.Pix[pos+ch])
		}
	}
	count := img.NumPixels() * colors
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count) / 255.0
}

// Clamp v to the interval [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
