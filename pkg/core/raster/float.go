// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package raster

import "math"

// quantizeEpsilon absorbs float rounding so that ToFloat followed by Quantize is the identity.
const quantizeEpsilon = 1e-6

// Float is the floating point intermediate of an Image, with samples in [0, 1].
//
// It is only meant to live inside a transform: transforms take and return Image.
type Float struct {
	Width, Height int
	Layout        Layout
	Pix           []float64
}

// ToFloat converts the samples of img to [0, 1].
func ToFloat(img *Image) *Float {
	f := &Float{Width: img.Width, Height: img.Height, Layout: img.Layout, Pix: make([]float64, len(img.Pix))}
	for ii, v := range img.Pix {
		f.Pix[ii] = float64(v) / 255.0
	}
	return f
}

// Channels is a shortcut to f.Layout.Channels().
func (f *Float) Channels() int {
	return f.Layout.Channels()
}

// IsColorSample returns whether the sample at index ii of Pix is a colour (not alpha) sample.
func (f *Float) IsColorSample(ii int) bool {
	if !f.Layout.HasAlpha() {
		return true
	}
	return ii%f.Channels() != f.Channels()-1
}

// ClipInPlace clamps every sample to [0, 1].
func (f *Float) ClipInPlace() {
	for ii, v := range f.Pix {
		f.Pix[ii] = Clamp(v, 0, 1)
	}
}

// Quantize converts back to 8 bits: samples are clipped to [0, 1], scaled by 255 and truncated.
func (f *Float) Quantize() *Image {
	img := New(f.Width, f.Height, f.Layout)
	for ii, v := range f.Pix {
		img.Pix[ii] = QuantizeSample(v)
	}
	return img
}

// QuantizeSample converts one [0, 1] sample to 8 bits, see Float.Quantize.
func QuantizeSample(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Floor(Clamp(v, 0, 1)*255 + quantizeEpsilon))
}
