// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rgbFixture() *Image {
	img := New(3, 2, RGB)
	copy(img.Pix, []uint8{
		255, 0, 0, 0, 255, 0, 0, 0, 255,
		10, 10, 10, 128, 64, 32, 255, 255, 255,
	})
	return img
}

func TestLayout(t *testing.T) {
	assert.Equal(t, 1, Gray.Channels())
	assert.Equal(t, 2, GrayAlpha.Channels())
	assert.Equal(t, 3, RGB.Channels())
	assert.Equal(t, 1, GrayAlpha.ColorChannels())
	assert.True(t, GrayAlpha.HasAlpha())
	assert.False(t, RGB.HasAlpha())
	assert.Equal(t, "GrayAlpha", GrayAlpha.String())
}

func TestValidate(t *testing.T) {
	require.NoError(t, rgbFixture().Validate())
	bad := rgbFixture()
	bad.Pix = bad.Pix[1:]
	require.Error(t, bad.Validate())
	require.Error(t, New(0, 3, Gray).Validate())
	var nilImg *Image
	require.Error(t, nilImg.Validate())

	assert.True(t, New(3, 2, Gray).SameSize(New(3, 2, RGB)))
	assert.False(t, New(3, 2, Gray).SameSize(New(2, 3, Gray)))
}

func TestLuma(t *testing.T) {
	assert.Equal(t, uint8(0), Luma(0, 0, 0))
	assert.Equal(t, uint8(255), Luma(255, 255, 255))
	assert.Equal(t, uint8(76), Luma(255, 0, 0))
	assert.Equal(t, uint8(150), Luma(0, 255, 0))
	assert.Equal(t, uint8(29), Luma(0, 0, 255))
}

func TestConvertRoundTrip(t *testing.T) {
	img := rgbFixture()

	la := ToLumaAlpha(img)
	require.Equal(t, GrayAlpha, la.Layout)
	assert.Equal(t, []uint8{76, 255, 150, 255, 29, 255, 10, 255, 79, 255, 255, 255}, la.Pix)

	rgb := ExpandRGB(la)
	require.Equal(t, RGB, rgb.Layout)
	for ii := range rgb.NumPixels() {
		p := rgb.Pix[ii*3 : ii*3+3]
		assert.Equal(t, la.Pix[ii*2], p[0])
		assert.Equal(t, p[0], p[1])
		assert.Equal(t, p[0], p[2])
	}

	gray := Convert(la, Gray)
	assert.Equal(t, []uint8{76, 150, 29, 10, 79, 255}, gray.Pix)
	assert.Equal(t, []uint8{76, 255, 150, 255, 29, 255, 10, 255, 79, 255, 255, 255}, Convert(gray, GrayAlpha).Pix)

	// Same layout returns a copy.
	clone := Convert(img, RGB)
	clone.Pix[0] = 0
	assert.Equal(t, uint8(255), img.Pix[0])
}

func TestNRGBARoundTrip(t *testing.T) {
	for _, layout := range []Layout{Gray, GrayAlpha, RGB} {
		img := Convert(rgbFixture(), layout)
		if layout == GrayAlpha {
			img.Pix[1] = 100
		}
		back := FromNRGBA(ToNRGBA(img), layout)
		assert.Equal(t, img, back, "layout %s", layout)
	}
}

func TestFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 3, 5, 5))
	gray.SetGray(2, 3, color.Gray{Y: 7})
	gray.SetGray(4, 4, color.Gray{Y: 9})
	img := FromImage(gray)
	require.Equal(t, Gray, img.Layout)
	assert.Equal(t, []uint8{7, 0, 0, 0, 0, 9}, img.Pix)

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	rgba.Set(1, 0, color.RGBA{R: 4, G: 5, B: 6, A: 255})
	img = FromImage(rgba)
	require.Equal(t, RGB, img.Layout)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, img.Pix)

	grayAlpha := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	grayAlpha.Set(0, 0, color.NRGBA{R: 50, G: 50, B: 50, A: 128})
	grayAlpha.Set(1, 0, color.NRGBA{R: 70, G: 70, B: 70, A: 255})
	img = FromImage(grayAlpha)
	require.Equal(t, GrayAlpha, img.Layout)
	assert.Equal(t, []uint8{50, 128, 70, 255}, img.Pix)

	assert.IsType(t, &image.Gray{}, ToImage(Convert(img, Gray)))
	assert.IsType(t, &image.NRGBA{}, ToImage(img))
}

func TestFloat(t *testing.T) {
	img := rgbFixture()
	f := ToFloat(img)
	assert.InDelta(t, 1.0, f.Pix[0], 1e-12)
	assert.Equal(t, img, f.Quantize(), "ToFloat/Quantize must be the identity")

	f.Pix[0] = 1.7
	f.Pix[1] = -0.2
	q := f.Quantize()
	assert.Equal(t, uint8(255), q.Pix[0])
	assert.Equal(t, uint8(0), q.Pix[1])

	// Truncation, not rounding.
	assert.Equal(t, uint8(127), QuantizeSample(0.4999))

	la := ToFloat(New(2, 1, GrayAlpha))
	assert.True(t, la.IsColorSample(0))
	assert.False(t, la.IsColorSample(1))
	assert.True(t, la.IsColorSample(2))
}

func TestMeanLuminance(t *testing.T) {
	img := New(2, 2, GrayAlpha)
	for ii := range 4 {
		img.Pix[2*ii] = 51
		img.Pix[2*ii+1] = 255
	}
	assert.InDelta(t, 0.2, MeanLuminance(img), 1e-9)
	assert.Equal(t, 0.0, MeanLuminance(New(3, 3, RGB)))
}
