// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package camera

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/gift"
	"github.com/gomlx/facenoise/pkg/core/raster"
	"gonum.org/v1/gonum/stat/distuv"
	"k8s.io/klog/v2"
)

// BlurParams configures Blur.
type BlurParams struct {
	// Sigma is the standard deviation of the gaussian kernel, in pixels.
	// If 0, an integer in [3, 5] is drawn.
	Sigma float64
}

// Blur applies an isotropic gaussian blur to every channel.
func Blur(img *raster.Image, rng *rand.Rand, params BlurParams) (*raster.Image, error) {
	if err := validate(img, "Blur"); err != nil {
		return nil, err
	}
	sigma := params.Sigma
	if sigma <= 0 {
		sigma = float64(randInt(rng, 3, 5))
	}
	klog.V(3).Infof("blur: sigma=%g", sigma)
	g := gift.New(gift.GaussianBlur(float32(sigma)))
	src := raster.ToNRGBA(img)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return raster.FromNRGBA(dst, img.Layout), nil
}

// GaussianParams configures Gaussian.
type GaussianParams struct {
	// Variance of the additive noise, on samples normalized to [0, 1].
	// If 0, one of 0.01, 0.02 or 0.03 is drawn.
	Variance float64

	// Infrared converts the input to luma+alpha and expands the result back to RGB.
	Infrared bool
}

// Gaussian adds zero-mean normal noise to every colour sample, clipping the result to the valid
// range. Alpha samples are left untouched.
func Gaussian(img *raster.Image, rng *rand.Rand, params GaussianParams) (*raster.Image, error) {
	if err := validate(img, "Gaussian"); err != nil {
		return nil, err
	}
	variance := params.Variance
	if variance <= 0 {
		variance = 0.01 * float64(randInt(rng, 1, 3))
	}
	klog.V(3).Infof("gaussian: variance=%g infrared=%v", variance, params.Infrared)
	f := raster.ToFloat(infraredIn(img, params.Infrared))
	noise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(variance), Src: rng}
	for ii := range f.Pix {
		if f.IsColorSample(ii) {
			f.Pix[ii] += noise.Rand()
		}
	}
	f.ClipInPlace()
	return infraredOut(f.Quantize(), params.Infrared), nil
}

// PoissonParams configures Poisson.
type PoissonParams struct {
	// Infrared converts the input to luma+alpha and expands the result back to RGB.
	Infrared bool
}

// Poisson applies signal dependent shot noise: samples are scaled by the smallest power of two
// not below the number of distinct sample levels in the image, replaced by a Poisson draw with
// that mean, and scaled back. There is no tunable intensity.
func Poisson(img *raster.Image, rng *rand.Rand, params PoissonParams) (*raster.Image, error) {
	if err := validate(img, "Poisson"); err != nil {
		return nil, err
	}
	f := raster.ToFloat(infraredIn(img, params.Infrared))
	levels := poissonLevels(f)
	klog.V(3).Infof("poisson: levels=%g infrared=%v", levels, params.Infrared)
	for ii, v := range f.Pix {
		if !f.IsColorSample(ii) || v <= 0 {
			continue
		}
		shot := distuv.Poisson{Lambda: v * levels, Src: rng}
		f.Pix[ii] = shot.Rand() / levels
	}
	f.ClipInPlace()
	return infraredOut(f.Quantize(), params.Infrared), nil
}

// poissonLevels returns 2^ceil(log2(n)) where n is the number of distinct colour sample values.
func poissonLevels(f *raster.Float) float64 {
	var seen [256]bool
	distinct := 0
	for ii, v := range f.Pix {
		if !f.IsColorSample(ii) {
			continue
		}
		level := raster.QuantizeSample(v)
		if !seen[level] {
			seen[level] = true
			distinct++
		}
	}
	return math.Exp2(math.Ceil(math.Log2(float64(max(distinct, 1)))))
}

// SaltAndPepperParams configures SaltAndPepper.
type SaltAndPepperParams struct {
	// Amount is the fraction of pixels replaced by an extreme value.
	// If 0, one of 0.003, 0.004, 0.005 or 0.006 is drawn.
	Amount float64

	// Infrared converts the input to grayscale first; the result stays grayscale.
	Infrared bool
}

// SaltAndPepper replaces each pixel, independently with probability Amount, by black or white
// with equal odds. Alpha samples are left untouched.
func SaltAndPepper(img *raster.Image, rng *rand.Rand, params SaltAndPepperParams) (*raster.Image, error) {
	if err := validate(img, "SaltAndPepper"); err != nil {
		return nil, err
	}
	amount := params.Amount
	if amount <= 0 {
		amount = 0.001 * float64(randInt(rng, 3, 6))
	}
	klog.V(3).Infof("salt_and_pepper: amount=%g infrared=%v", amount, params.Infrared)
	var out *raster.Image
	if params.Infrared {
		out = raster.Convert(img, raster.Gray)
	} else {
		out = img.Clone()
	}
	flip := distuv.Bernoulli{P: amount, Src: rng}
	salt := distuv.Bernoulli{P: 0.5, Src: rng}
	channels, colors := out.Channels(), out.Layout.ColorChannels()
	for pos := 0; pos < len(out.Pix); pos += channels {
		if flip.Rand() == 0 {
			continue
		}
		var v uint8
		if salt.Rand() == 1 {
			v = 0xFF
		}
		for ch := range colors {
			out.Pix[pos+ch] = v
		}
	}
	return out, nil
}
