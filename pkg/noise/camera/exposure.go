// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package camera

import (
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/gomlx/facenoise/pkg/core/raster"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// ResetGamma replaces any gamma of the exposure search that is not positive. Gammas in
	// (0, ResetGamma) stay reachable: very dark inputs need them to be brightened enough.
	ResetGamma = 0.1

	// gammaStep is the largest random nudge applied to gamma per iteration.
	gammaStep = 0.25
)

// ExposureParams configures UnderExpose and OverExpose.
type ExposureParams struct {
	// Gamma, if positive, is applied once, with no search for a target luminance.
	Gamma float64

	// Blending selects targets relative to the input's own mean luminance, used when the result
	// is an ingredient of an environment effect. Otherwise the targets are absolute.
	Blending bool

	// MaxIterations bounds the search. If 0 the search only stops when the mean luminance
	// reaches its target interval, which may never happen for near uniform black or white
	// inputs.
	MaxIterations int
}

// exposureTarget is the interval [lo, hi] the mean luminance of the output must fall into, and
// the target that decides the direction of each gamma nudge.
type exposureTarget struct {
	name           string
	target, lo, hi float64
	gamma          float64
}

// UnderExpose darkens the image with a gamma remap, searching for a gamma that brings the mean
// luminance into [0.03, 0.15], or into [0.1, 0.8*original] in blending context.
func UnderExpose(img *raster.Image, rng *rand.Rand, params ExposureParams) (*raster.Image, error) {
	if err := validate(img, "UnderExpose"); err != nil {
		return nil, err
	}
	original := raster.MeanLuminance(img)
	t := exposureTarget{name: "under_expose", target: 0.15, lo: 0.03}
	if params.Blending {
		t.target, t.lo = original*0.8, 0.1
	}
	t.hi = t.target
	t.gamma = math.Exp(1 + original - t.target)
	return expose(img, rng, params, t)
}

// OverExpose brightens the image with a gamma remap, searching for a gamma that brings the mean
// luminance into [0.85, 0.9], or into [1.2*original, 0.75] in blending context.
func OverExpose(img *raster.Image, rng *rand.Rand, params ExposureParams) (*raster.Image, error) {
	if err := validate(img, "OverExpose"); err != nil {
		return nil, err
	}
	original := raster.MeanLuminance(img)
	t := exposureTarget{name: "over_expose", target: 0.85, hi: 0.9}
	if params.Blending {
		t.target, t.hi = original*1.2, 0.75
	}
	t.lo = t.target
	t.gamma = math.Exp(t.target-original) - 1
	return expose(img, rng, params, t)
}

// expose runs the search: the gamma remap is always applied to the original image, and gamma is
// nudged down (brighter) while the mean is below the target and up (darker) while it is above
// the interval.
func expose(img *raster.Image, rng *rand.Rand, params ExposureParams, t exposureTarget) (*raster.Image, error) {
	if params.Gamma > 0 {
		return AdjustGamma(img, params.Gamma), nil
	}
	if t.lo > t.hi {
		klog.Warningf("%s: target interval [%.3f, %.3f] is empty, the search will not converge", t.name, t.lo, t.hi)
	}
	gamma := resetGamma(t.gamma)
	out := AdjustGamma(img, gamma)
	mean := raster.MeanLuminance(out)
	for iteration := 0; mean < t.lo || mean > t.hi; iteration++ {
		if params.MaxIterations > 0 && iteration >= params.MaxIterations {
			return nil, errors.Wrapf(ErrNoConvergence, "%s: mean luminance %.4f not in [%.4f, %.4f] after %d iterations (gamma=%.4f)",
				t.name, mean, t.lo, t.hi, iteration, gamma)
		}
		step := gammaStep * rng.Float64()
		if mean < t.target {
			gamma -= step
		} else {
			gamma += step
		}
		gamma = resetGamma(gamma)
		out = AdjustGamma(img, gamma)
		mean = raster.MeanLuminance(out)
		klog.V(3).Infof("%s: iteration %d gamma=%.4f mean=%.4f", t.name, iteration, gamma, mean)
	}
	return out, nil
}

func resetGamma(gamma float64) float64 {
	if gamma <= 0 {
		return ResetGamma
	}
	return gamma
}

// AdjustGamma remaps every colour sample v (normalized to [0, 1]) to v^gamma: gamma > 1 darkens
// and gamma < 1 brightens. Alpha is preserved.
func AdjustGamma(img *raster.Image, gamma float64) *raster.Image {
	// imaging takes the inverse exponent.
	adjusted := imaging.AdjustGamma(raster.ToNRGBA(img), 1/gamma)
	return raster.FromNRGBA(adjusted, img.Layout)
}
