// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package camera implements pixel-local degradations that simulate sensor and optics
// imperfections: blur, gaussian (sensor) noise, poisson (shot) noise, salt-and-pepper dropout,
// and under- and over-exposure.
//
// Every transform takes the image, an explicit random source and a parameter struct, and returns
// a new image with the same width and height. Zero-valued parameters are drawn from their
// documented default range using the random source, so a transform is reproducible by seeding
// the source, and fully deterministic when all parameters are pinned and the primitive itself
// draws no noise.
package camera

import (
	"math/rand/v2"

	"github.com/gomlx/facenoise/pkg/core/raster"
	"github.com/pkg/errors"
)

// ErrNoConvergence is returned by the exposure transforms when ExposureParams.MaxIterations is
// set and the mean luminance did not reach its target interval within that many iterations.
var ErrNoConvergence = errors.New("exposure did not converge")

// randInt returns a uniform integer in [lo, hi], both inclusive.
func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// infraredIn converts the input to luma+alpha when infrared handling is requested.
func infraredIn(img *raster.Image, infrared bool) *raster.Image {
	if infrared {
		return raster.ToLumaAlpha(img)
	}
	return img
}

// infraredOut expands a luma+alpha noise result back to the 3-channel layout persisted on disk.
func infraredOut(img *raster.Image, infrared bool) *raster.Image {
	if infrared {
		return raster.ExpandRGB(img)
	}
	return img
}

func validate(img *raster.Image, transform string) error {
	if err := img.Validate(); err != nil {
		return errors.WithMessagef(err, "camera.%s", transform)
	}
	return nil
}
