// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package environment synthesizes lighting and occlusion artifacts: bright sources and shadows
// shaped as points (ellipses), streaks (a slice from the top of the image) or pipes (a band
// across the image).
//
// Every effect composites three renderings of the same input through a partition of the image
// plane in effect, transition and background regions (see masks.Regions):
//
//   - a source uses an over-exposed copy for the effect, its blur for the transition, and a
//     lightly noised under-exposed copy for the background;
//   - a shadow uses a noisier under-exposed copy for the effect, the blur of an under-exposed
//     copy for the transition, and a shot-noised over-exposed copy for the background.
//
// Exposures always run in blending context (targets relative to the input's own luminance).
package environment

import (
	"math/rand/v2"

	"github.com/gomlx/facenoise/pkg/core/masks"
	"github.com/gomlx/facenoise/pkg/core/raster"
	"github.com/gomlx/facenoise/pkg/noise/camera"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrNotImplemented is returned when an effect is requested with an option that is not supported
// yet, like an explicit angle for streaks and pipes.
var ErrNotImplemented = errors.New("not implemented")

const (
	// transitionSigma is the blur applied to the transition ingredient.
	transitionSigma = 2

	// sourceBackgroundVariance and shadowEffectVariance are the gaussian noise added to the
	// under-exposed ingredients.
	sourceBackgroundVariance = 0.001
	shadowEffectVariance     = 0.01
)

// Options common to all effects.
type Options struct {
	// Infrared makes the noised ingredients go through the luma+alpha round trip. The composited
	// result is then RGB.
	Infrared bool

	// MaxIterations bounds the exposure searches, see camera.ExposureParams. 0 is unbounded.
	MaxIterations int
}

// PointParams configures PointSource and PointShadow.
type PointParams struct {
	Options

	// Geometry of the ellipse. If nil, one is drawn with masks.RandomEllipse.
	Geometry *masks.EllipseGeometry

	// Scale, if set and Geometry is nil, fixes both radii to Scale times the smaller image
	// dimension; the angle and centre are still drawn.
	Scale *float64
}

// StreakParams configures StreakSource and StreakShadow.
type StreakParams struct {
	Options

	// Geometry of the slice. If nil, one is drawn with masks.RandomSlice.
	Geometry *masks.SliceGeometry

	// Angle is not supported: setting it returns ErrNotImplemented.
	Angle *float64
}

// PipeParams configures PipeSource and PipeShadow.
type PipeParams struct {
	Options

	// Geometry of the band. If nil, one is drawn with masks.RandomPipe.
	Geometry *masks.PipeGeometry

	// Angle is not supported: setting it returns ErrNotImplemented.
	Angle *float64
}

// polarity selects the ingredient recipe.
type polarity int

const (
	source polarity = iota
	shadow
)

func (p polarity) String() string {
	if p == source {
		return "source"
	}
	return "shadow"
}

// PointSource composites a bright elliptical spot.
func PointSource(img *raster.Image, rng *rand.Rand, params PointParams) (*raster.Image, error) {
	return point(img, rng, params, source)
}

// PointShadow composites a dark elliptical spot.
func PointShadow(img *raster.Image, rng *rand.Rand, params PointParams) (*raster.Image, error) {
	return point(img, rng, params, shadow)
}

// StreakSource composites bright light over the top part of the image, down to a random slanted
// line.
func StreakSource(img *raster.Image, rng *rand.Rand, params StreakParams) (*raster.Image, error) {
	return streak(img, rng, params, source)
}

// StreakShadow composites a shadow over the top part of the image, down to a random slanted
// line.
func StreakShadow(img *raster.Image, rng *rand.Rand, params StreakParams) (*raster.Image, error) {
	return streak(img, rng, params, shadow)
}

// PipeSource composites a band of bright light across the image.
func PipeSource(img *raster.Image, rng *rand.Rand, params PipeParams) (*raster.Image, error) {
	return pipe(img, rng, params, source)
}

// PipeShadow composites a band of shadow across the image.
func PipeShadow(img *raster.Image, rng *rand.Rand, params PipeParams) (*raster.Image, error) {
	return pipe(img, rng, params, shadow)
}

func point(img *raster.Image, rng *rand.Rand, params PointParams, p polarity) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "point %s", p)
	}
	var geometry masks.EllipseGeometry
	switch {
	case params.Geometry != nil:
		geometry = *params.Geometry
	case params.Scale != nil:
		geometry = scaledEllipse(rng, img.Width, img.Height, *params.Scale)
	default:
		geometry = masks.RandomEllipse(rng, img.Width, img.Height)
	}
	klog.V(3).Infof("point %s: %+v", p, geometry)
	regions := masks.PointRegions(img.Width, img.Height, geometry)
	return composite(img, rng, regions, p, params.Options)
}

// scaledEllipse draws an ellipse with both radii fixed by scale.
func scaledEllipse(rng *rand.Rand, width, height int, scale float64) masks.EllipseGeometry {
	radius := max(1, int(scale*float64(min(width, height))))
	g := masks.EllipseGeometry{
		RadiusX: radius,
		RadiusY: radius,
		Angle:   float64(rng.IntN(361)),
	}
	g.CenterY = radius + rng.IntN(max(height-2*radius, 0)+1)
	g.CenterX = radius + rng.IntN(max(width-2*radius, 0)+1)
	return g
}

func streak(img *raster.Image, rng *rand.Rand, params StreakParams, p polarity) (*raster.Image, error) {
	if params.Angle != nil {
		return nil, errors.Wrapf(ErrNotImplemented, "streak %s with an explicit angle (%g)", p, *params.Angle)
	}
	if err := img.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "streak %s", p)
	}
	var geometry masks.SliceGeometry
	if params.Geometry != nil {
		geometry = *params.Geometry
	} else {
		geometry = masks.RandomSlice(rng, img.Width, img.Height)
	}
	klog.V(3).Infof("streak %s: %+v", p, geometry)
	regions := masks.StreakRegions(img.Width, img.Height, geometry, p == source)
	return composite(img, rng, regions, p, params.Options)
}

func pipe(img *raster.Image, rng *rand.Rand, params PipeParams, p polarity) (*raster.Image, error) {
	if params.Angle != nil {
		return nil, errors.Wrapf(ErrNotImplemented, "pipe %s with an explicit angle (%g)", p, *params.Angle)
	}
	if err := img.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "pipe %s", p)
	}
	var geometry masks.PipeGeometry
	if params.Geometry != nil {
		geometry = *params.Geometry
	} else {
		geometry = masks.RandomPipe(rng, img.Width, img.Height)
	}
	klog.V(3).Infof("pipe %s: %+v", p, geometry)
	regions := masks.PipeRegions(img.Width, img.Height, geometry)
	return composite(img, rng, regions, p, params.Options)
}

// composite renders the three ingredients of the polarity and blends them through the regions.
func composite(img *raster.Image, rng *rand.Rand, regions masks.Regions, p polarity, opts Options) (*raster.Image, error) {
	exposure := camera.ExposureParams{Blending: true, MaxIterations: opts.MaxIterations}
	over, err := camera.OverExpose(img, rng, exposure)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s over-exposed ingredient", p)
	}
	under, err := camera.UnderExpose(img, rng, exposure)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s under-exposed ingredient", p)
	}

	var effect, transition, background *raster.Image
	switch p {
	case source:
		effect = over
		transition, err = camera.Blur(over, rng, camera.BlurParams{Sigma: transitionSigma})
		if err == nil {
			background, err = camera.Gaussian(under, rng, camera.GaussianParams{
				Variance: sourceBackgroundVariance, Infrared: opts.Infrared})
		}
	case shadow:
		effect, err = camera.Gaussian(under, rng, camera.GaussianParams{
			Variance: shadowEffectVariance, Infrared: opts.Infrared})
		if err == nil {
			transition, err = camera.Blur(under, rng, camera.BlurParams{Sigma: transitionSigma})
		}
		if err == nil {
			background, err = camera.Poisson(over, rng, camera.PoissonParams{Infrared: opts.Infrared})
		}
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "%s ingredients", p)
	}

	layout := img.Layout
	if opts.Infrared {
		layout = raster.RGB
	}
	out, err := masks.Composite(regions,
		raster.Convert(effect, layout), raster.Convert(transition, layout), raster.Convert(background, layout))
	if err != nil {
		return nil, errors.WithMessagef(err, "compositing %s", p)
	}
	return out, nil
}
