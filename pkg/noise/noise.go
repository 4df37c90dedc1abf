// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package noise

import (
	"math/rand/v2"
	"strings"

	"github.com/gomlx/facenoise/pkg/core/raster"
	"github.com/gomlx/facenoise/pkg/noise/camera"
	"github.com/gomlx/facenoise/pkg/noise/environment"
	"github.com/gomlx/facenoise/pkg/support/sets"
	"github.com/pkg/errors"
)

// Pool selects which kinds of noise are enabled.
//
// It implements flag.Value, so it can be used directly with flag.Var.
type Pool int

const (
	PoolAll Pool = iota
	PoolCamera
	PoolEnvironment
)

var poolNames = []string{
	PoolAll:         "ALL",
	PoolCamera:      "CAM",
	PoolEnvironment: "ENV",
}

func (p Pool) String() string {
	if p < 0 || int(p) >= len(poolNames) {
		return "Pool(?)"
	}
	return poolNames[p]
}

// PoolString converts "ALL", "CAM" or "ENV" (case-insensitive) to a Pool.
func PoolString(name string) (Pool, error) {
	upper := strings.ToUpper(name)
	for ii, poolName := range poolNames {
		if poolName == upper {
			return Pool(ii), nil
		}
	}
	return 0, errors.Errorf("%q is not a valid noise pool: options are %v", name, poolNames)
}

// Set implements flag.Value.
func (p *Pool) Set(name string) error {
	var err error
	*p, err = PoolString(name)
	return err
}

// Kinds returns the kinds enabled by the pool, in the order of KindValues.
func (p Pool) Kinds() []Kind {
	switch p {
	case PoolCamera:
		return CameraKinds()
	case PoolEnvironment:
		return EnvironmentKinds()
	default:
		return KindValues()
	}
}

// KindSet returns the kinds of the pool as a set.
func (p Pool) KindSet() sets.Set[Kind] {
	return sets.MakeWith(p.Kinds()...)
}

// Choose draws uniformly among len(kinds)+1 outcomes: one of the kinds, or none, in which case
// ok is false and the image should be left alone.
func Choose(rng *rand.Rand, kinds []Kind) (kind Kind, ok bool) {
	idx := rng.IntN(len(kinds) + 1)
	if idx == 0 {
		return 0, false
	}
	return kinds[idx-1], true
}

// Options applied to every kind of noise. Parameters specific to each kind are always drawn from
// their default ranges.
type Options struct {
	// Infrared enables the luma+alpha handling of the noise primitives that support it.
	Infrared bool

	// ExposureMaxIterations bounds the exposure searches; 0 is unbounded.
	ExposureMaxIterations int
}

// Apply the noise of the given kind to img.
func Apply(kind Kind, img *raster.Image, rng *rand.Rand, opts Options) (*raster.Image, error) {
	env := environment.Options{Infrared: opts.Infrared, MaxIterations: opts.ExposureMaxIterations}
	exposure := camera.ExposureParams{MaxIterations: opts.ExposureMaxIterations}
	switch kind {
	case KindBlur:
		return camera.Blur(img, rng, camera.BlurParams{})
	case KindGaussian:
		return camera.Gaussian(img, rng, camera.GaussianParams{Infrared: opts.Infrared})
	case KindPoisson:
		return camera.Poisson(img, rng, camera.PoissonParams{Infrared: opts.Infrared})
	case KindSaltAndPepper:
		return camera.SaltAndPepper(img, rng, camera.SaltAndPepperParams{Infrared: opts.Infrared})
	case KindUnderExpose:
		return camera.UnderExpose(img, rng, exposure)
	case KindOverExpose:
		return camera.OverExpose(img, rng, exposure)
	case KindPointSource:
		return environment.PointSource(img, rng, environment.PointParams{Options: env})
	case KindPointShadow:
		return environment.PointShadow(img, rng, environment.PointParams{Options: env})
	case KindStreakSource:
		return environment.StreakSource(img, rng, environment.StreakParams{Options: env})
	case KindStreakShadow:
		return environment.StreakShadow(img, rng, environment.StreakParams{Options: env})
	case KindPipeSource:
		return environment.PipeSource(img, rng, environment.PipeParams{Options: env})
	case KindPipeShadow:
		return environment.PipeShadow(img, rng, environment.PipeParams{Options: env})
	}
	return nil, errors.Errorf("noise.Apply: invalid kind %s, options are %v", kind, KindValues())
}
