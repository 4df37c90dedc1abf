// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package masks

import (
	"github.com/gomlx/facenoise/pkg/core/raster"
	"github.com/pkg/errors"
)

// Regions split the image plane in three: the effect region, the transition band around it and
// the untouched background. Every pixel belongs to exactly one of them.
type Regions struct {
	Effect, Transition, Background *Mask
}

// newRegions derives the regions from a primary mask and the union of its transition bands:
// the effect is what is left of the primary once the bands are removed, and the background is
// everything else.
func newRegions(primary, transition *Mask) Regions {
	return Regions{
		Effect:     AndNot(primary, transition),
		Transition: transition,
		Background: Not(Or(primary, transition)),
	}
}

// PointRegions returns the regions of a point effect: the transition band is the ring between
// the ellipse and its dilated blend ellipse.
func PointRegions(width, height int, ellipse EllipseGeometry) Regions {
	primary := ellipse.Rasterize(width, height)
	blend := ellipse.Blend().Rasterize(width, height)
	return newRegions(primary, Xor(primary, blend))
}

// StreakRegions returns the regions of a streak effect. For a source the blend slice is
// BlendMargin rows deeper than the primary and the band lies below the slice; for a shadow it
// is BlendMargin rows shallower and the band lies inside the slice.
func StreakRegions(width, height int, slice SliceGeometry, source bool) Regions {
	margin := BlendMargin(width, height)
	if !source {
		margin = -margin
	}
	primary := slice.Rasterize(width, height)
	blend := slice.Shift(margin).Rasterize(width, height)
	return newRegions(primary, Xor(primary, blend))
}

// PipeRegions returns the regions of a pipe effect. The band has two transition strips, each
// BlendMargin rows wide, just outside its top and bottom lines.
func PipeRegions(width, height int, pipe PipeGeometry) Regions {
	margin := BlendMargin(width, height)
	primary := pipe.Rasterize(width, height)

	above := SliceGeometry{LeftCut: pipe.TopLeftCut, RightCut: pipe.TopRightCut}
	topBand := Xor(above.Rasterize(width, height), above.Shift(-margin).Rasterize(width, height))

	below := belowMask(width, height, pipe.BottomLeftCut, pipe.BottomRightCut)
	belowBlend := belowMask(width, height, pipe.BottomLeftCut+margin, pipe.BottomRightCut+margin)
	bottomBand := Xor(below, belowBlend)

	return newRegions(primary, Or(topBand, bottomBand))
}

// Coverage returns, for every pixel, the number of regions it belongs to.
func (r Regions) Coverage() []int {
	counts := make([]int, len(r.Effect.Pix))
	for _, m := range []*Mask{r.Effect, r.Transition, r.Background} {
		for ii, v := range m.Pix {
			if v != 0 {
				counts[ii]++
			}
		}
	}
	return counts
}

// Validate checks that the regions have the same size and partition the image plane.
func (r Regions) Validate() error {
	if r.Effect == nil || r.Transition == nil || r.Background == nil {
		return errors.New("regions with a missing mask")
	}
	for _, m := range []*Mask{r.Transition, r.Background} {
		if m.Width != r.Effect.Width || m.Height != r.Effect.Height {
			return errors.Errorf("region masks with different sizes: %dx%d and %dx%d",
				r.Effect.Width, r.Effect.Height, m.Width, m.Height)
		}
	}
	for ii, count := range r.Coverage() {
		if count != 1 {
			return errors.Errorf("pixel (%d, %d) is covered by %d regions",
				ii%r.Effect.Width, ii/r.Effect.Width, count)
		}
	}
	return nil
}

// Composite assembles the output of an environment effect: each ingredient is masked by its
// region (pixels outside zeroed) and the three masked images are summed with saturation.
//
// All ingredients must have the size of the regions and the same layout, which is the layout of
// the result.
func Composite(r Regions, effect, transition, background *raster.Image) (*raster.Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	layout := effect.Layout
	out := raster.New(r.Effect.Width, r.Effect.Height, layout)
	for _, part := range []struct {
		name string
		img  *raster.Image
		mask *Mask
	}{
		{"effect", effect, r.Effect},
		{"transition", transition, r.Transition},
		{"background", background, r.Background},
	} {
		if !part.img.SameSize(effect) {
			return nil, errors.Errorf("%s ingredient is %dx%d, expected %dx%d",
				part.name, part.img.Width, part.img.Height, effect.Width, effect.Height)
		}
		if part.img.Layout != layout {
			return nil, errors.Errorf("%s ingredient has layout %s, expected %s", part.name, part.img.Layout, layout)
		}
		masked, err := Apply(part.img, part.mask)
		if err != nil {
			return nil, errors.WithMessagef(err, "masking %s ingredient", part.name)
		}
		for ii, v := range masked.Pix {
			out.Pix[ii] = uint8(min(int(out.Pix[ii])+int(v), 0xFF))
		}
	}
	return out, nil
}
