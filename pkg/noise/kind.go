// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package noise is the closed set of noise kinds and the dispatch to their implementation in the
// camera and environment packages.
//
// A Kind has a stable snake-case name (e.g.: KindSaltAndPepper -> "salt_and_pepper") that is used
// to build output directory and file names. Names are converted back with KindString.
package noise

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind enumerates the noise transforms.
type Kind int

const (
	KindBlur Kind = iota
	KindGaussian
	KindPoisson
	KindSaltAndPepper
	KindUnderExpose
	KindOverExpose

	KindPointSource
	KindPointShadow
	KindStreakSource
	KindStreakShadow
	KindPipeSource
	KindPipeShadow
)

var kindNames = []string{
	KindBlur:          "blur",
	KindGaussian:      "gaussian",
	KindPoisson:       "poisson",
	KindSaltAndPepper: "salt_and_pepper",
	KindUnderExpose:   "under_expose",
	KindOverExpose:    "over_expose",
	KindPointSource:   "point_source",
	KindPointShadow:   "point_shadow",
	KindStreakSource:  "streak_source",
	KindStreakShadow:  "streak_shadow",
	KindPipeSource:    "pipe_source",
	KindPipeShadow:    "pipe_shadow",
}

// String returns the snake-case name of the kind.
func (k Kind) String() string {
	if !k.IsAKind() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsAKind returns whether k is one of the defined kinds.
func (k Kind) IsAKind() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// IsCamera returns whether k is a pixel-local camera noise.
func (k Kind) IsCamera() bool {
	return k >= KindBlur && k <= KindOverExpose
}

// IsEnvironment returns whether k is a composited environment effect.
func (k Kind) IsEnvironment() bool {
	return k >= KindPointSource && k <= KindPipeShadow
}

// KindValues returns all kinds, camera kinds first.
func KindValues() []Kind {
	kinds := make([]Kind, len(kindNames))
	for ii := range kinds {
		kinds[ii] = Kind(ii)
	}
	return kinds
}

// KindStrings returns the names of all kinds, in the order of KindValues.
func KindStrings() []string {
	names := make([]string, len(kindNames))
	copy(names, kindNames)
	return names
}

// KindString converts a name (case-insensitive) to its Kind.
func KindString(name string) (Kind, error) {
	lower := strings.ToLower(name)
	for ii, kindName := range kindNames {
		if kindName == lower {
			return Kind(ii), nil
		}
	}
	return 0, errors.Errorf("%q is not a valid noise kind: options are %v", name, kindNames)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsAKind() {
		return nil, errors.Errorf("invalid noise kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	var err error
	*k, err = KindString(string(text))
	return err
}

// CameraKinds returns the camera kinds: the four sensor noises and the two exposures.
func CameraKinds() []Kind {
	return KindValues()[KindBlur : KindOverExpose+1]
}

// EnvironmentKinds returns the six environment effects.
func EnvironmentKinds() []Kind {
	return KindValues()[KindPointSource : KindPipeShadow+1]
}
