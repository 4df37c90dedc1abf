// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package corpus walks a tree of face images, one directory per subject and one sub-directory
// per category, and writes noised copies into a mirrored output tree. It also removes previously
// generated camera noise.
//
// The layout of the trees:
//
//	<DataDir>/<subject>/<category>/<image>.<ext>
//	<OutputDir>/<subject>/<category>/<kind>/<image>_<kind>[_NNN].<ext>
//
// Each subject is processed independently by one worker, and reported as one Result in the
// Summary of the run.
package corpus

import (
	"os"
	"runtime"
	"strings"

	"github.com/gomlx/facenoise/pkg/noise"
	"github.com/gomlx/facenoise/pkg/support/xslices"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultCategories are the category directories expected under each subject.
var DefaultCategories = []string{
	"Live", "Paper_Mask", "Covid_Mask", "Display_Replay", "Spandex_Mask",
	"Live_exterior", "Paper_Mask_exterior", "Covid_Mask_exterior", "Display_Replay_exterior", "Spandex_Mask_exterior",
}

// DefaultExtensions of the image files read from the category directories.
var DefaultExtensions = []string{".png"}

// Strategy decides how many noised copies are generated per image.
//
// It implements flag.Value, so it can be used directly with flag.Var.
type Strategy int

const (
	// StrategyRandom draws one kind of noise (or none) per image and variant.
	StrategyRandom Strategy = iota

	// StrategyExhaustive applies every enabled kind of noise to every image, once per variant.
	StrategyExhaustive
)

var strategyNames = []string{
	StrategyRandom:     "random",
	StrategyExhaustive: "exhaustive",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "Strategy(?)"
	}
	return strategyNames[s]
}

// StrategyString converts "random" or "exhaustive" (case-insensitive) to a Strategy.
func StrategyString(name string) (Strategy, error) {
	lower := strings.ToLower(name)
	for ii, strategyName := range strategyNames {
		if strategyName == lower {
			return Strategy(ii), nil
		}
	}
	return 0, errors.Errorf("%q is not a valid strategy: options are %v", name, strategyNames)
}

// Set implements flag.Value.
func (s *Strategy) Set(name string) error {
	var err error
	*s, err = StrategyString(name)
	return err
}

// Config of a generation or removal run.
type Config struct {
	// DataDir is the root of the input tree, with one directory per subject.
	DataDir string

	// OutputDir is the root of the output tree. If empty, DataDir is used.
	OutputDir string

	// Categories are the names of the category directories under each subject. Missing ones are
	// skipped.
	Categories []string

	// Extensions (with the leading ".") of the image files to noise, matched case-insensitively.
	Extensions []string

	// Pool of enabled noise kinds.
	Pool noise.Pool

	// Strategy of generation.
	Strategy Strategy

	// Variants is the number of independent draws per image. If larger than 1, the output file
	// names carry a zero-padded counter.
	Variants int

	// Infrared enables the luma+alpha handling of the noise primitives.
	Infrared bool

	// Parallelism is the number of subjects processed concurrently. 0 processes them
	// sequentially in the caller's goroutine, -1 has no limit.
	Parallelism int

	// Seed of the root random source, from which every subject derives its own. 0 seeds from
	// system entropy, and the run is not reproducible.
	Seed uint64

	// ExposureMaxIterations bounds the exposure searches. 0 is unbounded.
	ExposureMaxIterations int
}

// DefaultConfig returns a configuration with the default categories and extensions, all noise
// kinds enabled, one random draw per image, infrared handling and one worker per CPU.
func DefaultConfig() *Config {
	return &Config{
		Categories:  append([]string(nil), DefaultCategories...),
		Extensions:  append([]string(nil), DefaultExtensions...),
		Pool:        noise.PoolAll,
		Strategy:    StrategyRandom,
		Variants:    1,
		Infrared:    true,
		Parallelism: runtime.NumCPU(),
	}
}

// Output returns the root of the output tree.
func (c *Config) Output() string {
	if c.OutputDir == "" {
		return c.DataDir
	}
	return c.OutputDir
}

// NoiseOptions returns the options passed to every noise transform.
func (c *Config) NoiseOptions() noise.Options {
	return noise.Options{Infrared: c.Infrared, ExposureMaxIterations: c.ExposureMaxIterations}
}

// Validate checks the configuration, but not the file system.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("corpus: DataDir not set")
	}
	if len(c.Categories) == 0 {
		return errors.New("corpus: no categories configured")
	}
	if len(c.Extensions) == 0 {
		return errors.New("corpus: no image extensions configured")
	}
	if c.Variants < 1 {
		return errors.Errorf("corpus: Variants must be at least 1, got %d", c.Variants)
	}
	if c.Strategy.String() == "Strategy(?)" {
		return errors.Errorf("corpus: invalid strategy %d", int(c.Strategy))
	}
	if c.ExposureMaxIterations < 0 {
		return errors.Errorf("corpus: ExposureMaxIterations must be >= 0, got %d", c.ExposureMaxIterations)
	}
	return nil
}

// Layout overrides the expected structure of the subject directories. It is read from a YAML
// file like:
//
//	categories: [Live, Paper_Mask]
//	extensions: [.png, .bmp]
type Layout struct {
	Categories []string `yaml:"categories"`
	Extensions []string `yaml:"extensions"`
}

// LoadLayout reads a layout YAML file.
func LoadLayout(path string) (*Layout, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read layout file %q", path)
	}
	layout := &Layout{}
	if err := yaml.Unmarshal(contents, layout); err != nil {
		return nil, errors.Wrapf(err, "failed to parse layout file %q", path)
	}
	layout.Extensions = xslices.Map(layout.Extensions, NormalizeExtension)
	return layout, nil
}

// NormalizeExtension lower-cases ext and adds the leading ".", if missing.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ApplyLayout overrides the categories and extensions that are set in the layout.
func (c *Config) ApplyLayout(layout *Layout) {
	if len(layout.Categories) > 0 {
		c.Categories = layout.Categories
	}
	if len(layout.Extensions) > 0 {
		c.Extensions = layout.Extensions
	}
}
