// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// facenoise generates noised copies of a face image corpus, or removes the camera noise
// previously generated.
//
// Example:
//
//	facenoise -data ~/work/faces -noise CAM -seed 42
//	facenoise -data ~/work/faces -mode RM
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/facenoise/pkg/corpus"
	"github.com/gomlx/facenoise/pkg/support/fsutil"
	"github.com/gomlx/facenoise/pkg/support/xslices"
	"github.com/gomlx/facenoise/ui/commandline"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	modeNoise  = "NOISE"
	modeRemove = "RM"
)

var (
	defaults = corpus.DefaultConfig()

	flagMode = flag.String("mode", modeNoise,
		fmt.Sprintf("%s generates noised copies of the images, %s removes the camera noise directories.", modeNoise, modeRemove))
	flagDataDir   = flag.String("data", "", "Root directory of the corpus, with one sub-directory per subject. Required.")
	flagOutputDir = flag.String("output", "", "Root of the output tree. If empty, the noise is written into the -data tree.")
	flagLayout    = flag.String("layout", "", "Optional YAML file overriding the categories and image extensions of the corpus.")
	flagVariants  = flag.Int("variants", defaults.Variants,
		"Number of independent draws per image. If larger than 1, the output files are numbered.")
	flagInfrared    = flag.Bool("ir", defaults.Infrared, "Handle images as infrared (luma+alpha) for the camera noises.")
	flagParallelism = flag.Int("parallelism", defaults.Parallelism,
		"Number of subjects processed in parallel. 0 processes them sequentially, -1 has no limit.")
	flagSeed          = flag.Uint64("seed", 0, "Seed of the random sources. If 0, a random seed is used and the run is not reproducible.")
	flagMaxIterations = flag.Int("exposure_max_iterations", 0,
		"Maximum iterations of the exposure searches, after which the image fails. 0 is unbounded.")
	flagProgress = flag.Bool("progress", true, "Display a progress bar.")

	flagCategories = xslices.Flag[string]("categories", nil,
		"Comma-separated category directories under each subject. Overrides the defaults and -layout.",
		func(s string) (string, error) { return strings.TrimSpace(s), nil })
	flagExtensions = xslices.Flag[string]("extensions", nil,
		"Comma-separated image file extensions. Overrides the defaults and -layout.",
		func(s string) (string, error) { return corpus.NormalizeExtension(s), nil })
)

func main() {
	cfg := corpus.DefaultConfig()
	flag.Var(&cfg.Pool, "noise", "Kinds of noise to generate: ALL, CAM (camera) or ENV (environment).")
	flag.Var(&cfg.Strategy, "strategy",
		"random draws one kind of noise (or none) per image and variant, exhaustive applies every kind.")
	klog.InitFlags(nil)
	flag.Parse()

	var exitCode int
	err := exceptions.TryCatch[error](func() { exitCode = run(cfg) })
	if err != nil {
		klog.Errorf("Failed with error: %+v", err)
		exitCode = 1
	}
	klog.Flush()
	os.Exit(exitCode)
}

// run executes the selected mode and returns the exit code.
func run(cfg *corpus.Config) int {
	if *flagDataDir == "" {
		klog.Errorf("Missing -data directory. See 'facenoise -help'.")
		return 1
	}
	cfg.DataDir = fsutil.MustReplaceTildeInDir(*flagDataDir)
	if *flagOutputDir != "" {
		cfg.OutputDir = fsutil.MustReplaceTildeInDir(*flagOutputDir)
	}
	if *flagLayout != "" {
		layoutPath := fsutil.MustReplaceTildeInDir(*flagLayout)
		if !fsutil.MustFileExists(layoutPath) {
			klog.Errorf("Layout file %q not found.", layoutPath)
			return 1
		}
		cfg.ApplyLayout(must.M1(corpus.LoadLayout(layoutPath)))
	}
	cfg.ApplyLayout(&corpus.Layout{Categories: *flagCategories, Extensions: *flagExtensions})
	cfg.Variants = *flagVariants
	cfg.Infrared = *flagInfrared
	cfg.Parallelism = *flagParallelism
	cfg.Seed = *flagSeed
	cfg.ExposureMaxIterations = *flagMaxIterations

	switch strings.ToUpper(*flagMode) {
	case modeNoise:
		return generate(cfg)
	case modeRemove:
		removal, err := corpus.Remove(cfg)
		if err != nil {
			klog.Errorf("Removal failed: %+v", err)
			return 1
		}
		commandline.ReportRemoval(os.Stdout, removal)
		return 0
	default:
		klog.Errorf("Invalid -mode %q: options are %s or %s.", *flagMode, modeNoise, modeRemove)
		return 1
	}
}

func generate(cfg *corpus.Config) int {
	var progress corpus.Progress
	var bar *commandline.ProgressBar
	if *flagProgress {
		bar = commandline.NewProgressBar(os.Stdout)
		progress = bar
	}
	summary, err := corpus.Generate(cfg, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		if errors.Is(err, corpus.ErrMissingDataDir) {
			klog.Errorf("Data directory not found: %v", err)
		} else {
			klog.Errorf("Generation failed: %+v", err)
		}
		return 1
	}
	commandline.ReportSummary(os.Stdout, summary)
	if err := summary.Err(); err != nil {
		klog.Errorf("%v", err)
		return 1
	}
	return 0
}
