// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package corpus

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/facenoise/internal/workerspool"
	"github.com/gomlx/facenoise/pkg/core/raster"
	"github.com/gomlx/facenoise/pkg/noise"
	"github.com/gomlx/facenoise/pkg/support/fsutil"
	"github.com/gomlx/facenoise/pkg/support/sets"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrMissingDataDir is returned, before any work is done, when the input (or for removal, the
// output) root directory does not exist.
var ErrMissingDataDir = errors.New("data directory does not exist")

// OutputName returns the file name of a noised image: "{stem}_{kind}.{ext}", or
// "{stem}_{kind}_{NNN}.{ext}" with the counter zero padded to 3 digits if counter >= 0.
// The extension may be given with or without the leading ".".
func OutputName(stem string, kind noise.Kind, counter int, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if counter >= 0 {
		return fmt.Sprintf("%s_%s_%03d.%s", stem, kind, counter, ext)
	}
	return fmt.Sprintf("%s_%s.%s", stem, kind, ext)
}

// subjectPlan lists the work of one subject, found before dispatching it to a worker.
type subjectPlan struct {
	name       string
	categories []categoryPlan
	err        error
}

type categoryPlan struct {
	name  string
	files []string
}

// images returns the number of image files planned for the subject.
func (p subjectPlan) images() int {
	var n int
	for _, category := range p.categories {
		n += len(category.files)
	}
	return n
}

// planSubjects lists the subjects, their existing categories and their image files. It returns
// the total number of images.
func planSubjects(cfg *Config) ([]subjectPlan, int, error) {
	subjects, err := fsutil.ListDirs(cfg.DataDir)
	if err != nil {
		return nil, 0, err
	}
	extensions := sets.Make[string](len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions.Insert(strings.ToLower(ext))
	}

	plans := make([]subjectPlan, 0, len(subjects))
	total := 0
	for _, subject := range subjects {
		plan := subjectPlan{name: subject}
		for _, category := range cfg.Categories {
			dir := filepath.Join(cfg.DataDir, subject, category)
			isDir, err := fsutil.IsDir(dir)
			if err != nil {
				plan.err = err
				break
			}
			if !isDir {
				klog.V(2).Infof("subject %q has no category %q, skipping", subject, category)
				continue
			}
			files, err := fsutil.ListFiles(dir, extensions)
			if err != nil {
				plan.err = err
				break
			}
			plan.categories = append(plan.categories, categoryPlan{name: category, files: files})
			total += len(files)
		}
		plans = append(plans, plan)
	}
	return plans, total, nil
}

// newRootRand returns the random source every subject derives its own from.
func newRootRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Generate walks the input tree and writes noised copies of its images, see the package
// documentation for the layout.
//
// It returns ErrMissingDataDir if cfg.DataDir does not exist. Errors processing one subject
// don't stop the others: they are reported in the Result of the subject, and Summary.Err
// aggregates them.
//
// progress may be nil.
func Generate(cfg *Config, progress Progress) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	isDir, err := fsutil.IsDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, errors.Wrapf(ErrMissingDataDir, "%q", cfg.DataDir)
	}
	if progress == nil {
		progress = noProgress{}
	}

	start := time.Now()
	summary := &Summary{RunID: uuid.New(), Pool: cfg.Pool, Strategy: cfg.Strategy}
	plans, totalImages, err := planSubjects(cfg)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("run %s: %d subjects, %d images, pool %s, strategy %s",
		summary.RunID, len(plans), totalImages, cfg.Pool, cfg.Strategy)
	progress.Start(totalImages)

	root := newRootRand(cfg.Seed)
	summary.Results = make([]Result, len(plans))
	pool := workerspool.New()
	pool.SetMaxParallelism(cfg.Parallelism)
	for ii, plan := range plans {
		// Sources are derived in subject order, independent of scheduling.
		rng := rand.New(rand.NewPCG(root.Uint64(), root.Uint64()))
		pool.WaitToStart(func() {
			result := processSubject(cfg, plan, rng, progress)
			summary.Results[ii] = result
			progress.SubjectDone(result)
		})
	}
	pool.Wait()
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// processSubject runs one subject to completion. Panics are converted to a failed Result.
//
// The images of a failed subject that were not processed are still reported to progress, so
// it always reaches the total given to Progress.Start.
func processSubject(cfg *Config, plan subjectPlan, rng *rand.Rand, progress Progress) (result Result) {
	start := time.Now()
	result = Result{Subject: plan.name, Kinds: make(map[noise.Kind]int)}
	defer func() { result.Elapsed = time.Since(start) }()

	var imagesDone int
	switch {
	case plan.err != nil:
		result.Err = plan.err
	case len(plan.categories) == 0:
		klog.V(1).Infof("subject %q: no categories found, skipping", plan.name)
		result.Status = StatusSkipped
		return
	default:
		w := &subjectWorker{cfg: cfg, subject: plan.name, rng: rng, progress: progress, result: &result}
		exception := exceptions.Try(func() { result.Err = w.run(plan.categories) })
		if exception != nil {
			if err, ok := exception.(error); ok {
				result.Err = errors.WithMessage(err, "panic")
			} else {
				result.Err = errors.Errorf("panic: %v", exception)
			}
		}
		imagesDone = w.imagesDone
	}
	if result.Err != nil {
		result.Status = StatusFailed
		for range plan.images() - imagesDone {
			progress.ImageDone()
		}
		klog.Errorf("subject %q failed: %+v", plan.name, result.Err)
		return
	}
	result.Status = StatusSucceeded
	klog.V(1).Infof("subject %q: %d images read, %d written in %s",
		plan.name, result.ImagesRead, result.ImagesWritten, time.Since(start))
	return
}

// subjectWorker holds the state of the goroutine processing one subject.
type subjectWorker struct {
	cfg      *Config
	subject  string
	rng      *rand.Rand
	progress Progress
	result   *Result

	imagesDone int
}

func (w *subjectWorker) run(categories []categoryPlan) error {
	kinds := w.cfg.Pool.Kinds()
	for _, category := range categories {
		inDir := filepath.Join(w.cfg.DataDir, w.subject, category.name)
		outDir := filepath.Join(w.cfg.Output(), w.subject, category.name)
		for _, kind := range kinds {
			if err := os.MkdirAll(filepath.Join(outDir, kind.String()), 0o755); err != nil {
				return errors.Wrapf(err, "failed to create output directory for %s", kind)
			}
		}
		klog.V(1).Infof("noising %s (%d images)", inDir, len(category.files))
		for _, file := range category.files {
			if err := w.processImage(filepath.Join(inDir, file), outDir, kinds); err != nil {
				return err
			}
			w.imagesDone++
			w.progress.ImageDone()
		}
	}
	return nil
}

// processImage reads one image and writes its noised copies, according to the strategy.
func (w *subjectWorker) processImage(path, outDir string, kinds []noise.Kind) error {
	decoded, err := imaging.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read image %q", path)
	}
	img := raster.FromImage(decoded)
	w.result.ImagesRead++

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	variants := w.cfg.Variants
	counter := func(variant int) int {
		if variants > 1 {
			return variant
		}
		return -1
	}

	switch w.cfg.Strategy {
	case StrategyExhaustive:
		for _, kind := range kinds {
			for variant := range variants {
				if err := w.write(img, kind, filepath.Join(outDir, kind.String(), OutputName(stem, kind, counter(variant), ext))); err != nil {
					return errors.WithMessagef(err, "image %q", path)
				}
			}
		}
	default:
		for variant := range variants {
			kind, ok := noise.Choose(w.rng, kinds)
			if !ok {
				klog.V(2).Infof("%s: no noise", path)
				continue
			}
			if err := w.write(img, kind, filepath.Join(outDir, kind.String(), OutputName(stem, kind, counter(variant), ext))); err != nil {
				return errors.WithMessagef(err, "image %q", path)
			}
		}
	}
	return nil
}

// write applies the noise and saves the result.
func (w *subjectWorker) write(img *raster.Image, kind noise.Kind, outPath string) error {
	noised, err := noise.Apply(kind, img, w.rng, w.cfg.NoiseOptions())
	if err != nil {
		return errors.WithMessagef(err, "applying %s", kind)
	}
	if err := imaging.Save(raster.ToImage(noised), outPath); err != nil {
		return errors.Wrapf(err, "failed to write %q", outPath)
	}
	klog.V(2).Infof("wrote %s", outPath)
	w.result.ImagesWritten++
	w.result.Kinds[kind]++
	return nil
}

// noProgress is used when Generate is given no Progress.
type noProgress struct{}

func (noProgress) Start(int)          {}
func (noProgress) ImageDone()         {}
func (noProgress) SubjectDone(Result) {}
