// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package corpus

import (
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gomlx/facenoise/pkg/noise"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFace writes a size×size RGB png with mid-tone content.
func writeFace(t *testing.T, path string, size int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(60 + 140*x/(size-1)),
				G: uint8(60 + 140*y/(size-1)),
				B: 128,
				A: 255,
			})
		}
	}
	must.M(os.MkdirAll(filepath.Dir(path), 0o755))
	must.M(imaging.Save(img, path))
}

// listFiles returns the paths of all regular files under root, relative to it.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	slices.Sort(files)
	return files
}

func testConfig(dataDir, outputDir string) *Config {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir
	cfg.OutputDir = outputDir
	cfg.Parallelism = 2
	cfg.Seed = 42
	cfg.ExposureMaxIterations = 100_000
	return cfg
}

type recordingProgress struct {
	mu       sync.Mutex
	total    int
	images   int
	subjects []string
}

func (p *recordingProgress) Start(total int) { p.total = total }

func (p *recordingProgress) ImageDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.images++
}

func (p *recordingProgress) SubjectDone(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, r.Subject)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "face_blur.png", OutputName("face", noise.KindBlur, -1, ".png"))
	assert.Equal(t, "face_salt_and_pepper_007.png", OutputName("face", noise.KindSaltAndPepper, 7, "png"))
	assert.Equal(t, "a.b_pipe_shadow_000.bmp", OutputName("a.b", noise.KindPipeShadow, 0, ".bmp"))
}

func TestGenerateCameraEndToEnd(t *testing.T) {
	cameraDirs := noise.PoolCamera.KindSet()
	for seed := range uint64(6) {
		root := t.TempDir()
		dataDir, outDir := filepath.Join(root, "data"), filepath.Join(root, "out")
		writeFace(t, filepath.Join(dataDir, "subject_1", "Live", "face.png"), 128)

		cfg := testConfig(dataDir, outDir)
		cfg.Pool = noise.PoolCamera
		cfg.Seed = seed + 1
		summary, err := Generate(cfg, nil)
		require.NoError(t, err)
		require.NoError(t, summary.Err())
		require.Len(t, summary.Results, 1)
		result := summary.Results[0]
		assert.Equal(t, StatusSucceeded, result.Status)
		assert.Equal(t, 1, result.ImagesRead)

		// One directory per camera kind, and none for environment kinds.
		entries, err := os.ReadDir(filepath.Join(outDir, "subject_1", "Live"))
		require.NoError(t, err)
		require.Len(t, entries, len(cameraDirs))
		for _, entry := range entries {
			kind, err := noise.KindString(entry.Name())
			require.NoError(t, err)
			assert.True(t, cameraDirs.Has(kind))
		}

		files := listFiles(t, outDir)
		require.LessOrEqual(t, len(files), 1, "seed %d", seed)
		assert.Equal(t, len(files), result.ImagesWritten)
		if len(files) == 1 {
			parts := strings.Split(files[0], "/")
			require.Len(t, parts, 4)
			kind, err := noise.KindString(parts[2])
			require.NoError(t, err)
			assert.True(t, kind.IsCamera())
			assert.Equal(t, OutputName("face", kind, -1, ".png"), parts[3])
			assert.Equal(t, 1, result.Kinds[kind])

			written, err := imaging.Open(filepath.Join(outDir, files[0]))
			require.NoError(t, err)
			assert.Equal(t, 128, written.Bounds().Dx())
			assert.Equal(t, 128, written.Bounds().Dy())
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	for _, subject := range []string{"s1", "s2", "s3"} {
		for _, category := range []string{"Live", "Paper_Mask_exterior"} {
			for _, name := range []string{"a.png", "b.png"} {
				writeFace(t, filepath.Join(dataDir, subject, category, name), 40)
			}
		}
	}

	run := func(outName string) map[string][]byte {
		cfg := testConfig(dataDir, filepath.Join(root, outName))
		cfg.Parallelism = 3
		cfg.Variants = 2
		summary, err := Generate(cfg, nil)
		require.NoError(t, err)
		require.NoError(t, summary.Err())
		contents := make(map[string][]byte)
		for _, file := range listFiles(t, cfg.OutputDir) {
			data, err := os.ReadFile(filepath.Join(cfg.OutputDir, file))
			require.NoError(t, err)
			contents[file] = data
		}
		return contents
	}
	first, second := run("out1"), run("out2")
	assert.Equal(t, first, second)
	for file := range first {
		assert.Regexp(t, `_\d{3}\.png$`, file)
	}
}

func TestGenerateExhaustive(t *testing.T) {
	root := t.TempDir()
	dataDir, outDir := filepath.Join(root, "data"), filepath.Join(root, "out")
	writeFace(t, filepath.Join(dataDir, "subject", "Covid_Mask", "img.png"), 32)

	cfg := testConfig(dataDir, outDir)
	cfg.Strategy = StrategyExhaustive
	cfg.Variants = 2
	progress := &recordingProgress{}
	summary, err := Generate(cfg, progress)
	require.NoError(t, err)
	require.NoError(t, summary.Err())

	read, written, kinds := summary.Totals()
	assert.Equal(t, 1, read)
	assert.Equal(t, 2*len(noise.KindValues()), written)
	for _, kind := range noise.KindValues() {
		assert.Equal(t, 2, kinds[kind], kind.String())
		for variant := range 2 {
			path := filepath.Join(outDir, "subject", "Covid_Mask", kind.String(), OutputName("img", kind, variant, "png"))
			assert.FileExists(t, path)
		}
	}
	assert.Equal(t, 1, progress.total)
	assert.Equal(t, 1, progress.images)
	assert.Equal(t, []string{"subject"}, progress.subjects)
}

func TestGenerateMissingDataDir(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "nope"), "")
	_, err := Generate(cfg, nil)
	require.ErrorIs(t, err, ErrMissingDataDir)

	cfg.Variants = 0
	_, err = Generate(cfg, nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMissingDataDir)
}

func TestGenerateSkipsAndFailures(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	writeFace(t, filepath.Join(dataDir, "good", "Live", "face.png"), 24)
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "empty", "Unknown_Category"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "broken", "Live"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "broken", "Live", "face.png"), []byte("not a png"), 0o644))

	// Output in the data tree itself.
	cfg := testConfig(dataDir, "")
	cfg.Parallelism = 0
	summary, err := Generate(cfg, nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)

	byName := make(map[string]Result)
	for _, r := range summary.Results {
		byName[r.Subject] = r
	}
	assert.Equal(t, StatusFailed, byName["broken"].Status)
	assert.Error(t, byName["broken"].Err)
	assert.Equal(t, StatusSkipped, byName["empty"].Status)
	assert.Equal(t, StatusSucceeded, byName["good"].Status)
	assert.Equal(t, 1, summary.Count(StatusFailed))
	assert.Equal(t, 1, summary.Count(StatusSkipped))

	err = summary.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.NotContains(t, err.Error(), "good")

	// Subjects are reported in order.
	assert.Equal(t, []string{"broken", "empty", "good"},
		[]string{summary.Results[0].Subject, summary.Results[1].Subject, summary.Results[2].Subject})
	assert.FileExists(t, filepath.Join(dataDir, "good", "Live", "face.png"))
	assert.DirExists(t, filepath.Join(dataDir, "good", "Live", "pipe_shadow"))
}

func TestGenerateFailureCompletesProgress(t *testing.T) {
	root := t.TempDir()
	dataDir, outDir := filepath.Join(root, "data"), filepath.Join(root, "out")
	writeFace(t, filepath.Join(dataDir, "good", "Live", "face.png"), 24)
	// The subject fails on its second image: the rest of it is never processed.
	writeFace(t, filepath.Join(dataDir, "partial", "Live", "a.png"), 24)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "partial", "Live", "b.png"), []byte("not a png"), 0o644))
	writeFace(t, filepath.Join(dataDir, "partial", "Live", "c.png"), 24)
	writeFace(t, filepath.Join(dataDir, "partial", "Covid_Mask", "d.png"), 24)

	cfg := testConfig(dataDir, outDir)
	progress := &recordingProgress{}
	summary, err := Generate(cfg, progress)
	require.NoError(t, err)
	require.Error(t, summary.Err())

	var partial Result
	for _, r := range summary.Results {
		if r.Subject == "partial" {
			partial = r
		}
	}
	assert.Equal(t, StatusFailed, partial.Status)
	assert.Equal(t, 1, partial.ImagesRead)
	assert.Equal(t, 5, progress.total)
	assert.Equal(t, progress.total, progress.images)
	assert.ElementsMatch(t, []string{"good", "partial"}, progress.subjects)
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	touch := func(rel string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	touch("s1/Live/face.png")
	touch("s1/Live/blur/face_blur.png")
	touch("s1/Live/over_expose/face_over_expose.png")
	touch("s1/Live/point_source/face_point_source.png")
	touch("s1/Spandex_Mask_exterior/gaussian/face_gaussian_001.png")
	touch("s1/Other/blur/face_blur.png")
	touch("s2/Live/notes.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "s2", "Live", "salt_and_pepper"), 0o755))

	cfg := DefaultConfig()
	cfg.DataDir = root
	removal, err := Remove(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, removal.Subjects)
	assert.Len(t, removal.Removed, 4)

	want := []string{
		"s1/Live/face.png",
		"s1/Live/point_source/face_point_source.png",
		"s1/Other/blur/face_blur.png",
		"s2/Live/notes.txt",
	}
	assert.Equal(t, want, listFiles(t, root))
	assert.NoDirExists(t, filepath.Join(root, "s2", "Live", "salt_and_pepper"))

	// A second removal is a no-op.
	removal, err = Remove(cfg)
	require.NoError(t, err)
	assert.Empty(t, removal.Removed)
	assert.Equal(t, want, listFiles(t, root))

	cfg.DataDir = filepath.Join(root, "missing")
	_, err = Remove(cfg)
	require.ErrorIs(t, err, ErrMissingDataDir)
}

func TestLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [Live, Paper_Mask]\nextensions: [PNG, .bmp]\n"), 0o644))
	layout, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Live", "Paper_Mask"}, layout.Categories)
	assert.Equal(t, []string{".png", ".bmp"}, layout.Extensions)

	cfg := DefaultConfig()
	cfg.ApplyLayout(layout)
	assert.Equal(t, layout.Categories, cfg.Categories)
	assert.Equal(t, layout.Extensions, cfg.Extensions)

	cfg = DefaultConfig()
	cfg.ApplyLayout(&Layout{})
	assert.Equal(t, DefaultCategories, cfg.Categories)

	require.NoError(t, os.WriteFile(path, []byte("categories: {"), 0o644))
	_, err = LoadLayout(path)
	require.Error(t, err)
	_, err = LoadLayout(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestStrategy(t *testing.T) {
	s, err := StrategyString("Exhaustive")
	require.NoError(t, err)
	assert.Equal(t, StrategyExhaustive, s)
	assert.Equal(t, "random", StrategyRandom.String())
	require.Error(t, s.Set("sometimes"))
	require.NoError(t, s.Set("random"))
	assert.Equal(t, StrategyRandom, s)
}
