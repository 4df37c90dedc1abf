// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"bytes"
	"testing"
	"time"

	"github.com/gomlx/facenoise/pkg/corpus"
	"github.com/gomlx/facenoise/pkg/noise"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "12.35ms", FormatDuration(12345678*time.Nanosecond))
	assert.Equal(t, "0.00s", FormatDuration(0))
	assert.Equal(t, "1m31s", FormatDuration(90*time.Second+700*time.Millisecond))
}

func testSummary() *corpus.Summary {
	return &corpus.Summary{
		RunID:    uuid.New(),
		Pool:     noise.PoolAll,
		Strategy: corpus.StrategyRandom,
		Results: []corpus.Result{
			{Subject: "alice", Status: corpus.StatusSucceeded, ImagesRead: 1200, ImagesWritten: 1100,
				Kinds: map[noise.Kind]int{noise.KindSaltAndPepper: 1000, noise.KindPipeShadow: 100}},
			{Subject: "bob", Status: corpus.StatusFailed, ImagesRead: 3, Err: errors.New("broken png")},
			{Subject: "carol", Status: corpus.StatusSkipped},
		},
		Elapsed: 3 * time.Second,
	}
}

func TestReportSummary(t *testing.T) {
	summary := testSummary()
	var buf bytes.Buffer
	ReportSummary(&buf, summary)
	out := buf.String()
	assert.Contains(t, out, summary.RunID.String())
	assert.Contains(t, out, "ALL")
	assert.Contains(t, out, "random")
	assert.Contains(t, out, "1,203")
	assert.Contains(t, out, "1,100")
	assert.Contains(t, out, "salt_and_pepper")
	assert.Contains(t, out, "pipe_shadow")
	assert.NotContains(t, out, "point_source")
	assert.Contains(t, out, "Failures")
	assert.Contains(t, out, "broken png")

	// No failures table if nothing failed.
	summary.Results = summary.Results[:1]
	buf.Reset()
	ReportSummary(&buf, summary)
	assert.NotContains(t, buf.String(), "Failures")
}

func TestReportRemoval(t *testing.T) {
	var buf bytes.Buffer
	ReportRemoval(&buf, &corpus.Removal{RunID: uuid.New(), Subjects: 2, Removed: []string{"/data/s1/Live/blur"}})
	assert.Contains(t, buf.String(), "/data/s1/Live/blur")
	assert.Contains(t, buf.String(), "directories removed")
}

func TestProgressBar(t *testing.T) {
	maxUpdateFrequency = time.Millisecond
	var buf bytes.Buffer
	bar := NewProgressBar(&buf)
	bar.Finish() // No-op before Start.
	assert.Empty(t, buf.String())

	bar.Start(3)
	for range 3 {
		bar.ImageDone()
	}
	summary := testSummary()
	for _, r := range summary.Results {
		bar.SubjectDone(r)
	}
	bar.Finish()
	bar.Finish()
	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "Subjects done")
	assert.Contains(t, out, "1,100")
	assert.Contains(t, out, "carol")
	assert.Contains(t, out, "1 / 1")
}
