// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package corpus

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomlx/facenoise/pkg/noise"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Status of a subject after a run.
type Status int

const (
	// StatusSucceeded means every image of the subject was processed.
	StatusSucceeded Status = iota

	// StatusSkipped means the subject had none of the configured categories.
	StatusSkipped

	// StatusFailed means processing stopped at the first error, see Result.Err.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result of processing one subject.
type Result struct {
	Subject string
	Status  Status

	// Err is set if Status is StatusFailed.
	Err error

	// ImagesRead from the category directories, and ImagesWritten to the output tree.
	ImagesRead, ImagesWritten int

	// Kinds counts the images written per kind of noise.
	Kinds map[noise.Kind]int

	Elapsed time.Duration
}

// Summary of a generation run.
type Summary struct {
	RunID    uuid.UUID
	Pool     noise.Pool
	Strategy Strategy

	// Results, one per subject, sorted by subject name.
	Results []Result

	Elapsed time.Duration
}

// Totals sums images read and written over all subjects, and the images written per kind.
func (s *Summary) Totals() (read, written int, kinds map[noise.Kind]int) {
	kinds = make(map[noise.Kind]int)
	for _, r := range s.Results {
		read += r.ImagesRead
		written += r.ImagesWritten
		for kind, count := range r.Kinds {
			kinds[kind] += count
		}
	}
	return
}

// Count returns the number of subjects with the given status.
func (s *Summary) Count(status Status) int {
	count := 0
	for _, r := range s.Results {
		if r.Status == status {
			count++
		}
	}
	return count
}

// Err returns an error listing the failed subjects, or nil if none failed.
func (s *Summary) Err() error {
	var failures []string
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			failures = append(failures, fmt.Sprintf("%s: %v", r.Subject, r.Err))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.Errorf("run %s: %d of %d subjects failed:\n  %s",
		s.RunID, len(failures), len(s.Results), strings.Join(failures, "\n  "))
}

// Removal reports a removal run.
type Removal struct {
	RunID uuid.UUID

	// Subjects visited.
	Subjects int

	// Removed lists the removed directories.
	Removed []string
}

// Progress receives updates while a generation runs. Methods may be called concurrently from
// different workers.
type Progress interface {
	// Start is called once, before any work, with the total number of images to read.
	Start(totalImages int)

	// ImageDone is called after each image is read and processed.
	ImageDone()

	// SubjectDone is called when a subject finishes, successfully or not.
	SubjectDone(result Result)
}
