// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package corpus

import (
	"path/filepath"

	"github.com/gomlx/facenoise/pkg/noise"
	"github.com/gomlx/facenoise/pkg/support/fsutil"
	"github.com/gomlx/facenoise/pkg/support/sets"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Remove deletes the camera noise directories (one per camera kind) under every configured
// category of every subject of the output tree. Environment noise directories are never
// removed, and neither is anything else.
//
// Removing an already clean tree is a no-op. It returns ErrMissingDataDir if the output root
// does not exist.
func Remove(cfg *Config) (*Removal, error) {
	root := cfg.Output()
	if root == "" {
		return nil, errors.New("corpus: no output directory configured")
	}
	isDir, err := fsutil.IsDir(root)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, errors.Wrapf(ErrMissingDataDir, "%q", root)
	}
	subjects, err := fsutil.ListDirs(root)
	if err != nil {
		return nil, err
	}

	// Every kind except the environment ones.
	removable := sets.Sorted(noise.PoolAll.KindSet().Sub(noise.PoolEnvironment.KindSet()))
	removal := &Removal{RunID: uuid.New(), Subjects: len(subjects)}
	for _, subject := range subjects {
		klog.V(1).Infof("removing camera noise of %q", subject)
		for _, category := range cfg.Categories {
			for _, kind := range removable {
				dir := filepath.Join(root, subject, category, kind.String())
				removed, err := fsutil.RemoveDirIfExists(dir)
				if err != nil {
					return removal, err
				}
				if removed {
					klog.V(2).Infof("removed %s", dir)
					removal.Removed = append(removal.Removed, dir)
				}
			}
		}
	}
	return removal, nil
}
