package orchestrator

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/types"
)

// treeWriter materializes a rendered plan under the target root and keeps
// the rollback checkpoint list: every path created in this run, in creation
// order.
type treeWriter struct {
	fs        types.FS
	root      string
	overwrite bool
	logger    zerolog.Logger
	created   []string
}

func newTreeWriter(fsys types.FS, root string, overwrite bool, logger zerolog.Logger) *treeWriter {
	return &treeWriter{fs: fsys, root: root, overwrite: overwrite, logger: logger}
}

// write creates directories top-down, then writes files in plan order. It
// stops at the first fault; the caller decides whether to roll back. The
// target root itself is created if absent but never checkpointed, so
// rollback leaves a pre-existing (or empty) root in place.
func (w *treeWriter) write(ctx context.Context, plan []plannedEntry) error {
	if err := w.fs.MkdirAll(w.root, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"creating target root %q", w.root)
	}

	dirs, modes := collectDirs(plan)
	for _, rel := range dirs {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "writing cancelled")
		}
		if err := w.makeDir(rel, modes[rel]); err != nil {
			return err
		}
	}

	for _, p := range plan {
		if p.isDir {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "writing cancelled")
		}
		if err := w.writeFile(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *treeWriter) makeDir(rel string, mode fs.FileMode) error {
	abs := w.abs(rel)
	info, err := w.fs.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		// Already present; not ours to roll back.
		return nil
	case err == nil:
		return errors.Newf(errors.ErrPathCollision,
			"%q already exists and is not a directory", abs).
			WithDetail("path", abs)
	}

	if mode == 0 {
		mode = 0o755
	}
	if err := w.fs.Mkdir(abs, mode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating directory %q", abs)
	}
	w.checkpoint(abs)
	return nil
}

func (w *treeWriter) writeFile(p plannedEntry) error {
	abs := w.abs(p.relPath)
	if info, err := w.fs.Stat(abs); err == nil {
		if info.IsDir() {
			return errors.Newf(errors.ErrPathCollision,
				"%q already exists as a directory", abs).WithDetail("path", abs)
		}
		if !w.overwrite {
			return errors.Newf(errors.ErrPathCollision,
				"%q already exists and overwrite is disallowed", abs).
				WithDetail("path", abs)
		}
	}

	if err := w.fs.WriteFile(abs, p.content, p.mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing file %q", abs)
	}
	w.checkpoint(abs)
	return nil
}

// rollback deletes every checkpointed path in LIFO order. Files go before
// the directories that contain them because directories are checkpointed
// first. Paths that cannot be removed are reported, never swallowed.
func (w *treeWriter) rollback() error {
	var remaining []string
	for i := len(w.created) - 1; i >= 0; i-- {
		if err := w.fs.Remove(w.created[i]); err != nil {
			w.logger.Error().Err(err).Str("path", w.created[i]).Msg("Rollback removal failed")
			remaining = append(remaining, w.created[i])
		}
	}
	w.created = nil

	if len(remaining) > 0 {
		return errors.Newf(errors.ErrRollbackIncomplete,
			"rollback incomplete: %d path(s) could not be removed: %s",
			len(remaining), strings.Join(remaining, ", ")).
			WithDetail("remaining", remaining)
	}
	return nil
}

func (w *treeWriter) checkpoint(abs string) {
	w.logger.Trace().Str("path", abs).Msg("Checkpoint")
	w.created = append(w.created, abs)
}

func (w *treeWriter) abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// collectDirs returns every directory the plan needs, explicit entries and
// implicit file parents alike, ordered parent-before-child.
func collectDirs(plan []plannedEntry) ([]string, map[string]fs.FileMode) {
	modes := make(map[string]fs.FileMode)
	set := make(map[string]struct{})

	add := func(rel string) {
		for rel != "." && rel != "/" && rel != "" {
			set[rel] = struct{}{}
			rel = path.Dir(rel)
		}
	}

	for _, p := range plan {
		if p.isDir {
			add(p.relPath)
			modes[p.relPath] = p.mode
		} else {
			add(path.Dir(p.relPath))
		}
	}

	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := strings.Count(dirs[i], "/"), strings.Count(dirs[j], "/")
		if di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})
	return dirs, modes
}
