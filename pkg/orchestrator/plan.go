package orchestrator

import (
	"context"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/render"
	"github.com/armature-io/armature/pkg/types"
)

// plannedEntry is one template entry after guard evaluation, path
// resolution, and content rendering: ready to materialize.
type plannedEntry struct {
	order   int
	relPath string
	isDir   bool
	content []byte
	mode    fs.FileMode
}

// renderPlan evaluates guards, then renders paths and file contents for
// every included entry. Rendering is pure, so independent entries render
// concurrently on a worker pool; all per-entry errors are collected rather
// than aborting on the first one.
func (o *Orchestrator) renderPlan(ctx context.Context, bundle *types.TemplateBundle, rctx *types.RenderContext, workers int) ([]plannedEntry, []error) {
	included, errs := selectEntries(bundle.Entries, rctx)
	if len(errs) > 0 {
		return nil, errs
	}

	type job struct {
		order int
		entry types.TemplateEntry
	}

	jobs := make(chan job)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		planned []plannedEntry
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				entry, err := renderEntry(j.order, j.entry, rctx)
				mu.Lock()
				if err != nil {
					errs = append(errs, err)
				} else {
					planned = append(planned, entry)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i, e := range included {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{order: i, entry: e}:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, []error{errors.Wrap(err, errors.ErrCancelled, "rendering cancelled")}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	sort.Slice(planned, func(i, j int) bool { return planned[i].order < planned[j].order })

	if collisions := findCollisions(planned, included); len(collisions) > 0 {
		return nil, collisions
	}
	return planned, nil
}

// selectEntries applies entry guards. A false guard on a directory skips
// its whole subtree without resolving any of its paths.
func selectEntries(entries []types.TemplateEntry, rctx *types.RenderContext) ([]types.TemplateEntry, []error) {
	var (
		included    []types.TemplateEntry
		errs        []error
		skippedDirs []string
	)

	for _, e := range entries {
		if underAny(e.Path, skippedDirs) {
			continue
		}
		ok, err := render.EvaluateGuard(e.Guard, rctx)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, errors.GetErrorCode(err),
				"evaluating guard for %q", e.Path))
			continue
		}
		if !ok {
			if e.IsDir {
				skippedDirs = append(skippedDirs, e.Path)
			}
			continue
		}
		included = append(included, e)
	}
	return included, errs
}

func underAny(p string, dirs []string) bool {
	for _, d := range dirs {
		if strings.HasPrefix(p, d+"/") {
			return true
		}
	}
	return false
}

func renderEntry(order int, e types.TemplateEntry, rctx *types.RenderContext) (plannedEntry, error) {
	relPath, err := render.ResolvePath(e.Path, rctx)
	if err != nil {
		return plannedEntry{}, err
	}

	out := plannedEntry{
		order:   order,
		relPath: relPath,
		isDir:   e.IsDir,
		mode:    e.FileMode(),
	}
	if !e.IsDir {
		rendered, err := render.Render(string(e.Content), rctx)
		if err != nil {
			return plannedEntry{}, errors.Wrapf(err, errors.GetErrorCode(err),
				"rendering %q", e.Path)
		}
		out.content = []byte(rendered)
	}
	return out, nil
}

// findCollisions flags distinct template entries that resolved to the same
// concrete path. A collision is fatal, never silently resolved.
func findCollisions(planned []plannedEntry, included []types.TemplateEntry) []error {
	var errs []error
	seen := make(map[string]string, len(planned))
	for _, p := range planned {
		if first, ok := seen[p.relPath]; ok {
			errs = append(errs, errors.Newf(errors.ErrPathCollision,
				"entries %q and %q both resolve to %q",
				first, included[p.order].Path, p.relPath).
				WithDetail("path", p.relPath))
			continue
		}
		seen[p.relPath] = included[p.order].Path
	}
	return errs
}
