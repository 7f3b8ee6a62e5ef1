package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.trai.ch/noderun/internal/adapters/watcher"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
)

// watch rebuilds plan whenever the graph file or the content of a node input changes.
// It returns when ctx is done.
func (a *App) watch(ctx context.Context, s *session, graphPath string, plan *domain.Plan, opts RunOptions) error {
	source := s.cfg.Roots.Source
	roots := []string{source}
	if !within(source, graphPath) {
		roots = append(roots, graphPath)
	}

	if err := a.watcher.Start(ctx, roots...); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	batches := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	go func() {
		for ev := range a.watcher.Events() {
			debouncer.Add(ev.Path)
		}
	}()

	index := watcher.NewIndex(plan, plan.Patterns(s.cfg.Roots.Macros()), graphPath)
	a.logger.Info("watching for changes", "root", source)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			change := index.Affected(paths)
			if change.Empty() {
				continue
			}

			a.invalidate(ctx, s.cache, plan.Graph, change.Nodes)
			if change.Graph {
				next, err := a.graphLoader.Load(graphPath)
				if err != nil {
					a.logger.Error(err)
					continue
				}
				plan = next
				index = watcher.NewIndex(plan, plan.Patterns(s.cfg.Roots.Macros()), graphPath)
			}

			a.logger.Info("rebuilding", "changed", len(paths), "nodes", len(change.Nodes), "graph", change.Graph)
			if _, err := a.build(ctx, s, plan, opts); err != nil {
				switch {
				case ctx.Err() != nil:
					return nil
				case errors.Is(err, domain.ErrBuildExecutionFailed):
				default:
					a.logger.Error(err)
				}
			}
		}
	}
}

// invalidate drops the cached outputs of uids and of every node depending on them.
func (a *App) invalidate(ctx context.Context, cache ports.Cache, g *domain.Graph, uids []string) {
	seen := make(map[string]bool)
	queue := append([]string(nil), uids...)
	for len(queue) > 0 {
		uid := queue[0]
		queue = queue[1:]
		if seen[uid] {
			continue
		}
		seen[uid] = true

		node, ok := g.Node(uid)
		if !ok {
			continue
		}
		for _, key := range []string{node.UID, node.ContentUID} {
			if key == "" {
				continue
			}
			if err := cache.ClearUID(ctx, key); err != nil {
				a.logger.Warn("failed to invalidate cache entry", "uid", key, "error", err)
			}
		}
		queue = append(queue, g.Dependents(uid)...)
	}
}

// within reports whether path is inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
