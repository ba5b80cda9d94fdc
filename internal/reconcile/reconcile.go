// Package reconcile implements directory-level sync orchestration shared
// by internal/index and internal/graph (SPEC_FULL.md §4.G/§4.H's "sync
// directory" operations): walk the org tree, decide per-file whether to
// skip/touch/reindex, and fan the reindex work out across a worker pool.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jra3/orgctl/internal/config"
	"github.com/jra3/orgctl/internal/graph"
	"github.com/jra3/orgctl/internal/index"
	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

// Result summarizes one directory-level sync run.
type Result struct {
	Indexed   []string
	Touched   []string
	Skipped   []string
	Encrypted []string
	Deleted   []string
	Errors    map[string]error
}

// Options configures a Directory sync run.
type Options struct {
	// Concurrency bounds the number of files reconciled at once. Defaults
	// to 4 if zero.
	Concurrency int
	// Force, if true, re-indexes every file regardless of mtime/hash,
	// implementing the "force sync" operation of SPEC_FULL.md §4.G.
	Force bool
	// Graph, if non-nil, is also synced for every reindexed file.
	Graph *graph.Store
	Now   time.Time
}

// Directory implements the incremental directory sync described in
// SPEC_FULL.md §4.G/§4.H: enumerate org files, decide a plan per file
// (skip/touch/reindex) from the index store's mtime+hash comparison,
// apply the plan concurrently, and reconcile deletions.
func Directory(ctx context.Context, idx *index.Store, root string, base *config.Config, opts Options) (*Result, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	files, err := index.WalkOrgFiles(root)
	if err != nil {
		return nil, fmt.Errorf("reconcile: walk %s: %w", root, err)
	}

	current := make(map[string]bool, len(files))
	for _, f := range files {
		current[f] = true
	}

	res := &Result{Errors: make(map[string]error)}
	resCh := make(chan fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, path := range files {
		path := path
		g.Go(func() error {
			outcome := reconcileOne(gctx, idx, opts, base, path)
			resCh <- outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(resCh)

	for o := range resCh {
		switch {
		case o.err != nil:
			res.Errors[o.path] = o.err
		case o.plan == index.PlanEncrypted:
			res.Encrypted = append(res.Encrypted, o.path)
		case o.plan == index.PlanSkip:
			res.Skipped = append(res.Skipped, o.path)
		case o.plan == index.PlanTouch:
			res.Touched = append(res.Touched, o.path)
		case o.plan == index.PlanReindex:
			res.Indexed = append(res.Indexed, o.path)
		}
	}

	deleted, err := idx.ReconcileDeletions(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("reconcile: delete stale rows: %w", err)
	}
	res.Deleted = deleted

	return res, nil
}

type fileOutcome struct {
	path string
	plan index.SyncPlan
	err  error
}

func reconcileOne(ctx context.Context, idx *index.Store, opts Options, base *config.Config, path string) fileOutcome {
	if index.IsEncrypted(path) {
		return fileOutcome{path: path, plan: index.PlanEncrypted}
	}

	contents, mtime, err := index.StatFile(path)
	if err != nil {
		return fileOutcome{path: path, err: fmt.Errorf("stat/read: %w", err)}
	}

	var plan index.SyncPlan
	if opts.Force {
		plan = index.PlanReindex
	} else {
		plan, err = idx.DecidePlan(ctx, path, contents, mtime)
		if err != nil {
			return fileOutcome{path: path, err: fmt.Errorf("decide plan: %w", err)}
		}
	}

	var doc *orgdoc.Document
	var fp *orgconf.FilePolicy
	if plan == index.PlanReindex {
		active, done := orgtime.ParseKeywordSequence(base.Todo.Sequence)
		doc, err = orgdoc.Parse(string(contents), orgdoc.ParseOptions{
			DefaultActive: active,
			DefaultDone:   done,
		})
		if err != nil {
			return fileOutcome{path: path, err: fmt.Errorf("parse: %w", err)}
		}
		fp = orgconf.ResolveFile(base, doc)
	}

	if err := idx.ApplyPlan(ctx, plan, path, string(contents), mtime, fp, doc); err != nil {
		return fileOutcome{path: path, err: fmt.Errorf("apply plan: %w", err)}
	}

	if plan == index.PlanReindex && opts.Graph != nil {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		nowStr := now.UTC().Format(time.RFC3339)
		if err := opts.Graph.SyncFile(ctx, path, string(contents), nowStr, nowStr, fp, doc); err != nil {
			return fileOutcome{path: path, plan: plan, err: fmt.Errorf("graph sync: %w", err)}
		}
	}

	return fileOutcome{path: path, plan: plan}
}
