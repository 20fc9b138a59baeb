// Package batch fans independent per-item tasks across a bounded pool and
// restores input order before anything downstream consumes the results.
package batch

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jungtin/notion-to-audio/core"
)

// Task processes item i. It reports failure through the returned result,
// never by aborting its siblings.
type Task func(ctx context.Context, i int) core.ItemResult

// Run executes n tasks on at most workers goroutines and returns the
// results sorted by index. Once ctx is done, unstarted tasks are recorded
// as failed with the context error.
func Run(ctx context.Context, n, workers int, task Task) []core.ItemResult {
	if workers <= 0 {
		workers = 1
	}
	results := make(chan core.ItemResult, n)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			results <- core.ItemResult{Index: i, Err: err}
			continue
		}
		g.Go(func() error {
			res := task(ctx, i)
			res.Index = i
			results <- res
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	out := make([]core.ItemResult, 0, n)
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// Tally counts successful items.
func Tally(items []core.ItemResult) int {
	n := 0
	for _, it := range items {
		if it.OK() {
			n++
		}
	}
	return n
}
