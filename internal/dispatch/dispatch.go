// Package dispatch fans the per-case generation task out over a fixed-size
// worker pool. One case per task, no cross-case batching, no completion
// ordering: each task already amortizes its scheduling cost over
// samples_per_file augmentations and archive writes.
package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"voxprep/internal/dataset"
)

// Task processes one case end to end.
type Task func(ctx context.Context, c dataset.Case) error

// Done is invoked after each case finishes, successfully or not. Callbacks
// may run concurrently from worker goroutines.
type Done func(c dataset.Case, err error)

// Run drives task over every case with at most workers running at once;
// workers == 0 runs inline on the calling goroutine. A task failure never
// cancels other tasks — side effects are strictly additive archive writes,
// so finishing the remaining cases is always safe — and the first error is
// returned after all tasks have completed.
func Run(ctx context.Context, cases []dataset.Case, workers int, task Task, done Done) error {
	notify := done
	if notify == nil {
		notify = func(dataset.Case, error) {}
	}

	if workers <= 0 {
		var firstErr error
		for _, c := range cases {
			err := task(ctx, c)
			notify(c, err)
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, c := range cases {
		c := c
		g.Go(func() error {
			err := task(ctx, c)
			notify(c, err)
			return err
		})
	}
	return g.Wait()
}
