package query

import (
	"context"
	"runtime"
	"sync"

	"github.com/rippledb/ripple"
	"golang.org/x/sync/semaphore"
)

// Job is one unit of work in a RunAll fan-out: a closure that receives
// its own Shared handle (Shared handles are safe to use concurrently
// from many goroutines running non-conflicting queries) and returns a
// result.
type Job[T any] func(s *ripple.Shared) T

// RunAll runs every job concurrently against db, bounded to at most
// parallelism goroutines in flight at once (parallelism <= 0 defaults to
// runtime.GOMAXPROCS(0)), and returns their results in the same order as
// jobs. If ctx is cancelled before every job has been launched, RunAll
// stops launching further jobs and returns the partial results gathered
// so far alongside ctx's error; already-running jobs are let run to
// completion, since the engine never decomposes a single query's
// execution across goroutines, so there is no finer-grained point within
// one job to abort at. Grounded on other_examples' bufbuild-protocompile
// incremental executor's Run: a golang.org/x/sync/semaphore.Weighted
// bounding fan-out width, defaulted from GOMAXPROCS when the caller
// leaves parallelism unspecified.
func RunAll[T any](ctx context.Context, db *ripple.Database, parallelism int, jobs []Job[T]) ([]T, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	sem := semaphore.NewWeighted(int64(parallelism))
	results := make([]T, len(jobs))

	var wg sync.WaitGroup
	var launchErr error

	for i, job := range jobs {
		if err := sem.Acquire(ctx, 1); err != nil {
			launchErr = err
			break
		}
		wg.Add(1)
		go func(i int, job Job[T]) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = job(db.Shared())
		}(i, job)
	}
	wg.Wait()

	return results, launchErr
}
