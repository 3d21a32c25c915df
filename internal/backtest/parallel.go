package backtest

import (
	"context"
	"runtime"
	"sync"

	"portfolio-doctor/internal/model"
)

// runParallel evaluates fn for 0..n-1 on up to GOMAXPROCS workers and returns
// the results in index order. On failure it reports the lowest-index error.
// Cancellation is checked before each index is handed out.
func runParallel(ctx context.Context, n int, fn func(i int) (model.Cycle, error)) ([]model.Cycle, error) {
	out := make([]model.Cycle, n)
	errs := make([]error, n)

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				c, err := fn(i)
				if err != nil {
					errs[i] = err
					cancel()
					continue
				}
				out[i] = c
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-runCtx.Done():
			break feed
		case next <- i:
		}
	}
	close(next)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
