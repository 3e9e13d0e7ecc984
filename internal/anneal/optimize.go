package anneal

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

// Optimize runs at most iterations steps of s on c, cooling along sched, and
// returns the number of steps performed. A nil visitor observes nothing.
//
// The only error is a step error (a kernel staging an invalid diff); the
// visitor's End is still called with the steps completed so far.
func Optimize[T any](c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T], sched Schedule, iterations int, v Visitor[T]) (int, error) {
	if v == nil {
		v = Composite[T](nil)
	}

	v.Begin(c, s, sched.Temperature())
	i := 0
	var err error
	for i < iterations {
		t := sched.Temperature()
		if err = s.Step(c, t); err != nil {
			err = fmt.Errorf("iteration %d: %w", i+1, err)
			break
		}
		sched.Advance()
		i++
		if !v.Iterate(i, t, c, s) {
			break
		}
	}
	v.End(i, sched.Temperature(), c, s)
	return i, err
}

// Ensemble calls run for chains 0..n-1 with at most parallelism chains in
// flight (GOMAXPROCS when parallelism <= 0) and returns the results in chain
// order. The first error cancels the context passed to the remaining chains
// and is returned.
func Ensemble[R any](ctx context.Context, n, parallelism int, run func(ctx context.Context, chain int) (R, error)) ([]R, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	results := make([]R, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			r, err := run(ctx, i)
			if err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
