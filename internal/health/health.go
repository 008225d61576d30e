// Package health runs readiness checks against the service's dependencies.
package health

import (
	"context"
	"sync"
	"time"
)

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Func adapts a function into a Checker.
type Func struct {
	N  string
	Fn func(ctx context.Context) error
}

func (f Func) Name() string                    { return f.N }
func (f Func) Check(ctx context.Context) error { return f.Fn(ctx) }

// Result is the outcome of one check.
type Result struct {
	Name string
	Err  error
}

// Run executes every checker concurrently, each bounded by timeout, and
// returns the results in the order the checkers were given.
func Run(ctx context.Context, timeout time.Duration, checks ...Checker) []Result {
	out := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			out[i] = Result{Name: c.Name(), Err: c.Check(cctx)}
		}(i, c)
	}
	wg.Wait()
	return out
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var bad []Result
	for _, r := range results {
		if r.Err != nil {
			bad = append(bad, r)
		}
	}
	return bad
}
