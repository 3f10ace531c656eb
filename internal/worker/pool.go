package worker

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Task represents a unit of work to be processed by the pool.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc is the function signature for processing a single task.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs all inputs through the pool and returns one Task per input, in
// input order. A failed task does not stop the others. Inputs not started
// before ctx is cancelled carry ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))

	var g errgroup.Group
	g.SetLimit(p.workers)

	for i := range inputs {
		results[i].Input = inputs[i]
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			res, err := p.process(ctx, inputs[i])
			results[i].Result = res
			results[i].Err = err
			if err != nil {
				log.Error().Err(err).Int("index", i).Msg("Task failed")
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
