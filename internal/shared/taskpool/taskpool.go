// Package taskpool runs independent units of work on a bounded pool and
// collects one result per unit, bounded by a single batch deadline.
package taskpool

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSize is the number of tasks allowed to run at once.
	DefaultSize = 8
	// MaxSize caps the pool size.
	MaxSize = 32
)

// Task is one unit of work. Key identifies it in the result.
type Task[T any] struct {
	Key string
	Run func(ctx context.Context) (T, error)
}

// Result holds the outcome of one Task.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

// Options configures Run.
type Options struct {
	// Size is the number of concurrent workers. Values outside 1..MaxSize are clamped.
	Size int
	// Deadline bounds the whole batch. Zero means no batch deadline.
	Deadline time.Duration
}

func (o Options) size() int {
	switch {
	case o.Size <= 0:
		return DefaultSize
	case o.Size > MaxSize:
		return MaxSize
	default:
		return o.Size
	}
}

type indexed[T any] struct {
	idx int
	res Result[T]
}

// Run executes tasks on a pool of opts.Size workers and returns exactly one
// Result per task, in completion order. A failing or panicking task only
// affects its own Result. When the batch deadline (or ctx) expires, Run
// returns immediately: unfinished tasks are reported with the context error
// appended in submission order, and their goroutines are left to observe the
// cancelled context on their own.
func Run[T any](ctx context.Context, opts Options, tasks []Task[T]) []Result[T] {
	if len(tasks) == 0 {
		return nil
	}

	var cancel context.CancelFunc
	if opts.Deadline > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// 全タスク分のバッファを持つので、締め切り後に完了したタスクも送信でブロックしない
	ch := make(chan indexed[T], len(tasks))

	var g errgroup.Group
	g.SetLimit(opts.size())

	// g.Go blocks while the pool is full, so after the deadline this producer
	// only notices ctx once a running task frees a slot. Run itself has already
	// returned by then; the remaining tasks are reported without being started.
	go func() {
		for i, task := range tasks {
			if err := ctx.Err(); err != nil {
				ch <- indexed[T]{idx: i, res: Result[T]{Key: task.Key, Err: err}}
				continue
			}
			g.Go(func() error {
				ch <- indexed[T]{idx: i, res: runOne(ctx, task)}
				return nil
			})
		}
		_ = g.Wait()
	}()

	done := make([]bool, len(tasks))
	out := make([]Result[T], 0, len(tasks))
	for len(out) < len(tasks) {
		select {
		case r := <-ch:
			done[r.idx] = true
			out = append(out, r.res)
		case <-ctx.Done():
			for i, task := range tasks {
				if !done[i] {
					out = append(out, Result[T]{Key: task.Key, Err: ctx.Err()})
				}
			}
			return out
		}
	}
	return out
}

func runOne[T any](ctx context.Context, task Task[T]) (res Result[T]) {
	res.Key = task.Key
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %s panicked: %v", task.Key, r)
		}
	}()
	res.Value, res.Err = task.Run(ctx)
	return res
}
