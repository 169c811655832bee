// Package prefetch warms a pool in the background. Blocks are taken from a source pool through its
// prefetch path and deposited into the target pool as reserved blocks, so warming never consumes
// blocks another consumer reserved and never counts the warmed blocks as unreserved.
package prefetch

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	cerrors "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/blockpool"
)

// ErrOrderMismatch is returned from Warm when the source and target pools have different orders
var ErrOrderMismatch error = errors.New("source and target pools must have the same order")

// Options contains optional settings for a Prefetcher. It is valid to leave all fields blank.
type Options struct {
	// Workers is the number of goroutines warming pools concurrently. 0 means runtime.NumCPU().
	Workers int
}

// Result reports what one Warm call did
type Result struct {
	// FromPool counts blocks the source served from its cache
	FromPool int
	// FromAllocator counts blocks the source had to allocate from its RawAllocator
	FromAllocator int
	// Failed counts blocks that could not be produced
	Failed int
}

// Warmed returns the number of blocks deposited into the target
func (r Result) Warmed() int {
	return r.FromPool + r.FromAllocator
}

// Prefetcher runs warming jobs on a fixed-size worker pool
type Prefetcher struct {
	logger  *slog.Logger
	workers *ants.Pool
}

func New(logger *slog.Logger, options Options) (*Prefetcher, error) {
	size := options.Workers
	if size == 0 {
		size = runtime.NumCPU()
	}
	if size < 0 {
		return nil, cerrors.Newf("worker count must not be negative, but it is %d", size)
	}

	p := &Prefetcher{logger: logger}

	workers, err := ants.NewPool(size, ants.WithPanicHandler(func(v interface{}) {
		p.logger.Error("prefetch job panicked", slog.Any("panic", v))
	}))
	if err != nil {
		return nil, cerrors.Wrap(err, "failed to create the prefetch worker pool")
	}
	p.workers = workers

	return p, nil
}

// Warm moves count blocks from source into target and waits until every submitted job has finished.
// Once ctx is done no further jobs are submitted; jobs already running complete normally. source and
// target may be the same pool.
func (p *Prefetcher) Warm(ctx context.Context, source, target *blockpool.Pool, count int) (Result, error) {
	if source.Order() != target.Order() {
		return Result{}, cerrors.Wrapf(ErrOrderMismatch, "source order %d, target order %d", source.Order(), target.Order())
	}

	var fromPool, fromAllocator, failed atomic.Int64
	var firstErr error
	var errOnce sync.Once
	var wg sync.WaitGroup

	var submitErr error
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			submitErr = ctx.Err()
			break
		}

		wg.Add(1)
		err := p.workers.Submit(func() {
			defer wg.Done()

			block, served, err := source.Prefetch()
			if err != nil {
				failed.Add(1)
				errOnce.Do(func() { firstErr = err })
				return
			}

			if served {
				fromPool.Add(1)
			} else {
				fromAllocator.Add(1)
			}
			target.Free(block, true)
		})
		if err != nil {
			wg.Done()
			submitErr = cerrors.Wrap(err, "failed to submit a prefetch job")
			break
		}
	}

	wg.Wait()

	result := Result{
		FromPool:      int(fromPool.Load()),
		FromAllocator: int(fromAllocator.Load()),
		Failed:        int(failed.Load()),
	}

	p.logger.LogAttrs(ctx, slog.LevelDebug, "Prefetcher::Warm",
		slog.Uint64("order", uint64(target.Order())),
		slog.Int("requested", count),
		slog.Int("fromPool", result.FromPool),
		slog.Int("fromAllocator", result.FromAllocator),
		slog.Int("failed", result.Failed),
	)

	return result, cerrors.CombineErrors(submitErr, firstErr)
}

// Running returns the number of jobs currently executing
func (p *Prefetcher) Running() int {
	return p.workers.Running()
}

// Release stops the worker pool. Warm must not be called afterwards.
func (p *Prefetcher) Release() {
	p.workers.Release()
}
