package prefetch_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/blockpool"
	"github.com/vkngwrapper/blockpool/prefetch"
	"github.com/vkngwrapper/blockpool/rawalloc"
)

func setup(t *testing.T, orders ...uint) (*prefetch.Prefetcher, *rawalloc.HeapAllocator, []*blockpool.Pool) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	allocator, err := rawalloc.NewHeapAllocator(logger, rawalloc.Options{UnitSize: 64})
	require.NoError(t, err)

	var pools []*blockpool.Pool
	for _, order := range orders {
		pool, err := blockpool.New(logger, allocator, nil, blockpool.PoolCreateInfo{Order: order})
		require.NoError(t, err)
		pools = append(pools, pool)
	}

	// A single worker keeps the source's try-lock uncontended
	prefetcher, err := prefetch.New(logger, prefetch.Options{Workers: 1})
	require.NoError(t, err)
	t.Cleanup(prefetcher.Release)

	return prefetcher, allocator, pools
}

func deposit(t *testing.T, pool *blockpool.Pool, count int) {
	blocks := make([]*blockpool.Block, 0, count)
	for i := 0; i < count; i++ {
		block, _, err := pool.Alloc()
		require.NoError(t, err)
		blocks = append(blocks, block)
	}
	for _, block := range blocks {
		pool.Free(block, false)
	}
}

func TestWarmReservesBlocksInTarget(t *testing.T) {
	prefetcher, allocator, pools := setup(t, 1, 1)
	source, target := pools[0], pools[1]
	deposit(t, source, 2)

	result, err := prefetcher.Warm(context.Background(), source, target, 3)
	require.NoError(t, err)
	require.Equal(t, prefetch.Result{FromPool: 2, FromAllocator: 1}, result)
	require.Equal(t, 3, result.Warmed())

	require.Equal(t, 0, source.Total(true))

	var stats blockpool.Statistics
	target.AddStatistics(&stats)
	require.Equal(t, 3, stats.CachedBlocks())
	require.Equal(t, 0, stats.UnreservedBlocks)
	require.NoError(t, target.Validate())
	require.Equal(t, 3, allocator.LiveBlocks())

	// Prefetching out of the warmed pool finds nothing unreserved
	block, fromPool, err := target.Prefetch()
	require.NoError(t, err)
	require.False(t, fromPool)
	target.Free(block, true)
	require.Equal(t, 8, target.Total(true))
}

func TestWarmSamePoolConsumesUnreservedOnce(t *testing.T) {
	prefetcher, _, pools := setup(t, 0)
	pool := pools[0]
	deposit(t, pool, 1)

	result, err := prefetcher.Warm(context.Background(), pool, pool, 2)
	require.NoError(t, err)
	require.Equal(t, prefetch.Result{FromPool: 1, FromAllocator: 1}, result)

	var stats blockpool.Statistics
	pool.AddStatistics(&stats)
	require.Equal(t, 2, stats.CachedBlocks())
	require.Equal(t, 0, stats.UnreservedBlocks)
	require.NoError(t, pool.Validate())
}

func TestWarmRejectsOrderMismatch(t *testing.T) {
	prefetcher, allocator, pools := setup(t, 0, 1)

	_, err := prefetcher.Warm(context.Background(), pools[0], pools[1], 1)
	require.ErrorIs(t, err, prefetch.ErrOrderMismatch)
	require.Equal(t, 0, allocator.LiveBlocks())
}

func TestWarmStopsWhenContextIsDone(t *testing.T) {
	prefetcher, allocator, pools := setup(t, 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := prefetcher.Warm(ctx, pools[0], pools[1], 5)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, result.Warmed())
	require.Equal(t, 0, allocator.LiveBlocks())
	require.Equal(t, 0, prefetcher.Running())
}

func TestNewRejectsNegativeWorkers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := prefetch.New(logger, prefetch.Options{Workers: -1})
	require.Error(t, err)

	prefetcher, err := prefetch.New(logger, prefetch.Options{})
	require.NoError(t, err)
	prefetcher.Release()
}
