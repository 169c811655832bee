package blockpool_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/blockpool"
	mock_blockpool "github.com/vkngwrapper/blockpool/mocks"
	"go.uber.org/mock/gomock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawBlock(order uint) *blockpool.Block {
	return blockpool.NewBlock(make([]byte, blockpool.UnitsForOrder(order)), order, false, nil)
}

func TestSlowPathZeroesThenAppliesCachePolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)
	device := mock_blockpool.NewMockDevice(ctrl)
	device.EXPECT().Name().Return("test-device").AnyTimes()

	pool, err := blockpool.New(discardLogger(), allocator, device, blockpool.PoolCreateInfo{Order: 3})
	require.NoError(t, err)

	block := rawBlock(3)
	gomock.InOrder(
		allocator.EXPECT().AllocateBlock(uint(3), blockpool.AllocComposite).Return(block, nil),
		allocator.EXPECT().ZeroBlock(device, block).Return(nil),
		allocator.EXPECT().ApplyCachePolicy(block),
	)

	out, fromPool, err := pool.Alloc()
	require.NoError(t, err)
	require.False(t, fromPool)
	require.Same(t, block, out)
}

func TestHighTierFlagReachesAllocator(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)

	pool, err := blockpool.New(discardLogger(), allocator, nil, blockpool.PoolCreateInfo{
		Order:      0,
		AllocFlags: blockpool.AllocHighTier,
	})
	require.NoError(t, err)
	require.Equal(t, blockpool.AllocZero|blockpool.AllocComposite|blockpool.AllocHighTier, pool.Flags())

	block := blockpool.NewBlock(make([]byte, 1), 0, true, nil)
	allocator.EXPECT().AllocateBlock(uint(0), blockpool.AllocComposite|blockpool.AllocHighTier).Return(block, nil)
	allocator.EXPECT().ZeroBlock(nil, block).Return(nil)
	allocator.EXPECT().ApplyCachePolicy(block)

	out, _, err := pool.Prefetch()
	require.NoError(t, err)
	require.True(t, out.IsHighTier())
}

func TestZeroFailureReleasesBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)

	pool, err := blockpool.New(discardLogger(), allocator, nil, blockpool.PoolCreateInfo{Order: 1})
	require.NoError(t, err)

	zeroErr := errors.New("device lost")
	block := rawBlock(1)
	gomock.InOrder(
		allocator.EXPECT().AllocateBlock(uint(1), gomock.Any()).Return(block, nil),
		allocator.EXPECT().ZeroBlock(nil, block).Return(zeroErr),
		allocator.EXPECT().FreeBlock(block).Return(nil),
	)

	out, fromPool, err := pool.Alloc()
	require.ErrorIs(t, err, zeroErr)
	require.Nil(t, out)
	require.False(t, fromPool)
}

func TestAllocatorFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)

	pool, err := blockpool.New(discardLogger(), allocator, nil, blockpool.PoolCreateInfo{Order: 2})
	require.NoError(t, err)

	// A pool-only allocation must not reach the allocator
	require.Nil(t, pool.AllocPoolOnly())

	allocErr := errors.New("out of memory")
	allocator.EXPECT().AllocateBlock(uint(2), gomock.Any()).Return(nil, allocErr)

	out, fromPool, err := pool.Alloc()
	require.ErrorIs(t, err, allocErr)
	require.Nil(t, out)
	require.False(t, fromPool)
}

func TestMismatchedAllocatorOrderPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)

	pool, err := blockpool.New(discardLogger(), allocator, nil, blockpool.PoolCreateInfo{Order: 2})
	require.NoError(t, err)

	allocator.EXPECT().AllocateBlock(uint(2), gomock.Any()).Return(rawBlock(1), nil)
	require.Panics(t, func() {
		_, _, _ = pool.Alloc()
	})
}

func TestShrinkSkipsBlocksThatFailToFree(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)

	pool, err := blockpool.New(discardLogger(), allocator, nil, blockpool.PoolCreateInfo{Order: 1})
	require.NoError(t, err)

	leaked := rawBlock(1)
	released := rawBlock(1)
	pool.Free(leaked, false)
	pool.Free(released, false)

	gomock.InOrder(
		allocator.EXPECT().ResetCachePolicy(leaked),
		allocator.EXPECT().FreeBlock(leaked).Return(errors.New("bad handle")),
		allocator.EXPECT().ResetCachePolicy(released),
		allocator.EXPECT().FreeBlock(released).Return(nil),
	)

	require.Equal(t, 2, pool.Shrink(0, 4))
	require.Equal(t, 0, pool.Total(true))
	require.NoError(t, pool.Validate())
}

func TestAccountantSeesEveryTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)
	accountant := mock_blockpool.NewMockAccountant(ctrl)

	pool, err := blockpool.New(discardLogger(), allocator, nil, blockpool.PoolCreateInfo{
		Order:      2,
		Accountant: accountant,
	})
	require.NoError(t, err)
	require.Same(t, accountant, pool.Accountant())

	first := rawBlock(2)
	second := rawBlock(2)
	gomock.InOrder(
		accountant.EXPECT().ModCachedUnits(4),
		accountant.EXPECT().ModReclaimableUnits(4),
		accountant.EXPECT().ModCachedUnits(4),
		accountant.EXPECT().ModReclaimableUnits(4),
		accountant.EXPECT().ModReclaimableUnits(-4),
		accountant.EXPECT().ModCachedUnits(-4),
		accountant.EXPECT().ModReclaimableUnits(-4),
		accountant.EXPECT().ModCachedUnits(-4),
	)
	allocator.EXPECT().ResetCachePolicy(second)
	allocator.EXPECT().FreeBlock(second).Return(nil)

	pool.Free(first, false)
	pool.Free(second, true)
	require.Same(t, first, pool.AllocPoolOnly())
	require.Equal(t, 4, pool.Shrink(blockpool.ReclaimDaemon, 1))
}

func TestDestroyDrainCombinesFreeErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	allocator := mock_blockpool.NewMockRawAllocator(ctrl)

	pool, err := blockpool.New(discardLogger(), allocator, nil, blockpool.PoolCreateInfo{Order: 0})
	require.NoError(t, err)

	first := rawBlock(0)
	second := rawBlock(0)
	pool.Free(first, false)
	pool.Free(second, false)

	firstErr := errors.New("first")
	allocator.EXPECT().ResetCachePolicy(gomock.Any()).Times(2)
	allocator.EXPECT().FreeBlock(first).Return(firstErr)
	allocator.EXPECT().FreeBlock(second).Return(nil)

	err = pool.Destroy(blockpool.DestroyDrain)
	require.ErrorIs(t, err, firstErr)
	require.True(t, pool.IsDestroyed())
}

func TestNewRequiresAllocator(t *testing.T) {
	_, err := blockpool.New(discardLogger(), nil, nil, blockpool.PoolCreateInfo{})
	require.Error(t, err)
}

func TestFlagStrings(t *testing.T) {
	require.Equal(t, "AllocZero|AllocComposite", (blockpool.AllocZero | blockpool.AllocComposite).String())
	require.Equal(t, "None", blockpool.ReclaimFlags(0).String())
	require.Equal(t, "ReclaimDaemon|ReclaimHighTier", (blockpool.ReclaimDaemon | blockpool.ReclaimHighTier).String())
	require.Equal(t, "PoolCreateExternallySynchronized", blockpool.PoolCreateExternallySynchronized.String())
	require.Equal(t, "DestroyRequireEmpty", blockpool.DestroyRequireEmpty.String())
	require.Equal(t, "Unknown", blockpool.DestroyMode(7).String())

	require.False(t, blockpool.ReclaimFlags(0).AllowsHighTier())
	require.True(t, blockpool.ReclaimDaemon.AllowsHighTier())
	require.True(t, blockpool.ReclaimHighTier.AllowsHighTier())
}
