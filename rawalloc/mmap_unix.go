//go:build linux || darwin

package rawalloc

import (
	"context"
	"log/slog"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/blockpool"
	"golang.org/x/sys/unix"
)

// MmapAllocator is a RawAllocator that maps every block separately with an anonymous private
// mapping. ApplyCachePolicy advises the kernel that the block will be needed soon and
// ResetCachePolicy that its pages may be discarded; FreeBlock unmaps it.
type MmapAllocator struct {
	logger   *slog.Logger
	unitSize int
	tracker  tracker
}

var _ blockpool.RawAllocator = &MmapAllocator{}

func NewMmapAllocator(logger *slog.Logger, options Options) (*MmapAllocator, error) {
	err := options.validate()
	if err != nil {
		return nil, err
	}
	unitSize, _ := options.unitSize()

	if unitSize%unix.Getpagesize() != 0 {
		return nil, cerrors.Newf("unit size %d is not a multiple of the page size %d", unitSize, unix.Getpagesize())
	}

	allocator := &MmapAllocator{
		logger:   logger,
		unitSize: unitSize,
	}
	allocator.tracker.init(options.HighTierUnits)

	logger.Debug("MmapAllocator::New",
		slog.Int("unitSize", unitSize),
		slog.Int("highTierUnits", options.HighTierUnits),
	)
	return allocator, nil
}

// UnitSize returns the size in bytes of one unit
func (a *MmapAllocator) UnitSize() int { return a.unitSize }

// LiveBlocks returns the number of blocks mapped and not yet freed
func (a *MmapAllocator) LiveBlocks() int { return a.tracker.liveBlocks() }

// HighTierUnitsInUse returns the number of units held by live high-tier blocks
func (a *MmapAllocator) HighTierUnitsInUse() int { return a.tracker.highTierUnitsInUse() }

func (a *MmapAllocator) AllocateBlock(order uint, flags blockpool.AllocFlags) (*blockpool.Block, error) {
	err := blockpool.CheckOrder(order)
	if err != nil {
		return nil, err
	}

	units := blockpool.UnitsForOrder(order)
	highTier := a.tracker.place(units, flags)

	memory, err := unix.Mmap(
		-1, 0,
		a.unitSize*units,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		a.tracker.unplace(units, highTier)
		return nil, cerrors.Wrapf(err, "failed to map %d bytes", a.unitSize*units)
	}

	block := blockpool.NewBlock(memory, order, highTier, nil)
	a.tracker.track(block)
	return block, nil
}

func (a *MmapAllocator) ZeroBlock(device blockpool.Device, block *blockpool.Block) error {
	err := a.tracker.check(block)
	if err != nil {
		return err
	}

	clear(block.Bytes())
	return nil
}

func (a *MmapAllocator) ApplyCachePolicy(block *blockpool.Block) {
	a.advise(block, unix.MADV_WILLNEED, "ApplyCachePolicy")
}

func (a *MmapAllocator) ResetCachePolicy(block *blockpool.Block) {
	a.advise(block, unix.MADV_DONTNEED, "ResetCachePolicy")
}

func (a *MmapAllocator) advise(block *blockpool.Block, advice int, operation string) {
	err := unix.Madvise(block.Bytes(), advice)
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelWarn, "MmapAllocator::"+operation+" madvise failed",
			slog.Int("units", block.Units()),
			slog.Any("error", err),
		)
	}
}

func (a *MmapAllocator) FreeBlock(block *blockpool.Block) error {
	err := a.tracker.untrack(block)
	if err != nil {
		return err
	}

	err = unix.Munmap(block.Bytes())
	if err != nil {
		return cerrors.Wrapf(err, "failed to unmap an order %d block", block.Order())
	}
	return nil
}
