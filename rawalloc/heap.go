package rawalloc

import (
	"log/slog"

	"github.com/vkngwrapper/blockpool"
)

// HeapAllocator is a RawAllocator backed by the Go heap. Its cache policy hooks do nothing.
type HeapAllocator struct {
	logger   *slog.Logger
	unitSize int
	tracker  tracker
}

var _ blockpool.RawAllocator = &HeapAllocator{}

func NewHeapAllocator(logger *slog.Logger, options Options) (*HeapAllocator, error) {
	err := options.validate()
	if err != nil {
		return nil, err
	}
	unitSize, _ := options.unitSize()

	allocator := &HeapAllocator{
		logger:   logger,
		unitSize: unitSize,
	}
	allocator.tracker.init(options.HighTierUnits)

	logger.Debug("HeapAllocator::New",
		slog.Int("unitSize", unitSize),
		slog.Int("highTierUnits", options.HighTierUnits),
	)
	return allocator, nil
}

// UnitSize returns the size in bytes of one unit
func (a *HeapAllocator) UnitSize() int { return a.unitSize }

// LiveBlocks returns the number of blocks allocated and not yet freed
func (a *HeapAllocator) LiveBlocks() int { return a.tracker.liveBlocks() }

// HighTierUnitsInUse returns the number of units held by live high-tier blocks
func (a *HeapAllocator) HighTierUnitsInUse() int { return a.tracker.highTierUnitsInUse() }

func (a *HeapAllocator) AllocateBlock(order uint, flags blockpool.AllocFlags) (*blockpool.Block, error) {
	err := blockpool.CheckOrder(order)
	if err != nil {
		return nil, err
	}

	units := blockpool.UnitsForOrder(order)
	highTier := a.tracker.place(units, flags)

	block := blockpool.NewBlock(make([]byte, a.unitSize*units), order, highTier, nil)
	a.tracker.track(block)
	return block, nil
}

func (a *HeapAllocator) ZeroBlock(device blockpool.Device, block *blockpool.Block) error {
	err := a.tracker.check(block)
	if err != nil {
		return err
	}

	clear(block.Bytes())
	return nil
}

func (a *HeapAllocator) ApplyCachePolicy(block *blockpool.Block) {}

func (a *HeapAllocator) ResetCachePolicy(block *blockpool.Block) {}

func (a *HeapAllocator) FreeBlock(block *blockpool.Block) error {
	return a.tracker.untrack(block)
}
