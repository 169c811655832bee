package blockpool

import (
	"context"
	"log/slog"
	"sync/atomic"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/blockpool/internal/fifo"
	"github.com/vkngwrapper/blockpool/internal/utils"
)

// Pool caches free blocks of a single order so they can be handed out again without going through
// the RawAllocator. Cached blocks are kept in two FIFO tiers chosen by Block.IsHighTier. Allocation
// never waits on the pool's mutex: when the mutex is busy the allocation is served by the
// RawAllocator instead.
type Pool struct {
	logger     *slog.Logger
	allocator  RawAllocator
	device     Device
	accountant Accountant

	order uint
	flags AllocFlags

	mutex      utils.OptionalMutex
	high       *fifo.Queue[*Block]
	low        *fifo.Queue[*Block]
	highCount  int
	lowCount   int
	unreserved int
	destroyed  bool

	hits   atomic.Int64
	misses atomic.Int64
}

// Order returns log2 of the pool's block size in units. It is the pool's sort key in a Registry.
func (p *Pool) Order() uint { return p.order }

// Units returns the size of the pool's blocks in units
func (p *Pool) Units() int { return UnitsForOrder(p.order) }

// Flags returns the pool's allocation policy
func (p *Pool) Flags() AllocFlags { return p.flags }

// Device returns the device the pool was created with
func (p *Pool) Device() Device { return p.device }

// Accountant returns the Accountant receiving this pool's accounting updates
func (p *Pool) Accountant() Accountant { return p.accountant }

// Alloc withdraws a cached block, preferring the high tier, or allocates a new one from the
// RawAllocator if the cache is empty or its mutex is busy. fromPool reports whether the block
// came from the cache.
func (p *Pool) Alloc() (block *Block, fromPool bool, err error) {
	if p.mutex.TryLock() {
		if p.highCount > 0 {
			block = p.remove(true, false)
		} else if p.lowCount > 0 {
			block = p.remove(false, false)
		}
		p.mutex.Unlock()
	}

	return p.finishAlloc(block)
}

// Prefetch behaves like Alloc, except that it only withdraws a cached block while some cached
// blocks are unreserved, and it consumes one unreserved block when it does. Once every cached block
// is reserved Prefetch goes to the RawAllocator even though the cache is not empty.
func (p *Pool) Prefetch() (block *Block, fromPool bool, err error) {
	if p.mutex.TryLock() {
		if p.highCount > 0 && p.unreserved > 0 {
			block = p.remove(true, true)
		} else if p.lowCount > 0 && p.unreserved > 0 {
			block = p.remove(false, true)
		}
		p.mutex.Unlock()
	}

	return p.finishAlloc(block)
}

// AllocPoolOnly withdraws a cached block, preferring the high tier. It never uses the RawAllocator
// and returns nil if the cache is empty or its mutex is busy.
func (p *Pool) AllocPoolOnly() *Block {
	var block *Block

	if p.mutex.TryLock() {
		if p.highCount > 0 {
			block = p.remove(true, false)
		} else if p.lowCount > 0 {
			block = p.remove(false, false)
		}
		p.mutex.Unlock()
	}

	if block != nil {
		p.hits.Add(1)
	}
	return block
}

func (p *Pool) finishAlloc(block *Block) (*Block, bool, error) {
	if block != nil {
		p.hits.Add(1)
		return block, true, nil
	}

	p.misses.Add(1)
	block, err := p.allocRaw()
	return block, false, err
}

func (p *Pool) allocRaw() (*Block, error) {
	block, err := p.allocator.AllocateBlock(p.order, p.flags&^AllocZero)
	if err != nil {
		return nil, cerrors.Wrapf(err, "failed to allocate an order %d block", p.order)
	}

	if block.Order() != p.order {
		panic(cerrors.AssertionFailedf("raw allocator returned an order %d block to an order %d pool", block.Order(), p.order))
	}

	if p.flags&AllocZero != 0 {
		err = p.allocator.ZeroBlock(p.device, block)
		if err != nil {
			freeErr := p.allocator.FreeBlock(block)
			if freeErr != nil {
				p.logger.LogAttrs(context.Background(), slog.LevelError,
					"failed to free a block after it could not be zeroed",
					slog.Any("error", freeErr))
			}
			return nil, cerrors.Wrapf(err, "failed to zero an order %d block", p.order)
		}
	}

	p.allocator.ApplyCachePolicy(block)
	return block, nil
}

// remove must be called with the mutex held
func (p *Pool) remove(high bool, prefetch bool) *Block {
	var block *Block

	if high {
		if p.highCount == 0 {
			panic(cerrors.AssertionFailedf("attempted to withdraw from the empty high tier of an order %d pool", p.order))
		}
		block = p.high.Remove()
		p.highCount--
	} else {
		if p.lowCount == 0 {
			panic(cerrors.AssertionFailedf("attempted to withdraw from the empty low tier of an order %d pool", p.order))
		}
		block = p.low.Remove()
		p.lowCount--
	}

	if prefetch {
		if p.unreserved == 0 {
			panic(cerrors.AssertionFailedf("attempted a prefetch withdrawal from an order %d pool with no unreserved blocks", p.order))
		}
		p.unreserved--
	}
	p.unreserved = min(p.unreserved, p.highCount+p.lowCount)

	units := block.Units()
	p.accountant.ModReclaimableUnits(-units)
	p.accountant.ModCachedUnits(-units)

	DebugValidate(lockedPool{p})
	return block
}

// Free deposits block into the cache. The tier is chosen by the block's placement. prefetch must be
// true when the block is being returned by a prefetch warm-up: such a block is reserved and does
// not raise the unreserved count. Free panics if block does not have the pool's order. If the pool
// has been destroyed the block is released to the RawAllocator immediately.
func (p *Pool) Free(block *Block, prefetch bool) {
	if block.Order() != p.order {
		panic(cerrors.AssertionFailedf("attempted to free an order %d block into an order %d pool", block.Order(), p.order))
	}

	if p.add(block, prefetch) {
		return
	}

	err := p.FreeImmediate(block)
	if err != nil {
		p.logger.LogAttrs(context.Background(), slog.LevelError,
			"failed to free a block that could not be cached",
			slog.Int("units", block.Units()),
			slog.Any("error", err))
	}
}

func (p *Pool) add(block *Block, prefetch bool) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.destroyed {
		return false
	}

	if block.IsHighTier() {
		p.high.Add(block)
		p.highCount++
	} else {
		p.low.Add(block)
		p.lowCount++
	}

	if !prefetch {
		p.unreserved++
	}

	units := block.Units()
	p.accountant.ModCachedUnits(units)
	p.accountant.ModReclaimableUnits(units)

	DebugValidate(lockedPool{p})
	return true
}

// FreeImmediate releases block to the RawAllocator without caching it
func (p *Pool) FreeImmediate(block *Block) error {
	p.allocator.ResetCachePolicy(block)
	return p.allocator.FreeBlock(block)
}

// Total returns the number of cached units in the low tier, plus the high tier if high is true
func (p *Pool) Total(high bool) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.totalLocked(high)
}

func (p *Pool) totalLocked(high bool) int {
	count := p.lowCount
	if high {
		count += p.highCount
	}

	return count << p.order
}

// Shrink releases cached blocks to the RawAllocator until at least nrToScan units have been freed
// or no eligible block is left, and returns the number of units freed. The low tier is drained
// first; the high tier only once the low tier is empty, and only if flags.AllowsHighTier().
//
// When nrToScan is 0 Shrink changes nothing and returns the number of units it could free.
func (p *Pool) Shrink(flags ReclaimFlags, nrToScan int) int {
	high := flags.AllowsHighTier()

	if nrToScan == 0 {
		return p.Total(high)
	}

	freed := 0
	for freed < nrToScan {
		var block *Block

		p.mutex.Lock()
		if p.lowCount > 0 {
			block = p.remove(false, false)
		} else if high && p.highCount > 0 {
			block = p.remove(true, false)
		} else {
			p.mutex.Unlock()
			break
		}
		p.mutex.Unlock()

		err := p.FreeImmediate(block)
		if err != nil {
			p.logger.LogAttrs(context.Background(), slog.LevelError,
				"[LEAKED BLOCK] failed to free a block during shrink",
				slog.Int("units", block.Units()),
				slog.Bool("highTier", block.IsHighTier()),
				slog.Any("error", err))
			continue
		}
		freed += block.Units()
	}

	p.logger.Debug("Pool::Shrink",
		slog.String("flags", flags.String()),
		slog.Int("nrToScan", nrToScan),
		slog.Int("freed", freed),
	)
	return freed
}

// Destroy retires the pool. What happens to blocks that are still cached depends on mode; see
// DestroyMode. Once destroyed, allocations always go to the RawAllocator and Free releases
// blocks immediately.
func (p *Pool) Destroy(mode DestroyMode) error {
	p.logger.Debug("Pool::Destroy", slog.String("mode", mode.String()))

	if _, ok := destroyModeMapping[mode]; !ok {
		return cerrors.Newf("unknown destroy mode %d", mode)
	}

	p.mutex.Lock()
	if p.destroyed {
		p.mutex.Unlock()
		return cerrors.Wrapf(ErrPoolDestroyed, "order %d pool", p.order)
	}

	cachedCount := p.highCount + p.lowCount
	if mode == DestroyRequireEmpty && cachedCount > 0 {
		p.mutex.Unlock()
		return cerrors.Wrapf(ErrPoolNotEmpty, "%d blocks remain in the order %d pool", cachedCount, p.order)
	}

	cached := make([]*Block, 0, cachedCount)
	for p.lowCount > 0 {
		cached = append(cached, p.remove(false, false))
	}
	for p.highCount > 0 {
		cached = append(cached, p.remove(true, false))
	}
	p.destroyed = true
	p.mutex.Unlock()

	if mode == DestroyDetach {
		for _, block := range cached {
			p.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED BLOCK] cached block abandoned by pool destruction",
				slog.Int("units", block.Units()),
				slog.Bool("highTier", block.IsHighTier()),
			)
		}
		return nil
	}

	var err error
	for _, block := range cached {
		err = cerrors.CombineErrors(err, p.FreeImmediate(block))
	}
	return err
}

// IsDestroyed reports whether Destroy has completed on this pool
func (p *Pool) IsDestroyed() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.destroyed
}

// AddStatistics sums this pool's current state into stats
func (p *Pool) AddStatistics(stats *Statistics) {
	p.mutex.Lock()
	stats.HighBlocks += p.highCount
	stats.LowBlocks += p.lowCount
	stats.UnreservedBlocks += p.unreserved
	stats.CachedUnits += p.totalLocked(true)
	p.mutex.Unlock()

	stats.PoolHits += int(p.hits.Load())
	stats.PoolMisses += int(p.misses.Load())
}

// PrintStats populates a json object with information about this pool
func (p *Pool) PrintStats(json *jwriter.ObjectState) {
	var stats Statistics
	p.AddStatistics(&stats)

	json.Name("Order").Int(int(p.order))
	json.Name("BlockUnits").Int(p.Units())
	json.Name("AllocFlags").String(p.flags.String())
	stats.PrintJson(json)
}

// Validate checks that both tier counts match their queues, that the unreserved count is in range,
// that every cached block sits in the tier its placement requires, and that no block is cached twice
func (p *Pool) Validate() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.validateLocked()
}

func (p *Pool) validateLocked() error {
	if p.highCount != p.high.Len() {
		return cerrors.Newf("high tier count %d does not match its %d queued blocks", p.highCount, p.high.Len())
	}
	if p.lowCount != p.low.Len() {
		return cerrors.Newf("low tier count %d does not match its %d queued blocks", p.lowCount, p.low.Len())
	}
	if p.unreserved < 0 || p.unreserved > p.highCount+p.lowCount {
		return cerrors.Newf("unreserved count %d is outside of [0, %d]", p.unreserved, p.highCount+p.lowCount)
	}

	seen := swiss.NewMap[*Block, struct{}](uint32(p.highCount + p.lowCount + 1))
	var err error
	check := func(highTier bool) func(int, *Block) bool {
		return func(index int, block *Block) bool {
			if block.IsHighTier() != highTier {
				err = cerrors.Newf("block at index %d of the high=%t tier has high tier placement %t", index, highTier, block.IsHighTier())
				return false
			}
			if block.Order() != p.order {
				err = cerrors.Newf("block at index %d of the high=%t tier has order %d", index, highTier, block.Order())
				return false
			}
			if seen.Has(block) {
				err = cerrors.Newf("block at index %d of the high=%t tier is cached more than once", index, highTier)
				return false
			}
			seen.Put(block, struct{}{})
			return true
		}
	}

	p.high.Visit(check(true))
	if err != nil {
		return err
	}
	p.low.Visit(check(false))
	return err
}

// lockedPool validates a pool whose mutex is already held
type lockedPool struct {
	pool *Pool
}

func (l lockedPool) Validate() error {
	return l.pool.validateLocked()
}
