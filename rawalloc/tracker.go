package rawalloc

import (
	"sync"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/blockpool"
)

// tracker owns the set of live blocks and the high-tier budget shared by the allocators
type tracker struct {
	mutex         sync.Mutex
	live          *swiss.Map[*blockpool.Block, struct{}]
	highTierLimit int
	highTierUsed  int
}

func (t *tracker) init(highTierLimit int) {
	t.live = swiss.NewMap[*blockpool.Block, struct{}](42)
	t.highTierLimit = highTierLimit
}

// place reserves high-tier budget for a new block of the given size and reports whether the
// block is high tier
func (t *tracker) place(units int, flags blockpool.AllocFlags) bool {
	if flags&blockpool.AllocHighTier == 0 {
		return false
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.highTierUsed+units > t.highTierLimit {
		return false
	}
	t.highTierUsed += units
	return true
}

// unplace returns the budget reserved by place for a block that was never tracked
func (t *tracker) unplace(units int, highTier bool) {
	if !highTier {
		return
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.highTierUsed -= units
}

func (t *tracker) track(block *blockpool.Block) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.live.Put(block, struct{}{})
}

func (t *tracker) check(block *blockpool.Block) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.live.Has(block) {
		return cerrors.Wrapf(ErrUnknownBlock, "order %d block", block.Order())
	}
	return nil
}

func (t *tracker) untrack(block *blockpool.Block) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.live.Has(block) {
		return cerrors.Wrapf(ErrUnknownBlock, "order %d block", block.Order())
	}
	t.live.Delete(block)

	if block.IsHighTier() {
		t.highTierUsed -= block.Units()
	}
	return nil
}

func (t *tracker) liveBlocks() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.live.Count()
}

func (t *tracker) highTierUnitsInUse() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.highTierUsed
}
