package blockpool

import "sync/atomic"

// Accountant receives the external memory accounting updates of a pool. Every deposit adjusts both
// counters by +Block.Units() and every withdrawal by -Block.Units().
type Accountant interface {
	ModCachedUnits(delta int)
	ModReclaimableUnits(delta int)
}

// UnitCounters is an Accountant that keeps both counters in atomics. It may be shared between pools.
type UnitCounters struct {
	cached      atomic.Int64
	reclaimable atomic.Int64
}

var _ Accountant = &UnitCounters{}

func (c *UnitCounters) ModCachedUnits(delta int) {
	c.cached.Add(int64(delta))
}

func (c *UnitCounters) ModReclaimableUnits(delta int) {
	c.reclaimable.Add(int64(delta))
}

// CachedUnits returns the current cached-memory counter
func (c *UnitCounters) CachedUnits() int {
	return int(c.cached.Load())
}

// ReclaimableUnits returns the current reclaimable-cached-memory counter
func (c *UnitCounters) ReclaimableUnits() int {
	return int(c.reclaimable.Load())
}
