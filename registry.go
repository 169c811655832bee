package blockpool

import (
	"log/slog"
	"slices"
	"strconv"
	"sync"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Registry holds at most one pool per order and visits them by order. It drives aggregate
// operations (largest-fit allocation, reclaim across pools) but owns none of the pools' state.
type Registry struct {
	logger *slog.Logger

	mutex  sync.RWMutex
	pools  *swiss.Map[uint, *Pool]
	orders []uint
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		pools:  swiss.NewMap[uint, *Pool](uint32(MaxOrder + 1)),
	}
}

// Register adds pool under its order. It fails with ErrDuplicateOrder if a pool of that order is
// already registered.
func (r *Registry) Register(pool *Pool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	order := pool.Order()
	if r.pools.Has(order) {
		return cerrors.Wrapf(ErrDuplicateOrder, "order %d", order)
	}

	r.pools.Put(order, pool)
	index, _ := slices.BinarySearch(r.orders, order)
	r.orders = slices.Insert(r.orders, index, order)

	r.logger.Debug("Registry::Register", slog.Uint64("order", uint64(order)))
	return nil
}

// Unregister removes and returns the pool of the given order, or nil if there is none. The pool
// is not destroyed.
func (r *Registry) Unregister(order uint) *Pool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	pool, ok := r.pools.Get(order)
	if !ok {
		return nil
	}

	r.pools.Delete(order)
	index, found := slices.BinarySearch(r.orders, order)
	if !found {
		panic(cerrors.AssertionFailedf("order %d was registered but missing from the sorted orders", order))
	}
	r.orders = slices.Delete(r.orders, index, index+1)

	return pool
}

// Pool returns the pool registered for order
func (r *Registry) Pool(order uint) (*Pool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.pools.Get(order)
}

// Orders returns the registered orders, smallest first
func (r *Registry) Orders() []uint {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return slices.Clone(r.orders)
}

// Len returns the number of registered pools
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.pools.Count()
}

// Ascending calls visit with every pool, smallest order first, until visit returns false
func (r *Registry) Ascending(visit func(pool *Pool) bool) {
	for _, pool := range r.snapshot() {
		if !visit(pool) {
			return
		}
	}
}

// Descending calls visit with every pool, largest order first, until visit returns false
func (r *Registry) Descending(visit func(pool *Pool) bool) {
	pools := r.snapshot()
	for i := len(pools) - 1; i >= 0; i-- {
		if !visit(pools[i]) {
			return
		}
	}
}

func (r *Registry) snapshot() []*Pool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	pools := make([]*Pool, 0, len(r.orders))
	for _, order := range r.orders {
		pool, _ := r.pools.Get(order)
		pools = append(pools, pool)
	}
	return pools
}

// AllocLargest allocates one block from the pool with the largest blocks that still fit in units.
// Pools are tried largest order first; a pool whose allocation fails hands the request to the next
// smaller pool. fromPool reports whether the block came from a cache.
func (r *Registry) AllocLargest(units int) (block *Block, fromPool bool, err error) {
	var lastErr error
	r.Descending(func(pool *Pool) bool {
		if pool.Units() > units {
			return true
		}

		block, fromPool, lastErr = pool.Alloc()
		return lastErr != nil
	})

	if block != nil {
		return block, fromPool, nil
	}
	if lastErr != nil {
		return nil, false, lastErr
	}
	return nil, false, cerrors.Wrapf(ErrNoFittingPool, "requested %d units", units)
}

// Shrink reclaims up to nrToScan units across every pool, largest order first, and returns the
// number of units freed. When nrToScan is 0 it returns the number of reclaimable units of every pool
// and frees nothing.
func (r *Registry) Shrink(flags ReclaimFlags, nrToScan int) int {
	total := 0
	remaining := nrToScan

	r.Descending(func(pool *Pool) bool {
		freed := pool.Shrink(flags, remaining)
		total += freed

		if nrToScan == 0 {
			return true
		}

		remaining -= freed
		return remaining > 0
	})

	return total
}

// Destroy unregisters and destroys every pool with mode. Pools that fail to destroy under
// DestroyRequireEmpty stay registered.
func (r *Registry) Destroy(mode DestroyMode) error {
	var err error

	r.Ascending(func(pool *Pool) bool {
		destroyErr := pool.Destroy(mode)
		if destroyErr != nil {
			err = cerrors.CombineErrors(err, destroyErr)
			return true
		}

		r.Unregister(pool.Order())
		return true
	})

	return err
}

// AddStatistics sums the statistics of every registered pool into stats
func (r *Registry) AddStatistics(stats *Statistics) {
	r.Ascending(func(pool *Pool) bool {
		pool.AddStatistics(stats)
		return true
	})
}

// BuildStatsString writes a json object with the statistics of every pool, keyed by order, and
// their sum under "Total"
func (r *Registry) BuildStatsString(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	var total Statistics
	poolsObj := obj.Name("Pools").Object()
	r.Ascending(func(pool *Pool) bool {
		poolObj := poolsObj.Name(strconv.Itoa(int(pool.Order()))).Object()
		pool.PrintStats(&poolObj)
		poolObj.End()

		pool.AddStatistics(&total)
		return true
	})
	poolsObj.End()

	totalObj := obj.Name("Total").Object()
	total.PrintJson(&totalObj)
	totalObj.End()
}
