package blockpool

import "github.com/pkg/errors"

var (
	// ErrInvalidOrder is returned from New when the requested order is larger than MaxOrder
	ErrInvalidOrder error = errors.New("block order is out of range")
	// ErrPoolNotEmpty is returned from Pool.Destroy under DestroyRequireEmpty when blocks are still cached
	ErrPoolNotEmpty error = errors.New("pool still holds cached blocks")
	// ErrPoolDestroyed is returned when an operation that needs a live pool is performed on a destroyed one
	ErrPoolDestroyed error = errors.New("pool has been destroyed")
	// ErrDuplicateOrder is returned from Registry.Register when a pool of the same order is already registered
	ErrDuplicateOrder error = errors.New("a pool with this order is already registered")
	// ErrNoFittingPool is returned from Registry.AllocLargest when no registered pool has small enough blocks
	ErrNoFittingPool error = errors.New("no registered pool has blocks that fit the request")
)
