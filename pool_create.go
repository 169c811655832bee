package blockpool

import (
	"log/slog"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/blockpool/internal/fifo"
	"github.com/vkngwrapper/blockpool/internal/utils"
)

// PoolCreateInfo contains the settings of a new pool. Only Order is required; it is valid to
// leave every other field blank.
type PoolCreateInfo struct {
	// Order is log2 of the pool's block size in units. It must not exceed MaxOrder.
	Order uint
	// AllocFlags is the allocation policy of the pool. AllocZero and AllocComposite are always added.
	AllocFlags AllocFlags
	// Flags indicates specific pool behaviors to activate or deactivate
	Flags PoolCreateFlags
	// Accountant receives cached-memory accounting updates. When nil the pool keeps its own
	// UnitCounters, available from Pool.Accountant.
	Accountant Accountant
}

// New creates an empty pool of blocks of 2^createInfo.Order units
//
// logger - Receives the pool's log records
//
// allocator - The RawAllocator used on a cache miss and to release blocks
//
// device - Passed to the allocator's zeroing hook; may be nil
func New(logger *slog.Logger, allocator RawAllocator, device Device, createInfo PoolCreateInfo) (*Pool, error) {
	if allocator == nil {
		return nil, cerrors.New("attempted to create a pool without a raw allocator")
	}

	err := CheckOrder(createInfo.Order)
	if err != nil {
		return nil, err
	}

	accountant := createInfo.Accountant
	if accountant == nil {
		accountant = &UnitCounters{}
	}

	pool := &Pool{
		allocator:  allocator,
		device:     device,
		accountant: accountant,
		order:      createInfo.Order,
		flags:      createInfo.AllocFlags | AllocZero | AllocComposite,
		mutex: utils.OptionalMutex{
			UseMutex: createInfo.Flags&PoolCreateExternallySynchronized == 0,
		},
		high: fifo.New[*Block](),
		low:  fifo.New[*Block](),
	}
	pool.logger = logger.With(
		slog.Uint64("order", uint64(pool.order)),
		slog.String("device", deviceName(device)),
	)

	pool.logger.Debug("Pool::New",
		slog.String("AllocFlags", pool.flags.String()),
		slog.String("Flags", createInfo.Flags.String()),
	)

	return pool, nil
}

func deviceName(device Device) string {
	if device == nil {
		return "none"
	}
	return device.Name()
}
