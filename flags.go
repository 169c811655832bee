package blockpool

import "github.com/vkngwrapper/blockpool/internal/utils"

// AllocFlags is the allocation policy of a pool. It is fixed when the pool is created and passed
// to the RawAllocator on every slow-path allocation.
type AllocFlags uint32

var allocFlagsMapping = utils.NewFlagStringMapping[AllocFlags]()

func (f AllocFlags) Register(str string) {
	allocFlagsMapping.Register(f, str)
}
func (f AllocFlags) String() string {
	return allocFlagsMapping.FlagsToString(f)
}

const (
	// AllocZero indicates that freshly allocated blocks must be zeroed before they are handed out.
	// New always folds this flag in. The pool strips it before calling RawAllocator.AllocateBlock and
	// performs the zeroing itself through RawAllocator.ZeroBlock.
	AllocZero AllocFlags = 1 << iota
	// AllocComposite indicates that a block of order > 0 is one composite unit rather than 2^order
	// independent units. New always forces this flag on.
	AllocComposite
	// AllocHighTier asks the RawAllocator to place new blocks in the high tier when it can.
	AllocHighTier
)

func init() {
	AllocZero.Register("AllocZero")
	AllocComposite.Register("AllocComposite")
	AllocHighTier.Register("AllocHighTier")
}

// ReclaimFlags describes the context a shrink request comes from. It decides whether the high tier
// may be reclaimed.
type ReclaimFlags uint32

var reclaimFlagsMapping = utils.NewFlagStringMapping[ReclaimFlags]()

func (f ReclaimFlags) Register(str string) {
	reclaimFlagsMapping.Register(f, str)
}
func (f ReclaimFlags) String() string {
	return reclaimFlagsMapping.FlagsToString(f)
}

const (
	// ReclaimDaemon indicates that the request comes from the system's primary reclaim daemon. The
	// daemon may always reclaim high-tier blocks.
	ReclaimDaemon ReclaimFlags = 1 << iota
	// ReclaimHighTier indicates that the caller explicitly accepts high-tier blocks as reclaim targets.
	ReclaimHighTier
)

func init() {
	ReclaimDaemon.Register("ReclaimDaemon")
	ReclaimHighTier.Register("ReclaimHighTier")
}

// AllowsHighTier reports whether a shrink request with these flags may reclaim high-tier blocks
func (f ReclaimFlags) AllowsHighTier() bool {
	return f&(ReclaimDaemon|ReclaimHighTier) != 0
}

// PoolCreateFlags indicate specific pool behaviors to activate or deactivate
type PoolCreateFlags int32

var poolCreateFlagsMapping = utils.NewFlagStringMapping[PoolCreateFlags]()

func (f PoolCreateFlags) Register(str string) {
	poolCreateFlagsMapping.Register(f, str)
}
func (f PoolCreateFlags) String() string {
	return poolCreateFlagsMapping.FlagsToString(f)
}

const (
	// PoolCreateExternallySynchronized ensures that the pool will not be synchronized internally. The
	// consumer must guarantee it is used from only one goroutine at a time or is synchronized by some
	// other mechanism. Try-lock always succeeds on such a pool.
	PoolCreateExternallySynchronized PoolCreateFlags = 1 << iota
)

func init() {
	PoolCreateExternallySynchronized.Register("PoolCreateExternallySynchronized")
}

// DestroyMode selects what Pool.Destroy does with blocks that are still cached
type DestroyMode uint32

const (
	// DestroyDetach releases only the pool's bookkeeping. Cached blocks are abandoned without
	// being returned to the RawAllocator; each one is logged as unreleased.
	DestroyDetach DestroyMode = iota
	// DestroyDrain returns every cached block to the RawAllocator before the pool is destroyed.
	DestroyDrain
	// DestroyRequireEmpty fails with ErrPoolNotEmpty, leaving the pool untouched, when any block is
	// still cached.
	DestroyRequireEmpty
)

var destroyModeMapping = map[DestroyMode]string{
	DestroyDetach:       "DestroyDetach",
	DestroyDrain:        "DestroyDrain",
	DestroyRequireEmpty: "DestroyRequireEmpty",
}

func (m DestroyMode) String() string {
	str, ok := destroyModeMapping[m]
	if !ok {
		return "Unknown"
	}
	return str
}
