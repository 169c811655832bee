package blockpool

// Device is the opaque identity a pool passes to its RawAllocator's zeroing hook. It is also used to
// label log records.
type Device interface {
	Name() string
}

// RawAllocator is the underlying allocator a Pool falls back to on a cache miss and releases blocks
// to on shrink. Implementations must be safe for concurrent use.
type RawAllocator interface {
	// AllocateBlock returns a new block of 2^order units. The pool never includes AllocZero in
	// flags; zeroing is requested separately through ZeroBlock.
	AllocateBlock(order uint, flags AllocFlags) (*Block, error)
	// ZeroBlock clears the whole block on behalf of device. A failure makes the allocation fail;
	// the pool then frees the block with FreeBlock.
	ZeroBlock(device Device, block *Block) error
	// ApplyCachePolicy runs on every block successfully allocated through the slow path
	ApplyCachePolicy(block *Block)
	// ResetCachePolicy runs before every FreeBlock of a block that went through ApplyCachePolicy
	ResetCachePolicy(block *Block)
	// FreeBlock returns the block permanently
	FreeBlock(block *Block) error
}
