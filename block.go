package blockpool

// Block is one raw allocation of exactly 2^order units. A Block is created by a RawAllocator and
// belongs to exactly one owner at a time: the RawAllocator, a Pool, or the caller that withdrew it.
type Block struct {
	memory   []byte
	order    uint
	highTier bool
	token    any
}

// NewBlock is used by RawAllocator implementations to wrap memory they have allocated. highTier is
// the block's placement and never changes. token is private to the allocator and is returned
// unchanged from Token.
func NewBlock(memory []byte, order uint, highTier bool, token any) *Block {
	return &Block{
		memory:   memory,
		order:    order,
		highTier: highTier,
		token:    token,
	}
}

// Bytes returns the memory backing the block
func (b *Block) Bytes() []byte { return b.memory }

// Order returns log2 of the block's size in units
func (b *Block) Order() uint { return b.order }

// Units returns the size of the block in units
func (b *Block) Units() int { return UnitsForOrder(b.order) }

// IsHighTier reports whether the block lives in high-tier memory
func (b *Block) IsHighTier() bool { return b.highTier }

// Token returns the allocator-private value passed to NewBlock
func (b *Block) Token() any { return b.token }
