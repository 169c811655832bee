// Package rawalloc contains blockpool.RawAllocator implementations.
//
// HeapAllocator backs blocks with Go heap memory. MmapAllocator backs every block with its own
// anonymous private mapping and uses madvise as its cache policy. Both place blocks in the high
// tier only for requests carrying blockpool.AllocHighTier, and only while the outstanding
// high-tier units stay within Options.HighTierUnits. Both reject blocks they did not allocate, or
// have already freed, with ErrUnknownBlock.
package rawalloc
