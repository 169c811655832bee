package rawalloc

import "github.com/pkg/errors"

var (
	// ErrUnknownBlock is returned when a block was not allocated by this allocator or was already freed
	ErrUnknownBlock error = errors.New("block is not live in this allocator")
	// ErrMmapUnsupported is returned from NewMmapAllocator on platforms without mmap support
	ErrMmapUnsupported error = errors.New("mmap allocator is not supported on this platform")
)
