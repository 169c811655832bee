//go:build !(linux || darwin)

package rawalloc

import (
	"log/slog"

	"github.com/vkngwrapper/blockpool"
)

// MmapAllocator is only available on linux and darwin. On other platforms NewMmapAllocator
// always fails with ErrMmapUnsupported.
type MmapAllocator struct {
	HeapAllocator
}

var _ blockpool.RawAllocator = &MmapAllocator{}

func NewMmapAllocator(logger *slog.Logger, options Options) (*MmapAllocator, error) {
	return nil, ErrMmapUnsupported
}
