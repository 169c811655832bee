package rawalloc

import (
	cerrors "github.com/cockroachdb/errors"
)

// DefaultUnitSize is the unit size used when Options.UnitSize is 0
const DefaultUnitSize int = 4096

// Options contains optional settings for a raw allocator. It is valid to leave all fields blank.
type Options struct {
	// UnitSize is the size in bytes of one unit. A block of order o holds UnitSize << o bytes.
	// It must be a power of two.
	UnitSize int
	// HighTierUnits is the amount of high-tier memory, in units, that may be outstanding at once.
	// 0 means the allocator has no high tier.
	HighTierUnits int
}

func (o Options) unitSize() (int, error) {
	if o.UnitSize == 0 {
		return DefaultUnitSize, nil
	}
	if o.UnitSize < 0 || o.UnitSize&(o.UnitSize-1) != 0 {
		return 0, cerrors.Newf("unit size must be a positive power of two, but it is %d", o.UnitSize)
	}
	return o.UnitSize, nil
}

func (o Options) validate() error {
	if o.HighTierUnits < 0 {
		return cerrors.Newf("high tier units must not be negative, but it is %d", o.HighTierUnits)
	}
	_, err := o.unitSize()
	return err
}
