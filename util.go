package blockpool

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// MaxOrder is the largest order a pool may be created with
const MaxOrder uint = 30

// UnitsForOrder returns the number of units in a block of the given order
func UnitsForOrder[T constraints.Unsigned](order T) int {
	return 1 << order
}

// CheckOrder returns ErrInvalidOrder if order is larger than MaxOrder
func CheckOrder(order uint) error {
	if order > MaxOrder {
		return cerrors.Wrapf(ErrInvalidOrder, "order is %d, maximum is %d", order, MaxOrder)
	}
	return nil
}
