package utils

import (
	"math/bits"
	"strings"

	"golang.org/x/exp/constraints"
)

// FlagStringMapping renders a bitmask as the registered names of its set bits, joined with "|".
type FlagStringMapping[T constraints.Integer] struct {
	names map[T]string
}

func NewFlagStringMapping[T constraints.Integer]() FlagStringMapping[T] {
	return FlagStringMapping[T]{names: make(map[T]string)}
}

// Register must be called from init: the mapping is not synchronized.
func (m FlagStringMapping[T]) Register(value T, name string) {
	m.names[value] = name
}

func (m FlagStringMapping[T]) FlagsToString(value T) string {
	if value == 0 {
		return "None"
	}

	var sb strings.Builder
	remaining := uint64(value)
	for remaining != 0 {
		bit := uint64(1) << bits.TrailingZeros64(remaining)
		remaining &^= bit

		if sb.Len() > 0 {
			sb.WriteRune('|')
		}

		name, ok := m.names[T(bit)]
		if !ok {
			sb.WriteString("Unknown")
			continue
		}
		sb.WriteString(name)
	}

	return sb.String()
}
