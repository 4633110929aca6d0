package bits

import "math/bits"

// Bitfield is a growable set of small non-negative integers.
type Bitfield []uint64

func (b *Bitfield) ensure(word int) {
	if word >= len(*b) {
		grown := make([]uint64, word+1, (word+1)*2)
		copy(grown, *b)
		*b = grown
	}
}

func (b *Bitfield) Set(bit int) {
	word := bit >> 6 // bit / 64
	b.ensure(word)
	mask := uint64(1) << (bit & 63)
	(*b)[word] |= mask
}

func (b *Bitfield) Clear(bit int) {
	word := bit >> 6
	if word >= len(*b) {
		return
	}
	mask := uint64(1) << (bit & 63)
	(*b)[word] &^= mask
}

func (b Bitfield) Get(bit int) bool {
	word := bit >> 6
	if word >= len(b) {
		return false
	}
	return (b[word]>>(bit&63))&1 == 1
}

// TruncateFrom clears every bit >= from.
func (b *Bitfield) TruncateFrom(from int) {
	word := from >> 6
	if word >= len(*b) {
		return
	}
	(*b)[word] &= (uint64(1) << (from & 63)) - 1
	clear((*b)[word+1:])
}

func (b Bitfield) Count() int {
	c := 0
	for _, w := range b {
		c += bits.OnesCount64(w)
	}
	return c
}

// FirstUnset returns the lowest bit in [0, n) that is not set, or -1.
func (b Bitfield) FirstUnset(n int) int {
	for i := 0; i < n; i++ {
		if !b.Get(i) {
			return i
		}
	}
	return -1
}
