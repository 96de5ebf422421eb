package addressing

import (
	"strconv"
	"strings"
)

// Decomposition is an address cut into its three fields.
type Decomposition struct {
	Tag    uint32
	Set    uint32
	Offset uint32

	tagBits, setBits, offsetBits uint
}

// TagBinary renders the tag as a binary string of exactly TagBits digits.
func (d Decomposition) TagBinary() string {
	return binary(d.Tag, d.tagBits)
}

// SetBinary renders the set index. It is empty when the cache has one set.
func (d Decomposition) SetBinary() string {
	return binary(d.Set, d.setBits)
}

// OffsetBinary renders the offset. It is empty for one-byte lines.
func (d Decomposition) OffsetBinary() string {
	return binary(d.Offset, d.offsetBits)
}

// Address reassembles the address the fields were cut from.
func (d Decomposition) Address() Address {
	a := uint64(d.Tag)<<(d.setBits+d.offsetBits) |
		uint64(d.Set)<<d.offsetBits |
		uint64(d.Offset)

	return Address(uint32(a))
}

func binary(v uint32, width uint) string {
	if width == 0 {
		return ""
	}

	s := strconv.FormatUint(uint64(v), 2)
	if uint(len(s)) >= width {
		return s
	}

	return strings.Repeat("0", int(width)-len(s)) + s
}
