package addressing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat is returned when an address contains a non-hex digit.
	ErrFormat = errors.New("invalid hexadecimal digit")

	// ErrPrefix is returned when an address does not start with 0x.
	ErrPrefix = errors.New("address must start with 0x")

	// ErrLengthMismatch is returned when a decoded address is not 32 bits.
	ErrLengthMismatch = errors.New("address is not 32 bits wide")
)

var nibbleTable = [16]string{
	"0000", "0001", "0010", "0011",
	"0100", "0101", "0110", "0111",
	"1000", "1001", "1010", "1011",
	"1100", "1101", "1110", "1111",
}

// BitVector is the fixed-width bit representation of a hex string. Each hex
// digit contributes exactly four bits, most significant first.
type BitVector struct {
	nibbles []byte
}

// Len returns the number of bits.
func (v BitVector) Len() int {
	return 4 * len(v.nibbles)
}

// Bit returns bit i, counting from the most significant bit.
func (v BitVector) Bit(i int) bool {
	n := v.nibbles[i/4]
	return n&(0b1000>>(i%4)) != 0
}

// String renders the vector as a string of '0' and '1'.
func (v BitVector) String() string {
	var sb strings.Builder

	sb.Grow(v.Len())

	for _, n := range v.nibbles {
		sb.WriteString(nibbleTable[n])
	}

	return sb.String()
}

// Address converts a 32-bit vector into an Address.
func (v BitVector) Address() (Address, error) {
	if v.Len() != AddressWidth {
		return 0, fmt.Errorf("%w: got %d bits", ErrLengthMismatch, v.Len())
	}

	var a uint32
	for _, n := range v.nibbles {
		a = a<<4 | uint32(n)
	}

	return Address(a), nil
}

// DecodeHex expands a 0x-prefixed hex string into bits. Digits are
// case-insensitive.
func DecodeHex(text string) (BitVector, error) {
	digits, ok := strings.CutPrefix(text, "0x")
	if !ok {
		digits, ok = strings.CutPrefix(text, "0X")
	}

	if !ok {
		return BitVector{}, fmt.Errorf("%w: %q", ErrPrefix, text)
	}

	if digits == "" {
		return BitVector{}, fmt.Errorf("%w: %q has no digits", ErrFormat, text)
	}

	nibbles := make([]byte, 0, len(digits))

	for _, c := range digits {
		n, ok := nibble(c)
		if !ok {
			return BitVector{}, fmt.Errorf("%w: %q in %q", ErrFormat, c, text)
		}

		nibbles = append(nibbles, n)
	}

	return BitVector{nibbles: nibbles}, nil
}

func nibble(c rune) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return byte(c - '0'), true
	case c >= 'a' && c <= 'f':
		return byte(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return byte(c-'A') + 10, true
	default:
		return 0, false
	}
}

// Split cuts a 32-bit vector into tag, set index, and offset for g.
func Split(bits BitVector, g Geometry) (Decomposition, error) {
	addr, err := bits.Address()
	if err != nil {
		return Decomposition{}, err
	}

	return g.Decompose(addr), nil
}

// ParseAddress decodes a 0x-prefixed, 8-digit hex address.
func ParseAddress(text string) (Address, error) {
	bits, err := DecodeHex(text)
	if err != nil {
		return 0, err
	}

	return bits.Address()
}
