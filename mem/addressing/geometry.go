// Package addressing describes the shape of a cache and how a 32-bit address
// is cut into tag, set index, and offset for that shape.
package addressing

import (
	"errors"
	"fmt"
)

// AddressWidth is the number of bits in every address the simulator handles.
const AddressWidth = 32

// MaxLinesExp bounds the number of lines a cache may hold (2^MaxLinesExp).
const MaxLinesExp = 20

// ErrConfiguration is returned when a cache shape violates its invariants.
var ErrConfiguration = errors.New("invalid cache configuration")

// Address is a 32-bit memory address.
type Address uint32

func (a Address) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}

// AssociativityKind enumerates how lines are grouped into sets.
type AssociativityKind int

// The associativity kinds. The zero value is intentionally invalid.
const (
	FullyAssociativeKind AssociativityKind = iota + 1
	DirectMappedKind
	SetAssociativeKind
)

// Associativity selects how many lines a set holds.
type Associativity struct {
	kind    AssociativityKind
	waysExp uint
}

// FullyAssociative puts every line into a single set.
func FullyAssociative() Associativity {
	return Associativity{kind: FullyAssociativeKind}
}

// DirectMapped gives every set exactly one line.
func DirectMapped() Associativity {
	return Associativity{kind: DirectMappedKind}
}

// SetAssociative gives every set 2^waysExp lines.
func SetAssociative(waysExp uint) Associativity {
	return Associativity{kind: SetAssociativeKind, waysExp: waysExp}
}

// Kind returns the associativity kind.
func (a Associativity) Kind() AssociativityKind {
	return a.kind
}

// WaysExp returns the ways exponent given to SetAssociative. It is zero for
// the other kinds; use Geometry.WaysExp for the effective value.
func (a Associativity) WaysExp() uint {
	return a.waysExp
}

func (a Associativity) String() string {
	switch a.kind {
	case FullyAssociativeKind:
		return "fully-associative"
	case DirectMappedKind:
		return "direct-mapped"
	case SetAssociativeKind:
		return fmt.Sprintf("%d-way set-associative", uint64(1)<<a.waysExp)
	default:
		return "unknown"
	}
}

// Geometry is the derived, immutable shape of a cache.
type Geometry struct {
	cacheSizeExp uint
	lineSizeExp  uint
	assoc        Associativity

	waysExp    uint
	setBits    uint
	offsetBits uint
	tagBits    uint
}

// NewGeometry validates the size exponents and associativity and derives the
// bit layout of an address.
func NewGeometry(
	cacheSizeExp, lineSizeExp uint,
	assoc Associativity,
) (Geometry, error) {
	if cacheSizeExp < lineSizeExp {
		return Geometry{}, fmt.Errorf(
			"%w: cache size exponent %d is smaller than line size exponent %d",
			ErrConfiguration, cacheSizeExp, lineSizeExp)
	}

	if lineSizeExp > AddressWidth {
		return Geometry{}, fmt.Errorf(
			"%w: line size exponent %d exceeds the %d-bit address",
			ErrConfiguration, lineSizeExp, AddressWidth)
	}

	linesExp := cacheSizeExp - lineSizeExp
	if linesExp > MaxLinesExp {
		return Geometry{}, fmt.Errorf(
			"%w: 2^%d lines is more than the supported 2^%d",
			ErrConfiguration, linesExp, MaxLinesExp)
	}

	var waysExp uint

	switch assoc.kind {
	case FullyAssociativeKind:
		waysExp = linesExp
	case DirectMappedKind:
		waysExp = 0
	case SetAssociativeKind:
		waysExp = assoc.waysExp
		if waysExp > linesExp {
			return Geometry{}, fmt.Errorf(
				"%w: 2^%d ways do not fit in a cache of 2^%d lines",
				ErrConfiguration, waysExp, linesExp)
		}
	default:
		return Geometry{}, fmt.Errorf(
			"%w: unknown associativity", ErrConfiguration)
	}

	setBits := linesExp - waysExp
	if setBits+lineSizeExp > AddressWidth {
		return Geometry{}, fmt.Errorf(
			"%w: %d set bits and %d offset bits exceed the %d-bit address",
			ErrConfiguration, setBits, lineSizeExp, AddressWidth)
	}

	g := Geometry{
		cacheSizeExp: cacheSizeExp,
		lineSizeExp:  lineSizeExp,
		assoc:        assoc,
		waysExp:      waysExp,
		setBits:      setBits,
		offsetBits:   lineSizeExp,
		tagBits:      AddressWidth - setBits - lineSizeExp,
	}

	return g, nil
}

// CacheSizeExp returns log2 of the cache size in bytes.
func (g Geometry) CacheSizeExp() uint { return g.cacheSizeExp }

// LineSizeExp returns log2 of the line size in bytes.
func (g Geometry) LineSizeExp() uint { return g.lineSizeExp }

// Associativity returns the associativity the geometry was built with.
func (g Geometry) Associativity() Associativity { return g.assoc }

// WaysExp returns log2 of the number of lines per set.
func (g Geometry) WaysExp() uint { return g.waysExp }

// NumLines returns the number of lines the cache holds.
func (g Geometry) NumLines() int {
	return 1 << (g.cacheSizeExp - g.lineSizeExp)
}

// LinesPerSet returns the capacity of every set.
func (g Geometry) LinesPerSet() int {
	return 1 << g.waysExp
}

// NumSets returns the number of sets.
func (g Geometry) NumSets() int {
	return 1 << g.setBits
}

// SetBits returns the width of the set index.
func (g Geometry) SetBits() uint { return g.setBits }

// OffsetBits returns the width of the offset.
func (g Geometry) OffsetBits() uint { return g.offsetBits }

// TagBits returns the width of the tag.
func (g Geometry) TagBits() uint { return g.tagBits }

// Decompose cuts an address into tag, set index and offset.
func (g Geometry) Decompose(addr Address) Decomposition {
	a := uint32(addr)

	return Decomposition{
		Tag:        uint32(uint64(a) >> (g.offsetBits + g.setBits)),
		Set:        (a >> g.offsetBits) & mask(g.setBits),
		Offset:     a & mask(g.offsetBits),
		tagBits:    g.tagBits,
		setBits:    g.setBits,
		offsetBits: g.offsetBits,
	}
}

// Compose builds the address whose fields are tag, set, and offset.
func (g Geometry) Compose(tag, set, offset uint32) Address {
	a := uint64(tag)<<(g.setBits+g.offsetBits) |
		uint64(set&mask(g.setBits))<<g.offsetBits |
		uint64(offset&mask(g.offsetBits))

	return Address(uint32(a))
}

func (g Geometry) String() string {
	return fmt.Sprintf(
		"%dB %s cache, %dB lines, %d sets x %d lines (tag %d, set %d, offset %d)",
		uint64(1)<<g.cacheSizeExp, g.assoc, uint64(1)<<g.lineSizeExp,
		g.NumSets(), g.LinesPerSet(), g.tagBits, g.setBits, g.offsetBits)
}

func mask(width uint) uint32 {
	return uint32((uint64(1) << width) - 1)
}
