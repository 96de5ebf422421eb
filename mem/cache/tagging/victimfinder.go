package tagging

import (
	"fmt"
	"strings"
)

// ReplacementPolicy names a victim selection rule.
type ReplacementPolicy int

// The supported replacement policies.
const (
	LRU ReplacementPolicy = iota
	FIFO
)

// ParseReplacementPolicy maps "l" (any case, surrounding space ignored) to LRU
// and everything else to FIFO.
func ParseReplacementPolicy(s string) ReplacementPolicy {
	if strings.ToLower(strings.TrimSpace(s)) == "l" {
		return LRU
	}

	return FIFO
}

func (p ReplacementPolicy) String() string {
	switch p {
	case LRU:
		return "LRU"
	case FIFO:
		return "FIFO"
	default:
		return fmt.Sprintf("ReplacementPolicy(%d)", int(p))
	}
}

// A VictimFinder decides which line should be evicted from a full set.
type VictimFinder interface {
	FindVictim(set *Set) uint32
}

// NewVictimFinder returns the VictimFinder implementing the policy.
func NewVictimFinder(p ReplacementPolicy) VictimFinder {
	switch p {
	case LRU:
		return NewLRUVictimFinder()
	case FIFO:
		return NewFIFOVictimFinder()
	default:
		panic("unknown replacement policy " + p.String())
	}
}

// LRUVictimFinder evicts the least recently used line.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the tag of the line touched longest ago.
func (e *LRUVictimFinder) FindVictim(set *Set) uint32 {
	return set.minBy(func(l *Line) uint64 { return l.LastAccessTick })
}

// FIFOVictimFinder evicts the line that was filled first, no matter how often
// it was hit since.
type FIFOVictimFinder struct {
}

// NewFIFOVictimFinder returns a newly constructed fifo evictor.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the tag of the oldest line.
func (e *FIFOVictimFinder) FindVictim(set *Set) uint32 {
	return set.minBy(func(l *Line) uint64 { return l.BirthTick })
}
