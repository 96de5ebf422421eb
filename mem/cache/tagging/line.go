// Package tagging keeps track of which memory blocks are resident in a cache
// and decides which block to give up when a set runs out of room.
package tagging

import "github.com/sarchlab/cachesim/mem/addressing"

// A Line is the record of one memory block resident in a set.
type Line struct {
	Tag     uint32
	Address addressing.Address

	// BirthTick is the logical time the line was filled.
	BirthTick uint64

	// LastAccessTick is the logical time of the latest fill or hit.
	LastAccessTick uint64

	// AccessCount counts hits after the fill.
	AccessCount uint64
}
