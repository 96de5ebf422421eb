package tagging

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/addressing"
)

// A TagArray holds every set of a cache, indexed by set index. Sets are
// created the first time they are referenced.
type TagArray struct {
	geometry       addressing.Geometry
	sets           []*Set
	referencedSets int
}

// NewTagArray creates an empty tag array for the given geometry.
func NewTagArray(g addressing.Geometry) *TagArray {
	t := &TagArray{geometry: g}
	t.Reset()

	return t
}

// Geometry returns the shape of the cache.
func (t *TagArray) Geometry() addressing.Geometry {
	return t.geometry
}

// GetSet returns the set at setIndex, creating it if needed.
func (t *TagArray) GetSet(setIndex uint32) *Set {
	t.mustBeValidSet(setIndex)

	set := t.sets[setIndex]
	if set == nil {
		set = NewSet(t.geometry.LinesPerSet())
		t.sets[setIndex] = set
		t.referencedSets++

		if t.referencedSets > t.geometry.NumSets() {
			panic("more sets referenced than the cache has")
		}
	}

	return set
}

// PeekSet returns the set at setIndex without creating it.
func (t *TagArray) PeekSet(setIndex uint32) (*Set, bool) {
	t.mustBeValidSet(setIndex)

	set := t.sets[setIndex]

	return set, set != nil
}

// NumReferencedSets returns how many distinct sets have been created.
func (t *TagArray) NumReferencedSets() int {
	return t.referencedSets
}

// Reset drops every set.
func (t *TagArray) Reset() {
	t.sets = make([]*Set, t.geometry.NumSets())
	t.referencedSets = 0
}

func (t *TagArray) mustBeValidSet(setIndex uint32) {
	if uint64(setIndex) >= uint64(len(t.sets)) {
		panic(fmt.Sprintf("set index %d out of range [0, %d)",
			setIndex, len(t.sets)))
	}
}
