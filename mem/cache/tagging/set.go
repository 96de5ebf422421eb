package tagging

import (
	"fmt"
	"sort"
)

// Sets larger than this keep a tag index instead of scanning.
const linearScanLimit = 16

// A Set is a bounded group of lines that a certain range of addresses can be
// stored in. Lines are keyed by tag.
type Set struct {
	lines    []Line
	capacity int
	index    map[uint32]int
}

// NewSet creates an empty set that can hold capacity lines.
func NewSet(capacity int) *Set {
	if capacity <= 0 {
		panic("set capacity must be positive")
	}

	s := &Set{
		capacity: capacity,
	}

	if capacity > linearScanLimit {
		s.index = make(map[uint32]int)
	} else {
		s.lines = make([]Line, 0, capacity)
	}

	return s
}

// Len returns the number of resident lines.
func (s *Set) Len() int {
	return len(s.lines)
}

// Cap returns the maximum number of resident lines.
func (s *Set) Cap() int {
	return s.capacity
}

// IsFull tells whether a miss in this set needs an eviction.
func (s *Set) IsFull() bool {
	return len(s.lines) >= s.capacity
}

// Lookup finds the line with the given tag. The pointer stays valid until the
// set is next modified.
func (s *Set) Lookup(tag uint32) (*Line, bool) {
	i, ok := s.slotOf(tag)
	if !ok {
		return nil, false
	}

	return &s.lines[i], true
}

// Insert adds a line. Inserting into a full set or inserting a tag that is
// already resident is a bug in the caller.
func (s *Set) Insert(line Line) {
	if s.IsFull() {
		panic(fmt.Sprintf("set is full (%d lines)", s.capacity))
	}

	if _, ok := s.slotOf(line.Tag); ok {
		panic(fmt.Sprintf("tag 0x%x is already resident", line.Tag))
	}

	s.lines = append(s.lines, line)

	if s.index != nil {
		s.index[line.Tag] = len(s.lines) - 1
	}
}

// Remove evicts the line with the given tag and returns it.
func (s *Set) Remove(tag uint32) (Line, bool) {
	i, ok := s.slotOf(tag)
	if !ok {
		return Line{}, false
	}

	removed := s.lines[i]
	last := len(s.lines) - 1
	s.lines[i] = s.lines[last]
	s.lines = s.lines[:last]

	if s.index != nil {
		delete(s.index, tag)

		if i != last {
			s.index[s.lines[i].Tag] = i
		}
	}

	return removed, true
}

// Lines returns a copy of the resident lines ordered by tag.
func (s *Set) Lines() []Line {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Tag < lines[j].Tag
	})

	return lines
}

// minBy returns the tag of the line with the smallest key. Equal keys go to
// the lowest tag.
func (s *Set) minBy(key func(l *Line) uint64) uint32 {
	if len(s.lines) == 0 {
		panic("cannot pick a line from an empty set")
	}

	best := &s.lines[0]
	for i := 1; i < len(s.lines); i++ {
		l := &s.lines[i]
		k, bk := key(l), key(best)

		if k < bk || (k == bk && l.Tag < best.Tag) {
			best = l
		}
	}

	return best.Tag
}

func (s *Set) slotOf(tag uint32) (int, bool) {
	if s.index != nil {
		i, ok := s.index[tag]
		return i, ok
	}

	for i := range s.lines {
		if s.lines[i].Tag == tag {
			return i, true
		}
	}

	return 0, false
}
