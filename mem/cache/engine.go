// Package cache provides the cache engine that decides whether each access
// hits or misses and maintains the resident lines.
package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/addressing"
	"github.com/sarchlab/cachesim/mem/cache/tagging"
	"github.com/sarchlab/cachesim/sim"
)

// Outcome is the result of a single access.
type Outcome int

// The possible outcomes.
const (
	Miss Outcome = iota
	Hit
)

func (o Outcome) String() string {
	if o == Hit {
		return "hit"
	}

	return "miss"
}

// HookPosAccess marks the end of an access. The hook item is an AccessDetail.
var HookPosAccess = &sim.HookPos{Name: "CacheAccess"}

// AccessDetail describes what an access did to the cache.
type AccessDetail struct {
	Tick     uint64
	Tag      uint32
	SetIndex uint32
	Address  addressing.Address
	Outcome  Outcome

	// Evicted tells whether the access pushed Victim out of the set.
	Evicted bool
	Victim  tagging.Line
}

// An Engine is a single-level cache. It owns all its sets and lines and is
// not safe for concurrent use; accesses must be issued in trace order.
type Engine struct {
	*sim.HookableBase

	name         string
	policy       tagging.ReplacementPolicy
	victimFinder tagging.VictimFinder
	tags         *tagging.TagArray

	// clock is a logical clock that advances once per access.
	clock uint64
}

// Name returns the name of the engine.
func (e *Engine) Name() string {
	return e.name
}

// Geometry returns the shape of the cache.
func (e *Engine) Geometry() addressing.Geometry {
	return e.tags.Geometry()
}

// Policy returns the replacement policy.
func (e *Engine) Policy() tagging.ReplacementPolicy {
	return e.policy
}

// Clock returns the number of accesses processed since the last reset.
func (e *Engine) Clock() uint64 {
	return e.clock
}

// Access looks up tag in the set at setIndex. On a miss the block is filled,
// evicting a victim if the set is full. The tag must fit in the geometry's
// tag bits.
func (e *Engine) Access(tag, setIndex uint32) Outcome {
	tagBits := e.tags.Geometry().TagBits()
	if tagBits < 32 && tag>>tagBits != 0 {
		panic(fmt.Sprintf("tag 0x%x does not fit in %d bits", tag, tagBits))
	}

	addr := e.tags.Geometry().Compose(tag, setIndex, 0)
	return e.access(tag, setIndex, addr)
}

// AccessAddress decomposes addr and accesses the cache with it.
func (e *Engine) AccessAddress(addr addressing.Address) Outcome {
	d := e.tags.Geometry().Decompose(addr)
	return e.access(d.Tag, d.Set, addr)
}

func (e *Engine) access(
	tag, setIndex uint32,
	addr addressing.Address,
) Outcome {
	e.clock++
	now := e.clock

	detail := AccessDetail{
		Tick:     now,
		Tag:      tag,
		SetIndex: setIndex,
		Address:  addr,
	}

	set := e.tags.GetSet(setIndex)

	if line, found := set.Lookup(tag); found {
		line.LastAccessTick = now
		line.AccessCount++
		detail.Outcome = Hit
	} else {
		if set.IsFull() {
			detail.Victim = e.evict(set)
			detail.Evicted = true
		}

		set.Insert(tagging.Line{
			Tag:            tag,
			Address:        addr,
			BirthTick:      now,
			LastAccessTick: now,
		})

		detail.Outcome = Miss
	}

	if set.Len() > set.Cap() {
		panic(fmt.Sprintf("set %d holds %d lines, capacity %d",
			setIndex, set.Len(), set.Cap()))
	}

	if e.NumHooks() > 0 {
		e.InvokeHook(sim.HookCtx{
			Domain: e,
			Pos:    HookPosAccess,
			Item:   detail,
		})
	}

	return detail.Outcome
}

func (e *Engine) evict(set *tagging.Set) tagging.Line {
	victimTag := e.victimFinder.FindVictim(set)

	victim, ok := set.Remove(victimTag)
	if !ok {
		panic(fmt.Sprintf("victim tag 0x%x is not resident", victimTag))
	}

	return victim
}

// ResidentLines returns the lines in the set at setIndex, ordered by tag.
func (e *Engine) ResidentLines(setIndex uint32) []tagging.Line {
	set, ok := e.tags.PeekSet(setIndex)
	if !ok {
		return nil
	}

	return set.Lines()
}

// NumReferencedSets returns how many distinct sets have been touched.
func (e *Engine) NumReferencedSets() int {
	return e.tags.NumReferencedSets()
}

// Reset empties the cache and rewinds the clock.
func (e *Engine) Reset() {
	e.tags.Reset()
	e.clock = 0
}
