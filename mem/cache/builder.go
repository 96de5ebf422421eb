package cache

import (
	"github.com/sarchlab/cachesim/mem/addressing"
	"github.com/sarchlab/cachesim/mem/cache/tagging"
	"github.com/sarchlab/cachesim/sim"
)

// Builder can build cache engines.
type Builder struct {
	geometry     addressing.Geometry
	policy       tagging.ReplacementPolicy
	victimFinder tagging.VictimFinder
}

// MakeBuilder creates a new builder. By default it builds a 16KB, 4-way
// set-associative cache with 64B lines and LRU replacement.
func MakeBuilder() Builder {
	g, err := addressing.NewGeometry(14, 6, addressing.SetAssociative(2))
	if err != nil {
		panic(err)
	}

	return Builder{
		geometry: g,
		policy:   tagging.LRU,
	}
}

// WithGeometry sets the shape of the cache.
func (b Builder) WithGeometry(g addressing.Geometry) Builder {
	b.geometry = g
	return b
}

// WithReplacementPolicy sets the replacement policy of the cache.
func (b Builder) WithReplacementPolicy(p tagging.ReplacementPolicy) Builder {
	b.policy = p
	return b
}

// WithVictimFinder overrides the victim finder derived from the replacement
// policy.
func (b Builder) WithVictimFinder(vf tagging.VictimFinder) Builder {
	b.victimFinder = vf
	return b
}

// Build builds a cache engine.
func (b Builder) Build(name string) *Engine {
	vf := b.victimFinder
	if vf == nil {
		vf = tagging.NewVictimFinder(b.policy)
	}

	e := &Engine{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		policy:       b.policy,
		victimFinder: vf,
		tags:         tagging.NewTagArray(b.geometry),
	}

	return e
}
