package trace

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/mem/addressing"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim"
)

// HookPosStep marks the end of one trace record. The hook item is a
// StepDetail.
var HookPosStep = &sim.HookPos{Name: "TraceStep"}

// StepDetail describes a processed record and the totals after it.
type StepDetail struct {
	Step       uint64
	LineNumber int
	Record     Record
	Outcome    cache.Outcome
	Accesses   uint64
	Hits       uint64
}

// A Cache is what the runner drives.
type Cache interface {
	AccessAddress(addr addressing.Address) cache.Outcome
}

// SimResult holds the statistics of a run. HitHistory[i] and AccessHistory[i]
// are the cumulative totals after record i.
type SimResult struct {
	Hits          uint64
	Accesses      uint64
	HitHistory    []uint64
	AccessHistory []uint64
}

// Misses returns the number of accesses that missed.
func (r SimResult) Misses() uint64 {
	return r.Accesses - r.Hits
}

// HitRate returns hits over accesses, or 0 for an empty run.
func (r SimResult) HitRate() float64 {
	if r.Accesses == 0 {
		return 0
	}

	return float64(r.Hits) / float64(r.Accesses)
}

// A Runner replays a trace against a cache, one record at a time.
type Runner struct {
	*sim.HookableBase

	cache Cache
}

// NewRunner creates a runner that drives c.
func NewRunner(c Cache) *Runner {
	return &Runner{
		HookableBase: sim.NewHookableBase(),
		cache:        c,
	}
}

// Run processes every record of src in order. The first bad record aborts
// the run and no result is returned.
func (r *Runner) Run(src Source) (SimResult, error) {
	var result SimResult

	for {
		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		}

		if err != nil {
			return SimResult{}, fmt.Errorf("reading trace: %w", err)
		}

		record, err := ParseRecord(raw)
		if err != nil {
			return SimResult{}, &RecordError{
				LineNumber: raw.LineNumber,
				Text:       raw.Text,
				Err:        err,
			}
		}

		outcome := r.cache.AccessAddress(record.Address)

		result.Accesses++
		if outcome == cache.Hit {
			result.Hits++
		}

		result.AccessHistory = append(result.AccessHistory, result.Accesses)
		result.HitHistory = append(result.HitHistory, result.Hits)

		if r.NumHooks() > 0 {
			r.InvokeHook(sim.HookCtx{
				Domain: r,
				Pos:    HookPosStep,
				Item: StepDetail{
					Step:       result.Accesses,
					LineNumber: raw.LineNumber,
					Record:     record,
					Outcome:    outcome,
					Accesses:   result.Accesses,
					Hits:       result.Hits,
				},
			})
		}
	}
}
