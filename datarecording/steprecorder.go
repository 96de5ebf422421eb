package datarecording

import (
	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim"
)

// Table names used by the StepRecorder.
const (
	StepTable     = "trace_steps"
	EvictionTable = "evictions"
	RunTable      = "runs"
)

// StepEntry is one row of the trace_steps table.
type StepEntry struct {
	RunID      string
	Step       uint64
	LineNumber int
	Op         string
	Address    uint32
	Hit        bool
	Accesses   uint64
	Hits       uint64
}

// EvictionEntry is one row of the evictions table.
type EvictionEntry struct {
	RunID          string
	Tick           uint64
	SetIndex       uint32
	Tag            uint32
	VictimTag      uint32
	VictimBirth    uint64
	VictimLastUse  uint64
	VictimAccesses uint64
}

// RunEntry is one row of the runs table.
type RunEntry struct {
	RunID          string
	Name           string
	Geometry       string
	Policy         string
	NumSets        uint64
	LinesPerSet    uint64
	Accesses       uint64
	Hits           uint64
	HitRate        float64
	ReferencedSets int
}

// StepRecorder is a hook that records trace steps and cache evictions.
// Attach it to a trace.Runner and, for evictions, to the cache.Engine.
type StepRecorder struct {
	recorder DataRecorder
	runID    string
}

// NewStepRecorder creates a StepRecorder that writes with recorder. Each
// recorder gets a fresh run ID so that several runs can share a database.
func NewStepRecorder(recorder DataRecorder) *StepRecorder {
	r := &StepRecorder{
		recorder: recorder,
		runID:    xid.New().String(),
	}

	recorder.CreateTable(StepTable, StepEntry{})
	recorder.CreateTable(EvictionTable, EvictionEntry{})
	recorder.CreateTable(RunTable, RunEntry{})

	return r
}

// RunID returns the ID that tags every row written by this recorder.
func (r *StepRecorder) RunID() string {
	return r.runID
}

// Func records the hook item.
func (r *StepRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case trace.HookPosStep:
		r.recordStep(ctx.Item.(trace.StepDetail))
	case cache.HookPosAccess:
		r.recordAccess(ctx.Item.(cache.AccessDetail))
	}
}

func (r *StepRecorder) recordStep(step trace.StepDetail) {
	r.recorder.InsertData(StepTable, StepEntry{
		RunID:      r.runID,
		Step:       step.Step,
		LineNumber: step.LineNumber,
		Op:         step.Record.Op.String(),
		Address:    uint32(step.Record.Address),
		Hit:        step.Outcome == cache.Hit,
		Accesses:   step.Accesses,
		Hits:       step.Hits,
	})
}

func (r *StepRecorder) recordAccess(access cache.AccessDetail) {
	if !access.Evicted {
		return
	}

	r.recorder.InsertData(EvictionTable, EvictionEntry{
		RunID:          r.runID,
		Tick:           access.Tick,
		SetIndex:       access.SetIndex,
		Tag:            access.Tag,
		VictimTag:      access.Victim.Tag,
		VictimBirth:    access.Victim.BirthTick,
		VictimLastUse:  access.Victim.LastAccessTick,
		VictimAccesses: access.Victim.AccessCount,
	})
}

// RecordRun writes the summary of a finished run and flushes.
func (r *StepRecorder) RecordRun(engine *cache.Engine, result trace.SimResult) {
	g := engine.Geometry()

	r.recorder.InsertData(RunTable, RunEntry{
		RunID:          r.runID,
		Name:           engine.Name(),
		Geometry:       g.String(),
		Policy:         engine.Policy().String(),
		NumSets:        uint64(g.NumSets()),
		LinesPerSet:    uint64(g.LinesPerSet()),
		Accesses:       result.Accesses,
		Hits:           result.Hits,
		HitRate:        result.HitRate(),
		ReferencedSets: engine.NumReferencedSets(),
	})

	r.recorder.Flush()
}
