package trace

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/cachesim/sim"
)

// StepLogger logs every processed record at debug level.
type StepLogger struct {
	sim.LogHookBase
}

// NewStepLogger creates a StepLogger writing to logger.
func NewStepLogger(logger *logrus.Logger) *StepLogger {
	return &StepLogger{
		LogHookBase: sim.LogHookBase{Logger: logger},
	}
}

// Func logs the step.
func (h *StepLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosStep {
		return
	}

	step := ctx.Item.(StepDetail)

	h.WithFields(logrus.Fields{
		"step":     step.Step,
		"line":     step.LineNumber,
		"op":       step.Record.Op.String(),
		"address":  step.Record.Address.String(),
		"outcome":  step.Outcome.String(),
		"hits":     step.Hits,
		"accesses": step.Accesses,
	}).Debug("trace step")
}
