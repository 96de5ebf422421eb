package sim

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogHookBase provides the common logic for hooks that record information
// from the simulation into a log.
type LogHookBase struct {
	*logrus.Logger
}

// NewLogger creates the logger used by the command line tools. The level is
// one of the logrus level names (e.g., "info", "debug").
func NewLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	return logger, nil
}
