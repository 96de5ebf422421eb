package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <trace>",
		Short: "Replay a trace file and print the cache statistics.",
		Long: "Replay a trace file and print the cache statistics. Each " +
			"non-blank line of the trace is `<op> <address>`, where op is " +
			"l (load) or s (store) and the address is 32-bit hexadecimal.",
		Args: cobra.ExactArgs(1),
		RunE: runTrace,
	}

	addConfigFlags(runCmd)

	f := runCmd.Flags()
	f.String("record-db", "",
		"Record every step into <name>.sqlite3.")
	f.Bool("monitor", false, "Serve the progress over HTTP.")
	f.Int("monitor-port", 0, "Port of the monitoring server, random if 0.")
	f.Bool("open-browser", false, "Open the monitoring page in a browser.")
	f.Bool("hold", false,
		"Keep the monitoring server up after the run until interrupted.")

	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

type runSession struct {
	logger   *logrus.Logger
	engine   *cache.Engine
	runner   *trace.Runner
	recorder datarecording.DataRecorder
	steps    *datarecording.StepRecorder
	monitor  *monitoring.Monitor
}

func runTrace(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")

	logger, err := sim.NewLogger(level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	g, policy, err := config.Resolve(cfg)
	if err != nil {
		return err
	}

	src, err := openTrace(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	s := &runSession{logger: logger}
	s.engine = cache.MakeBuilder().
		WithGeometry(g).
		WithReplacementPolicy(policy).
		Build("Cache")
	s.runner = trace.NewRunner(s.engine)

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		s.runner.AcceptHook(trace.NewStepLogger(logger))
	}

	err = s.attachRecorder(cmd)
	if err != nil {
		return err
	}
	defer s.closeRecorder()

	err = s.attachMonitor(cmd)
	if err != nil {
		return err
	}
	defer s.monitor.Close()

	logger.WithFields(logrus.Fields{
		"trace":    src.Name(),
		"geometry": g.String(),
		"policy":   policy.String(),
	}).Info("simulation started")

	result, err := s.runner.Run(src)
	if err != nil {
		return err
	}

	s.finish(result)

	err = printSummary(cmd.OutOrStdout(), s.engine, result)
	if err != nil {
		return err
	}

	if hold, _ := cmd.Flags().GetBool("hold"); hold && s.monitor != nil {
		logger.Info("run finished, press Ctrl+C to stop the monitor")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		<-ctx.Done()
	}

	return nil
}

func openTrace(path string) (*trace.FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fs := osfs.New(filepath.Dir(abs))

	src, err := trace.OpenFileSource(fs, filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}

	return src, nil
}

func (s *runSession) attachRecorder(cmd *cobra.Command) error {
	name, _ := cmd.Flags().GetString("record-db")
	if name == "" {
		return nil
	}

	recorder, err := datarecording.New(name)
	if err != nil {
		return err
	}

	s.recorder = recorder
	s.steps = datarecording.NewStepRecorder(s.recorder)

	s.runner.AcceptHook(s.steps)
	s.engine.AcceptHook(s.steps)

	s.logger.WithField("run_id", s.steps.RunID()).
		Infof("recording into %s.sqlite3", name)

	return nil
}

func (s *runSession) attachMonitor(cmd *cobra.Command) error {
	enabled, _ := cmd.Flags().GetBool("monitor")
	if !enabled {
		return nil
	}

	port, _ := cmd.Flags().GetInt("monitor-port")

	s.monitor = monitoring.NewMonitor().
		WithLogger(s.logger).
		WithPortNumber(port)
	s.monitor.RegisterEngine(s.engine)
	s.monitor.CreateProgressBar("trace", 0)
	s.runner.AcceptHook(s.monitor)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.logger.Infof("monitoring simulation with %s", url)

	if open, _ := cmd.Flags().GetBool("open-browser"); open {
		err = monitoring.OpenInBrowser(url)
		if err != nil {
			s.logger.WithError(err).Warn("cannot open browser")
		}
	}

	return nil
}

func (s *runSession) finish(result trace.SimResult) {
	if s.monitor != nil {
		s.monitor.Finish(result)
	}

	if s.steps != nil {
		s.steps.RecordRun(s.engine, result)
	}
}

func (s *runSession) closeRecorder() {
	if s.recorder == nil {
		return
	}

	err := s.recorder.Close()
	if err != nil {
		s.logger.WithError(err).Error("closing recording")
	}
}

func printSummary(
	w io.Writer,
	engine *cache.Engine,
	result trace.SimResult,
) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Cache:\t%s\n", engine.Geometry())
	fmt.Fprintf(tw, "Policy:\t%s\n", engine.Policy())
	fmt.Fprintf(tw, "Accesses:\t%d\n", result.Accesses)
	fmt.Fprintf(tw, "Hits:\t%d\n", result.Hits)
	fmt.Fprintf(tw, "Misses:\t%d\n", result.Misses())
	fmt.Fprintf(tw, "Hit rate:\t%.2f%%\n", 100*result.HitRate())

	return tw.Flush()
}
