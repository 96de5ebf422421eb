// Package monitoring turns a running simulation into a small web server so
// that its progress and results can be watched from a browser.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring/web"
	"github.com/sarchlab/cachesim/sim"
)

// ErrServerStarted is returned when StartServer is called twice.
var ErrServerStarted = errors.New("monitoring server already started")

// Monitor serves the progress of a simulation over HTTP. It is a hook that
// should be attached to the trace runner.
type Monitor struct {
	logger          *logrus.Logger
	engine          *cache.Engine
	portNumber      int
	profileDuration time.Duration

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	stepBar          *ProgressBar

	lock          sync.RWMutex
	hitHistory    []uint64
	accessHistory []uint64
	finished      bool

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		logger:          logrus.StandardLogger(),
		profileDuration: time.Second,
	}
}

// WithLogger sets the logger that reports server problems.
func (m *Monitor) WithLogger(logger *logrus.Logger) *Monitor {
	m.logger = logger
	return m
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Warnf("Port number %d is assigned to the monitoring server, "+
			"which is not allowed. Using a random port instead.", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the cache whose state is served once the run
// finishes.
func (m *Monitor) RegisterEngine(e *cache.Engine) {
	m.engine = e
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)
	if m.stepBar == nil {
		m.stepBar = bar
	}

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars

	if m.stepBar == pb {
		m.stepBar = nil
	}
}

// Func records the totals after each trace step and advances the first
// progress bar.
func (m *Monitor) Func(ctx sim.HookCtx) {
	if ctx.Pos != trace.HookPosStep {
		return
	}

	step := ctx.Item.(trace.StepDetail)

	m.lock.Lock()
	m.hitHistory = append(m.hitHistory, step.Hits)
	m.accessHistory = append(m.accessHistory, step.Accesses)
	m.lock.Unlock()

	m.progressBarsLock.Lock()
	bar := m.stepBar
	m.progressBarsLock.Unlock()

	if bar != nil {
		bar.IncrementFinished(1)
	}
}

// Finish marks the run as completed. The history is replaced with the final
// result so that the server reports exactly what the run returned.
func (m *Monitor) Finish(result trace.SimResult) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.hitHistory = append([]uint64(nil), result.HitHistory...)
	m.accessHistory = append([]uint64(nil), result.AccessHistory...)
	m.finished = true
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	if m.server != nil {
		return "", ErrServerStarted
	}

	r := mux.NewRouter()

	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/result", m.reportResult)
	r.HandleFunc("/api/history", m.reportHistory)
	r.HandleFunc("/api/engine", m.serializeEngine)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("starting monitoring server: %w", err)
	}

	m.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.WithError(err).Error("monitoring server stopped")
		}
	}()

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	return url, nil
}

// Close stops the web server. It is safe to call on a nil Monitor.
func (m *Monitor) Close() error {
	if m == nil || m.server == nil {
		return nil
	}

	err := m.server.Close()
	m.server = nil

	return err
}

// OpenInBrowser opens url with the default browser of the system.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resultRsp struct {
	Accesses uint64  `json:"accesses"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
	Finished bool    `json:"finished"`
}

func (m *Monitor) reportResult(w http.ResponseWriter, _ *http.Request) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	rsp := resultRsp{Finished: m.finished}

	if n := len(m.accessHistory); n > 0 {
		rsp.Accesses = m.accessHistory[n-1]
		rsp.Hits = m.hitHistory[n-1]
		rsp.Misses = rsp.Accesses - rsp.Hits
		rsp.HitRate = float64(rsp.Hits) / float64(rsp.Accesses)
	}

	m.writeJSON(w, rsp)
}

type historyRsp struct {
	From          int      `json:"from"`
	HitHistory    []uint64 `json:"hit_history"`
	AccessHistory []uint64 `json:"access_history"`
}

func (m *Monitor) reportHistory(w http.ResponseWriter, r *http.Request) {
	from := 0

	if s := r.URL.Query().Get("from"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Error: invalid from %q", s)

			return
		}

		from = n
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	if from > len(m.accessHistory) {
		from = len(m.accessHistory)
	}

	m.writeJSON(w, historyRsp{
		From:          from,
		HitHistory:    m.hitHistory[from:],
		AccessHistory: m.accessHistory[from:],
	})
}

func (m *Monitor) serializeEngine(w http.ResponseWriter, _ *http.Request) {
	m.lock.RLock()
	finished := m.finished
	m.lock.RUnlock()

	if m.engine == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("No engine registered"))
		m.dieOnErr(err)

		return
	}

	if !finished {
		w.WriteHeader(http.StatusConflict)
		_, err := w.Write([]byte("Simulation still running"))
		m.dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.engine)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)
	m.dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	m.dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	m.dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	m.dieOnErr(err)

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	m.dieOnErr(err)

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	m.dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	m.dieOnErr(err)
}

func (m *Monitor) dieOnErr(err error) {
	if err != nil {
		m.logger.Panic(err)
	}
}
