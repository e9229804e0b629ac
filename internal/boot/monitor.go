package boot

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"omnisearch/internal/api"
)

const (
	defaultProgressInterval = 500 * time.Millisecond
	defaultPollInterval     = 5 * time.Second
	defaultProgressCap      = 90
)

// Status is the server state as seen by the client
type Status int

const (
	Checking Status = iota
	Booting
	Online
)

func (s Status) String() string {
	switch s {
	case Checking:
		return "checking"
	case Booting:
		return "booting"
	case Online:
		return "online"
	default:
		return "unknown"
	}
}

// HealthChecker is implemented by api.Client
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Config tunes the two tickers
type Config struct {
	ProgressInterval time.Duration
	ProgressStep     int
	ProgressCap      int
	PollInterval     time.Duration
}

// Snapshot is a point-in-time view of the monitor
type Snapshot struct {
	Status   Status
	Progress int
}

// Monitor polls the health endpoint until the server answers and drives a
// simulated progress value in the meantime. Online is terminal.
type Monitor struct {
	mu       sync.Mutex
	checker  HealthChecker
	cfg      Config
	logger   *log.Logger
	status   Status
	progress int
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	updates  chan Snapshot
	online   chan struct{}
}

// NewMonitor creates a monitor in the checking state. Zero config values
// fall back to defaults.
func NewMonitor(checker HealthChecker, cfg Config, logger *log.Logger) *Monitor {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = defaultProgressInterval
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ProgressStep < 1 {
		cfg.ProgressStep = 1
	}
	if cfg.ProgressCap <= 0 || cfg.ProgressCap >= 100 {
		cfg.ProgressCap = defaultProgressCap
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Monitor{
		checker: checker,
		cfg:     cfg,
		logger:  logger,
		status:  Checking,
		updates: make(chan Snapshot, 1),
		online:  make(chan struct{}),
	}
}

// Start launches the progress and poll tickers and fires one health check
// right away. It is a no-op when already running or online.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running || m.status == Online {
		return
	}

	tickCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(2)
	go m.progressLoop(tickCtx)
	go m.pollLoop(tickCtx)

	m.logger.Printf("Boot monitor started: poll every %v, progress every %v",
		m.cfg.PollInterval, m.cfg.ProgressInterval)
}

// Stop cancels both tickers and waits for them to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopLocked()
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Monitor) stopLocked() {
	if !m.running {
		return
	}
	m.running = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Check runs a single health request and applies its outcome. A
// cancelled ctx leaves the state untouched.
func (m *Monitor) Check(ctx context.Context) Status {
	err := m.checker.Health(ctx)

	switch {
	case err == nil:
		m.MarkOnline()
	case ctx.Err() != nil:
		// torn down while the request was in flight
	case errors.Is(err, api.ErrNotReady):
		m.logger.Printf("Boot monitor: server not ready: %v", err)
	default:
		m.mu.Lock()
		if m.status != Online && m.status != Booting {
			m.status = Booting
			m.logger.Printf("Boot monitor: health check failed, server booting: %v", err)
			m.publishLocked()
		}
		m.mu.Unlock()
	}

	return m.Status()
}

// MarkOnline forces the online state: progress snaps to 100 and both
// tickers are cancelled.
func (m *Monitor) MarkOnline() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == Online {
		return
	}
	m.status = Online
	m.progress = 100
	m.stopLocked()
	close(m.online)
	m.logger.Println("Boot monitor: server online")
	m.publishLocked()
}

func (m *Monitor) tickProgress() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == Online || m.progress >= m.cfg.ProgressCap {
		return
	}
	m.progress += m.cfg.ProgressStep
	if m.progress > m.cfg.ProgressCap {
		m.progress = m.cfg.ProgressCap
	}
	m.publishLocked()
}

func (m *Monitor) progressLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tickProgress()
		}
	}
}

func (m *Monitor) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	m.Check(ctx)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// publishLocked replaces any unread snapshot with the current one
func (m *Monitor) publishLocked() {
	s := Snapshot{Status: m.status, Progress: m.progress}
	select {
	case <-m.updates:
	default:
	}
	select {
	case m.updates <- s:
	default:
	}
}

// Updates delivers the latest snapshot after every change. Unread
// snapshots are overwritten by newer ones.
func (m *Monitor) Updates() <-chan Snapshot {
	return m.updates
}

// Wait blocks until the server is online or ctx is done
func (m *Monitor) Wait(ctx context.Context) error {
	select {
	case <-m.online:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current server status
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Progress returns the current progress value, 0..100
func (m *Monitor) Progress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Snapshot returns status and progress together
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Status: m.status, Progress: m.progress}
}

// Online reports whether search is allowed
func (m *Monitor) Online() bool {
	return m.Status() == Online
}

// IsRunning reports whether the tickers are active
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
