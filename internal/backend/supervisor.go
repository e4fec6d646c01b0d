// Package backend supervises the backend worker process: liveness probing,
// spawning, retry-polling, and termination.
package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/models"
)

const (
	// DefaultProbeTimeout bounds a single liveness probe.
	DefaultProbeTimeout = 1 * time.Second
	// DefaultPollInterval is the delay between probe attempts while polling.
	DefaultPollInterval = 1 * time.Second
	// DefaultMaxAttempts is the polling attempt budget after a spawn.
	DefaultMaxAttempts = 30
)

// Options configures a Supervisor. Prober and Launcher are swappable so
// tests can drive the state machine without processes or sockets.
type Options struct {
	BaseURL      string
	Prober       Prober
	Launcher     Launcher
	PollInterval time.Duration
	MaxAttempts  int
	Logger       zerolog.Logger
}

// NewFromSettings builds a production supervisor from host settings.
func NewFromSettings(settings *models.Settings, logger zerolog.Logger) *Supervisor {
	cfg := settings.Backend
	baseURL := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)

	return New(Options{
		BaseURL:      baseURL,
		Prober:       NewHTTPProber(baseURL, cfg.HealthPath, DefaultProbeTimeout),
		Launcher:     NewLauncher(cfg, settings.RunMode(), logger),
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
		Logger:       logger,
	})
}

// New creates a supervisor in StateNotStarted.
func New(opts Options) *Supervisor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	return &Supervisor{
		opts:   opts,
		logger: opts.Logger,
		state:  StateNotStarted,
		stopCh: make(chan struct{}),
	}
}

// Supervisor owns the backend worker's lifecycle. All state is guarded by
// mu; exactly one polling timer exists at any time and only the supervisor
// creates or cancels it.
type Supervisor struct {
	opts   Options
	logger zerolog.Logger

	mu       sync.Mutex
	state    State
	proc     Process // nil when the backend is external or not running
	external bool

	stopOnce sync.Once
	stopCh   chan struct{}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BaseURL returns the backend's base address. Valid once Start has
// returned successfully.
func (s *Supervisor) BaseURL() string {
	return s.opts.BaseURL
}

// OwnedPID returns the PID of the spawned backend process, or 0 when the
// backend is external or not running.
func (s *Supervisor) OwnedPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return 0
	}
	return s.proc.PID()
}

// External reports whether the supervisor attached to an already-running
// backend instead of spawning its own.
func (s *Supervisor) External() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.external
}

// Start brings the backend to Ready or fails trying. It first probes once:
// an already-healthy backend is attached without spawning anything.
// Otherwise it spawns the worker and polls the health endpoint on a fixed
// interval up to the attempt budget. Individual probe failures are silent;
// only a spawn error or budget exhaustion escalates.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("supervisor already started (state %s)", state)
	}
	s.setStateLocked(StateStarting)
	s.mu.Unlock()

	started := time.Now()

	// An existing backend (e.g. left over from an independent restart)
	// answers the first probe and is adopted without taking ownership.
	if err := s.probe(ctx); err == nil {
		s.mu.Lock()
		if s.state == StateStopped {
			// Stop raced the initial probe; its result is ignored.
			s.mu.Unlock()
			return ErrStopped
		}
		s.external = true
		s.setStateLocked(StateReady)
		s.mu.Unlock()
		s.logger.Info().Str("base_url", s.opts.BaseURL).Msg("attached to already-running backend")
		return nil
	}

	// Stop during the initial probe must not spawn anything.
	select {
	case <-s.stopCh:
		return ErrStopped
	default:
	}

	proc, err := s.opts.Launcher.Launch()
	if err != nil {
		s.fail()
		return &SpawnError{Err: err}
	}

	s.mu.Lock()
	if s.state == StateStopped {
		// Stop raced the spawn and saw no tracked process, so this one
		// is ours to terminate.
		s.mu.Unlock()
		proc.Terminate()
		return ErrStopped
	}
	s.proc = proc
	s.setStateLocked(StatePolling)
	s.mu.Unlock()

	// The only polling timer. First success cancels it via the deferred Stop.
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	attempts := 1 // the initial probe above
	for polled := 0; polled < s.opts.MaxAttempts; polled++ {
		select {
		case <-ctx.Done():
			s.fail()
			return ctx.Err()

		case <-s.stopCh:
			return ErrStopped

		case <-ticker.C:
			attempts++
			if err := s.probe(ctx); err != nil {
				s.logger.Debug().Int("attempt", attempts).Err(err).Msg("backend probe failed")
				continue
			}

			s.mu.Lock()
			if s.state == StateStopped {
				// Stop raced the successful probe; its result is ignored.
				s.mu.Unlock()
				return ErrStopped
			}
			s.setStateLocked(StateReady)
			s.mu.Unlock()

			s.logger.Info().
				Int("attempts", attempts).
				Dur("elapsed", time.Since(started)).
				Str("base_url", s.opts.BaseURL).
				Msg("backend ready")
			return nil
		}
	}

	s.fail()
	return &TimeoutError{Attempts: attempts, Elapsed: time.Since(started)}
}

// Stop terminates the backend if the supervisor owns it. Idempotent and
// never fails: with no tracked process (externally-owned backend, or never
// started) it is a no-op aside from the state transition.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	s.mu.Lock()
	proc := s.proc
	s.proc = nil
	s.setStateLocked(StateStopped)
	s.mu.Unlock()

	if proc == nil {
		return
	}

	s.logger.Info().Int("pid", proc.PID()).Msg("terminating backend process")
	proc.Terminate()
}

func (s *Supervisor) probe(ctx context.Context) error {
	return s.opts.Prober.Probe(ctx)
}

func (s *Supervisor) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	s.setStateLocked(StateFailed)
}

// setStateLocked advances the state machine. Callers hold mu.
func (s *Supervisor) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug().Str("from", s.state.String()).Str("to", next.String()).Msg("backend state")
	s.state = next
}
