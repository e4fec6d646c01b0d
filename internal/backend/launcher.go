package backend

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/models"
)

// Process is a handle to a spawned backend worker.
type Process interface {
	PID() int
	// Terminate requests shutdown: SIGTERM, 5s grace, then SIGKILL.
	Terminate()
	// Done is closed when the process exits.
	Done() <-chan struct{}
}

// Launcher spawns the backend worker process.
type Launcher interface {
	Launch() (Process, error)
}

// execLauncher is the production launcher. The command descriptor depends
// on the run mode: dev runs the interpreter with the backend module,
// packaged runs the bundled executable.
type execLauncher struct {
	cfg    models.BackendConfig
	mode   models.RunMode
	logger zerolog.Logger
}

// NewLauncher creates the production launcher for the given run mode.
func NewLauncher(cfg models.BackendConfig, mode models.RunMode, logger zerolog.Logger) Launcher {
	return &execLauncher{cfg: cfg, mode: mode, logger: logger}
}

func (l *execLauncher) Launch() (Process, error) {
	cmd, err := l.command()
	if err != nil {
		return nil, err
	}

	cmd.Env = append(os.Environ(), fmt.Sprintf("PORT=%d", l.cfg.Port))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{
		cmd:  cmd,
		done: make(chan struct{}),
	}

	go forwardOutput(stdout, l.logger, "stdout")
	go forwardOutput(stderr, l.logger, "stderr")
	go func() {
		p.exitErr = cmd.Wait()
		close(p.done)
	}()

	l.logger.Info().Int("pid", cmd.Process.Pid).Str("mode", string(l.mode)).Msg("backend process spawned")
	return p, nil
}

func (l *execLauncher) command() (*exec.Cmd, error) {
	switch l.mode {
	case models.RunModeDev:
		cmd := exec.Command(l.cfg.Interpreter, "-m", l.cfg.Module)
		cmd.Dir = l.cfg.WorkingDir
		return cmd, nil

	default:
		path := l.cfg.Executable
		if path == "" {
			exe, err := os.Executable()
			if err != nil {
				return nil, fmt.Errorf("failed to locate host binary: %w", err)
			}
			path = filepath.Join(filepath.Dir(exe), "deskmate-backend")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("backend executable %s: %w", path, err)
		}
		return exec.Command(path), nil
	}
}

// forwardOutput streams a backend output pipe into the host log.
func forwardOutput(r io.Reader, logger zerolog.Logger, stream string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		logger.Debug().Str("stream", stream).Msg(scanner.Text())
	}
}

type execProcess struct {
	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func (p *execProcess) Terminate() {
	if p.cmd.Process == nil {
		return
	}

	_ = p.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-p.done:
		return
	case <-time.After(5 * time.Second):
	}

	_ = p.cmd.Process.Kill()
	<-p.done
}
