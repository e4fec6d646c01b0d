// Package instance enforces that only one host shell runs per user and
// forwards activation signals to the instance that holds the lock.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/config"
	"github.com/deskmate-io/deskmate/internal/models"
)

// ErrAlreadyRunning is returned by Acquire when another live host instance
// holds the lock. The caller is expected to exit quietly with status 0.
var ErrAlreadyRunning = errors.New("another deskmate instance is already running")

const (
	dialTimeout    = 500 * time.Millisecond
	activateSignal = "activate"
)

// Guard holds the single-instance lock for this process.
type Guard struct {
	logger     zerolog.Logger
	listener   net.Listener
	onActivate func()
	done       chan struct{}
}

// Acquire takes the single-instance lock. If a live holder already exists,
// it forwards an activation signal to it and returns ErrAlreadyRunning.
// Stale records left by crashed instances are cleaned up and acquisition
// proceeds. onActivate is invoked whenever another launch attempt defers to
// this instance.
func Acquire(logger zerolog.Logger, onActivate func()) (*Guard, error) {
	info, err := config.LoadHostInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read host record: %w", err)
	}

	if info != nil {
		if forwardActivation(info.ActivationPort) {
			logger.Info().Int("pid", info.PID).Msg("existing instance activated, deferring")
			return nil, ErrAlreadyRunning
		}
		if processAlive(info.PID) {
			// Holder is alive but its activation listener is not answering
			// (likely still starting up). Defer to it rather than racing.
			logger.Info().Int("pid", info.PID).Msg("existing instance still starting, deferring")
			return nil, ErrAlreadyRunning
		}

		logger.Warn().Int("pid", info.PID).Msg("removing stale host record")
		_ = config.RemoveHostInfo()
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open activation listener: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	if err := config.SaveHostInfo(models.NewHostInfo(os.Getpid(), port)); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to write host record: %w", err)
	}

	g := &Guard{
		logger:     logger,
		listener:   listener,
		onActivate: onActivate,
		done:       make(chan struct{}),
	}
	go g.acceptLoop()

	logger.Debug().Int("activation_port", port).Msg("single-instance lock acquired")
	return g, nil
}

// Release drops the lock: closes the activation listener and removes the
// host record. Safe to call multiple times.
func (g *Guard) Release() {
	select {
	case <-g.done:
		return
	default:
	}
	close(g.done)

	_ = g.listener.Close()
	if err := config.RemoveHostInfo(); err != nil {
		g.logger.Warn().Err(err).Msg("failed to remove host record")
	}
}

// ActivationPort returns the loopback port second launches signal on.
func (g *Guard) ActivationPort() int {
	return g.listener.Addr().(*net.TCPAddr).Port
}

func (g *Guard) acceptLoop() {
	for {
		conn, err := g.listener.Accept()
		if err != nil {
			select {
			case <-g.done:
				return
			default:
			}
			g.logger.Warn().Err(err).Msg("activation listener accept failed")
			return
		}

		go g.handleConn(conn)
	}
}

func (g *Guard) handleConn(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(dialTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}

	if line == activateSignal+"\n" {
		g.logger.Info().Msg("activation signal received from second launch")
		if g.onActivate != nil {
			g.onActivate()
		}
		fmt.Fprintln(conn, "ok")
	}
}

// forwardActivation dials the recorded activation port and sends the
// activation signal. Returns true only if a live holder acknowledged it.
func forwardActivation(port int) bool {
	if port <= 0 {
		return false
	}

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), dialTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(dialTimeout))
	if _, err := fmt.Fprintln(conn, activateSignal); err != nil {
		return false
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && reply == "ok\n"
}

// processAlive reports whether a process with the given PID exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
