package backend

import (
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"
)

func TestPIDAliveForOwnProcess(t *testing.T) {
	if !PIDAlive(os.Getpid()) {
		t.Error("PIDAlive(own pid) = false")
	}
	if PIDAlive(0) {
		t.Error("PIDAlive(0) = true")
	}
	if PIDAlive(-1) {
		t.Error("PIDAlive(-1) = true")
	}
}

func TestTerminatePIDStopsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX signal delivery")
	}

	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start helper process: %v", err)
	}
	pid := cmd.Process.Pid
	reaped := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(reaped)
	}()
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	if !PIDAlive(pid) {
		t.Fatalf("helper process %d not alive after start", pid)
	}

	if err := TerminatePID(pid, 5*time.Second); err != nil {
		t.Fatalf("TerminatePID() error = %v", err)
	}

	select {
	case <-reaped:
	case <-time.After(5 * time.Second):
		t.Fatal("helper process did not exit after TerminatePID")
	}
	if PIDAlive(pid) {
		t.Errorf("process %d still alive after TerminatePID", pid)
	}
}
