package instance

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/config"
	"github.com/deskmate-io/deskmate/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestAcquireAndRelease(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	g, err := Acquire(testLogger(), nil)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer g.Release()

	info, err := config.LoadHostInfo()
	if err != nil {
		t.Fatalf("LoadHostInfo() error = %v", err)
	}
	if info == nil {
		t.Fatal("host record not written after Acquire")
	}
	if info.ActivationPort != g.ActivationPort() {
		t.Errorf("host record port = %d, want %d", info.ActivationPort, g.ActivationPort())
	}

	g.Release()

	info, err = config.LoadHostInfo()
	if err != nil {
		t.Fatalf("LoadHostInfo() after Release error = %v", err)
	}
	if info != nil {
		t.Error("host record still present after Release")
	}

	// Release is idempotent.
	g.Release()
}

func TestSecondAcquireDefersAndActivates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	activated := make(chan struct{}, 1)
	first, err := Acquire(testLogger(), func() {
		activated <- struct{}{}
	})
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer first.Release()

	second, err := Acquire(testLogger(), nil)
	if second != nil {
		t.Fatal("second Acquire returned a guard while the lock is held")
	}
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Acquire() error = %v, want ErrAlreadyRunning", err)
	}

	select {
	case <-activated:
	case <-time.After(2 * time.Second):
		t.Fatal("first instance never received the activation signal")
	}
}

func TestAcquireRecoversFromStaleRecord(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// A record pointing at a dead pid and a dead port.
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to run helper process: %v", err)
	}
	stale := models.NewHostInfo(cmd.Process.Pid, 1)
	if err := config.SaveHostInfo(stale); err != nil {
		t.Fatalf("SaveHostInfo() error = %v", err)
	}

	g, err := Acquire(testLogger(), nil)
	if err != nil {
		t.Fatalf("Acquire() with stale record error = %v", err)
	}
	defer g.Release()

	info, err := config.LoadHostInfo()
	if err != nil {
		t.Fatalf("LoadHostInfo() error = %v", err)
	}
	if info == nil || info.PID == stale.PID {
		t.Error("stale host record was not replaced")
	}
}
