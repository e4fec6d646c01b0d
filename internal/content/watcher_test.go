package content

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatcherBatchesChanges(t *testing.T) {
	dir := t.TempDir()

	var (
		mu      sync.Mutex
		batches [][]string
	)
	w := NewAssetWatcher(dir, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher a moment to establish before writing.
	time.Sleep(100 * time.Millisecond)

	for _, name := range []string{"a.js", "b.css", "a.js"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(batches)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) == 0 {
		t.Fatal("no change batch delivered")
	}
	seen := map[string]bool{}
	for _, p := range batches[0] {
		if seen[filepath.Base(p)] {
			t.Errorf("duplicate path in batch: %s", p)
		}
		seen[filepath.Base(p)] = true
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
