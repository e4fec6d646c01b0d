package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/deskmate-io/deskmate/internal/models"
)

type sampleRecord struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "record.yaml")

	in := sampleRecord{Name: "companion", Count: 3}
	if err := SaveYAML(path, &in); err != nil {
		t.Fatalf("SaveYAML() error = %v", err)
	}

	var out sampleRecord
	if err := LoadYAML(path, &out); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestSaveYAMLRestrictsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are POSIX-only")
	}

	path := filepath.Join(t.TempDir(), "record.yaml")
	if err := SaveYAML(path, &sampleRecord{Name: "x"}); err != nil {
		t.Fatalf("SaveYAML() error = %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if got := fi.Mode().Perm(); got != recordMode {
		t.Errorf("mode = %o, want %o", got, recordMode)
	}
}

func TestSaveYAMLReplacesWithoutLeavingTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")

	if err := SaveYAML(path, &sampleRecord{Name: "first", Count: 1}); err != nil {
		t.Fatalf("first SaveYAML() error = %v", err)
	}
	if err := SaveYAML(path, &sampleRecord{Name: "second", Count: 2}); err != nil {
		t.Fatalf("second SaveYAML() error = %v", err)
	}

	var out sampleRecord
	if err := LoadYAML(path, &out); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	if out.Name != "second" || out.Count != 2 {
		t.Errorf("record = %+v, want the second write", out)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only record.yaml", names)
	}
}

func TestBackendInfoRecordLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", t.TempDir())

	info, err := LoadBackendInfo()
	if err != nil {
		t.Fatalf("LoadBackendInfo() error = %v", err)
	}
	if info != nil {
		t.Fatalf("LoadBackendInfo() = %+v before any save, want nil", info)
	}

	saved := models.NewBackendInfo(12345, "http://127.0.0.1:43110")
	if err := SaveBackendInfo(saved); err != nil {
		t.Fatalf("SaveBackendInfo() error = %v", err)
	}

	loaded, err := LoadBackendInfo()
	if err != nil {
		t.Fatalf("LoadBackendInfo() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadBackendInfo() = nil after save")
	}
	if loaded.PID != 12345 || loaded.BaseURL != "http://127.0.0.1:43110" {
		t.Errorf("loaded = %+v, want pid 12345 at http://127.0.0.1:43110", loaded)
	}
	if loaded.StartedAt.After(time.Now().UTC()) {
		t.Errorf("StartedAt = %v is in the future", loaded.StartedAt)
	}

	if err := RemoveBackendInfo(); err != nil {
		t.Fatalf("RemoveBackendInfo() error = %v", err)
	}
	if err := RemoveBackendInfo(); err != nil {
		t.Fatalf("second RemoveBackendInfo() error = %v", err)
	}
	info, err = LoadBackendInfo()
	if err != nil {
		t.Fatalf("LoadBackendInfo() after remove error = %v", err)
	}
	if info != nil {
		t.Errorf("LoadBackendInfo() = %+v after remove, want nil", info)
	}
}
