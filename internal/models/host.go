package models

import "time"

// HostInfo records the running host instance.
// This corresponds to ~/.deskmate/host.yaml and backs the single-instance guard.
type HostInfo struct {
	Version        int       `yaml:"version"`
	PID            int       `yaml:"pid"`
	ActivationPort int       `yaml:"activation_port"`
	StartedAt      time.Time `yaml:"started_at"`
}

// NewHostInfo creates host info for the current instance.
func NewHostInfo(pid, activationPort int) *HostInfo {
	return &HostInfo{
		Version:        1,
		PID:            pid,
		ActivationPort: activationPort,
		StartedAt:      time.Now().UTC(),
	}
}

// BackendInfo records a backend worker started by "deskmate backend start"
// so a later stop or status call can find it.
// This corresponds to ~/.deskmate/backend.yaml.
type BackendInfo struct {
	Version   int       `yaml:"version"`
	PID       int       `yaml:"pid"`
	BaseURL   string    `yaml:"base_url"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewBackendInfo creates a record for a backend started on this machine.
func NewBackendInfo(pid int, baseURL string) *BackendInfo {
	return &BackendInfo{
		Version:   1,
		PID:       pid,
		BaseURL:   baseURL,
		StartedAt: time.Now().UTC(),
	}
}
