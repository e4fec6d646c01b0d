package models

import "time"

// RunMode selects how the host locates UI assets and the backend worker.
type RunMode string

const (
	// RunModeDev runs against a frontend dev server and an interpreter-launched backend.
	RunModeDev RunMode = "dev"
	// RunModePackaged runs against bundled assets and a packaged backend executable.
	RunModePackaged RunMode = "packaged"
)

// BackendConfig describes where the backend worker lives and how to launch it.
type BackendConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	HealthPath string `yaml:"health_path"`

	// Dev mode: interpreter + module (e.g. python3 -m backend.main).
	Interpreter string `yaml:"interpreter"`
	Module      string `yaml:"module"`
	WorkingDir  string `yaml:"working_dir"`

	// Packaged mode: absolute path, or empty to look next to the host binary.
	Executable string `yaml:"executable"`
}

// WindowsConfig holds window behavior settings.
type WindowsConfig struct {
	OpenDashboardOnStart bool `yaml:"open_dashboard_on_start"`
}

// ShortcutBinding maps an accelerator string to a named host action.
type ShortcutBinding struct {
	Accelerator string `yaml:"accelerator"`
	Action      string `yaml:"action"`
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	CheckOnStartup bool       `yaml:"check_on_startup"`
	LastChecked    *time.Time `yaml:"last_checked,omitempty"`
}

// DevConfig holds development-mode settings.
type DevConfig struct {
	// ServerURL is the frontend dev server (Vite). Non-empty selects dev run mode.
	ServerURL string `yaml:"server_url,omitempty"`
	// AssetsDir is watched for changes to push reloads to open surfaces.
	AssetsDir string `yaml:"assets_dir,omitempty"`
}

// Settings represents global host settings.
// This corresponds to ~/.deskmate/settings.yaml.
type Settings struct {
	Version   int               `yaml:"version"`
	Backend   BackendConfig     `yaml:"backend"`
	Windows   WindowsConfig     `yaml:"windows"`
	Shortcuts []ShortcutBinding `yaml:"shortcuts"`
	Updates   UpdatesConfig     `yaml:"updates"`
	Dev       DevConfig         `yaml:"dev"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Backend: BackendConfig{
			Host:        "127.0.0.1",
			Port:        43110,
			HealthPath:  "/health",
			Interpreter: "python3",
			Module:      "backend.main",
		},
		Windows: WindowsConfig{
			OpenDashboardOnStart: false,
		},
		Shortcuts: []ShortcutBinding{
			{Accelerator: "Ctrl+Shift+Space", Action: "toggle-overlay"},
			{Accelerator: "Ctrl+Shift+D", Action: "show-dashboard"},
		},
		Updates: UpdatesConfig{
			CheckOnStartup: true,
		},
	}
}

// RunMode returns the effective run mode for these settings.
func (s *Settings) RunMode() RunMode {
	if s.Dev.ServerURL != "" {
		return RunModeDev
	}
	return RunModePackaged
}
