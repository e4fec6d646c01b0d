// Package tray implements the system tray icon and menu for the host.
package tray

// HostState provides read-only access to host state for the tray.
type HostState interface {
	BackendState() string
	Paused() bool
	RequestShutdown()
}

// Actions are the host capabilities the tray menu drives.
type Actions struct {
	ShowDashboard func()
	ToggleOverlay func()
	SetPaused     func(paused bool)
}
