package tray

import (
	"github.com/getlantern/systray"
)

var (
	state   HostState
	actions Actions
	onStart func()
	onExit  func()

	statusItem    *systray.MenuItem
	dashboardItem *systray.MenuItem
	overlayItem   *systray.MenuItem
	pauseItem     *systray.MenuItem
	quitItem      *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start host services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s HostState, a Actions, onStartFn, onExitFn func()) {
	state = s
	actions = a
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

// SetBackendState updates the backend status line in the menu.
func SetBackendState(label string) {
	if statusItem != nil {
		statusItem.SetTitle("Backend: " + label)
	}
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip("Deskmate")

	header := systray.AddMenuItem("Deskmate", "")
	header.Disable()

	statusItem = systray.AddMenuItem("Backend: starting...", "")
	statusItem.Disable()

	systray.AddSeparator()

	dashboardItem = systray.AddMenuItem("Show Dashboard", "Open the Deskmate dashboard")
	overlayItem = systray.AddMenuItem("Toggle Companion", "Show or hide the companion overlay")
	pauseItem = systray.AddMenuItemCheckbox("Pause Companion", "Suspend companion activity", false)

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Quit", "Shut down Deskmate")

	if onStart != nil {
		onStart()
	}

	if state != nil {
		SetBackendState(state.BackendState())
		if state.Paused() {
			pauseItem.Check()
		}
	}

	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-dashboardItem.ClickedCh:
			if actions.ShowDashboard != nil {
				go actions.ShowDashboard()
			}

		case <-overlayItem.ClickedCh:
			if actions.ToggleOverlay != nil {
				go actions.ToggleOverlay()
			}

		case <-pauseItem.ClickedCh:
			paused := !pauseItem.Checked()
			if paused {
				pauseItem.Check()
			} else {
				pauseItem.Uncheck()
			}
			if actions.SetPaused != nil {
				go actions.SetPaused(paused)
			}

		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}
