// Package lifecycle wires the host together: single-instance guard, backend
// supervisor, content server, gateway, surfaces, tray, and shortcuts, with
// one ordered startup path and one ordered shutdown path.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/backend"
	"github.com/deskmate-io/deskmate/internal/config"
	"github.com/deskmate-io/deskmate/internal/content"
	"github.com/deskmate-io/deskmate/internal/gateway"
	"github.com/deskmate-io/deskmate/internal/instance"
	"github.com/deskmate-io/deskmate/internal/logging"
	"github.com/deskmate-io/deskmate/internal/models"
	"github.com/deskmate-io/deskmate/internal/shortcuts"
	"github.com/deskmate-io/deskmate/internal/surfaces"
	"github.com/deskmate-io/deskmate/internal/tray"
	"github.com/deskmate-io/deskmate/internal/updater"
)

const shutdownTimeout = 5 * time.Second

// errNotReady answers surface and tray calls that land before the
// corresponding service has been published by startServices.
var errNotReady = errors.New("host services are still starting")

// Coordinator owns startup and shutdown ordering. It is also the gateway's
// HostOps implementation: every privileged surface call lands here.
type Coordinator struct {
	logger   zerolog.Logger
	settings *models.Settings

	guard *instance.Guard

	cancelCtx context.Context
	cancel    context.CancelFunc

	// mu guards the service handles, which are published one at a time
	// from startServices while the tray and activation callbacks may
	// already be firing, plus the pause and overlay flags.
	mu            sync.Mutex
	supervisor    *backend.Supervisor
	gw            *gateway.Gateway
	server        *content.Server
	windows       *surfaces.Manager
	keys          *shortcuts.Controller
	paused        bool
	overlayHidden bool

	exitMu   sync.Mutex
	exitCode int
}

// Run executes the host until quit. The returned code is the process exit
// status: 0 for a clean run or a deferred second launch, non-zero when
// startup failed.
func Run(settings *models.Settings, logger zerolog.Logger) int {
	c := &Coordinator{
		logger:   logger,
		settings: settings,
	}
	c.cancelCtx, c.cancel = context.WithCancel(context.Background())

	// Single-instance gate comes first: a second launch activates the
	// holder's dashboard and exits cleanly.
	guard, err := instance.Acquire(logging.ForComponent(logger, "instance"), c.onActivate)
	if errors.Is(err, instance.ErrAlreadyRunning) {
		logger.Info().Msg("deferring to running instance")
		return 0
	}
	if err != nil {
		c.fatal("Deskmate could not start", err)
		return 1
	}
	c.guard = guard

	// SIGINT/SIGTERM quit the same way the tray menu does.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
			c.requestExit(0)
		case <-c.cancelCtx.Done():
		}
	}()

	// The tray owns the main goroutine; everything else starts from its
	// ready callback and is torn down from its exit callback.
	tray.Run(c, tray.Actions{
		ShowDashboard: func() { _ = c.ShowPrimary() },
		ToggleOverlay: c.toggleOverlay,
		SetPaused:     c.SetPaused,
	}, func() {
		go c.startServices()
	}, c.shutdown)

	return c.readExitCode()
}

// startServices is the ordered startup path. Any failure here is fatal:
// the error is surfaced in a native dialog and the host exits non-zero.
func (c *Coordinator) startServices() {
	// Backend first. A UI without its worker is useless, so this failure
	// mode is terminal rather than degraded.
	sup := backend.NewFromSettings(c.settings, logging.ForComponent(c.logger, "backend"))
	c.mu.Lock()
	c.supervisor = sup
	c.mu.Unlock()
	if err := sup.Start(c.cancelCtx); err != nil {
		c.fatal("The Deskmate backend failed to start", err)
		c.requestExit(1)
		return
	}
	tray.SetBackendState(sup.State().String())

	// Gateway: register the full channel surface, then freeze before any
	// surface can connect.
	gw := gateway.New(logging.ForComponent(c.logger, "gateway"))
	gateway.RegisterHostChannels(gw, c, NewDialogs(), logging.ForComponent(c.logger, "gateway"))
	gw.Freeze()
	gw.SetDisconnectHandler(c.onSurfaceDisconnect)
	c.mu.Lock()
	c.gw = gw
	c.mu.Unlock()

	// Content server carries both surface assets and the gateway socket.
	server := content.NewServer(c.settings, gw.Handler(), logging.ForComponent(c.logger, "content"))
	if err := server.Start(); err != nil {
		c.fatal("Deskmate could not start its content server", err)
		c.requestExit(1)
		return
	}
	c.mu.Lock()
	c.server = server
	c.mu.Unlock()

	windows := surfaces.NewManager(
		surfaces.NewAppOpener(profileDir(), logging.ForComponent(c.logger, "surfaces")),
		server.URLFor,
		logging.ForComponent(c.logger, "surfaces"),
	)
	c.mu.Lock()
	c.windows = windows
	c.mu.Unlock()

	// The overlay is the product; it always comes up. The dashboard only
	// opens when configured to.
	if err := c.ShowOverlay(); err != nil {
		c.logger.Error().Err(err).Msg("failed to open overlay surface")
	}
	if c.settings.Windows.OpenDashboardOnStart || c.settings.RunMode() == models.RunModeDev {
		if err := c.ShowPrimary(); err != nil {
			c.logger.Error().Err(err).Msg("failed to open dashboard surface")
		}
	}

	// Shortcuts bind last; a grabbed chord degrades, never aborts.
	keys := shortcuts.NewController(
		shortcuts.NewSystemRegistrar(logging.ForComponent(c.logger, "shortcuts")),
		logging.ForComponent(c.logger, "shortcuts"),
	)
	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()
	failed := keys.Bind(c.settings.Shortcuts, map[string]func(){
		"toggle-overlay": c.toggleOverlay,
		"show-dashboard": func() { _ = c.ShowPrimary() },
	})
	if len(failed) > 0 {
		c.logger.Warn().Strs("accelerators", failed).Msg("some shortcuts could not be bound")
	}

	if c.settings.Dev.AssetsDir != "" && c.settings.RunMode() == models.RunModeDev {
		watcher := content.NewAssetWatcher(c.settings.Dev.AssetsDir, c.onAssetsChanged, logging.ForComponent(c.logger, "content"))
		go func() {
			if err := watcher.Run(c.cancelCtx); err != nil {
				c.logger.Warn().Err(err).Msg("asset watcher stopped")
			}
		}()
	}

	if c.settings.Updates.CheckOnStartup {
		go c.checkForUpdates()
	}

	c.logger.Info().Str("content", server.BaseURL()).Str("backend", sup.BaseURL()).Msg("deskmate ready")
}

// services returns the published handles. Any of them may still be nil
// while startServices is running.
func (c *Coordinator) services() (*backend.Supervisor, *gateway.Gateway, *content.Server, *surfaces.Manager, *shortcuts.Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supervisor, c.gw, c.server, c.windows, c.keys
}

// shutdown is the ordered teardown path, invoked once when the tray exits.
func (c *Coordinator) shutdown() {
	c.logger.Info().Msg("shutting down")
	c.cancel()

	sup, _, server, windows, keys := c.services()
	if keys != nil {
		keys.UnregisterAll()
	}
	if windows != nil {
		windows.CloseAll()
	}
	if sup != nil {
		sup.Stop()
	}
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = server.Shutdown(ctx)
		cancel()
	}
	if c.guard != nil {
		c.guard.Release()
	}
}

// onActivate handles a second launch deferring to us: surface the dashboard.
func (c *Coordinator) onActivate() {
	if err := c.ShowPrimary(); err != nil {
		c.logger.Warn().Err(err).Msg("activation could not raise dashboard")
		return
	}
	// An already-open dashboard routes home instead of being recreated.
	_, gw, _, _, _ := c.services()
	if gw != nil {
		_ = gw.Broadcast(gateway.EventNavigateTo, "/")
	}
}

// onSurfaceDisconnect clears the window handle when a surface's gateway
// socket drops; the window is gone or unusable either way.
func (c *Coordinator) onSurfaceDisconnect(surface string) {
	kind := surfaces.Kind(surface)
	_, _, _, windows, _ := c.services()
	if windows == nil || !kind.Valid() {
		return
	}
	windows.SurfaceClosed(kind)
	if kind == surfaces.KindOverlay {
		c.mu.Lock()
		c.overlayHidden = false
		c.mu.Unlock()
	}
}

func (c *Coordinator) onAssetsChanged(paths []string) {
	_, gw, _, _, _ := c.services()
	if gw == nil {
		return
	}
	if err := gw.Broadcast(gateway.EventAssetsChanged, map[string]interface{}{"paths": paths}); err != nil {
		c.logger.Warn().Err(err).Msg("failed to broadcast asset change")
	}
}

func (c *Coordinator) checkForUpdates() {
	ctx, cancel := context.WithTimeout(c.cancelCtx, 15*time.Second)
	defer cancel()

	result, err := updater.NewChecker().Check(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("update check failed")
		return
	}
	if result.Available {
		c.logger.Info().Str("current", result.CurrentVersion).Str("latest", result.LatestVersion).Str("url", result.ReleaseURL).Msg("update available")
	}

	now := time.Now().UTC()
	c.settings.Updates.LastChecked = &now
	if err := config.SaveSettings(c.settings); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist update check time")
	}
}

func (c *Coordinator) toggleOverlay() {
	c.mu.Lock()
	hidden := c.overlayHidden
	windows := c.windows
	c.mu.Unlock()

	if windows != nil && windows.Live(surfaces.KindOverlay) && !hidden {
		_ = c.HideOverlay()
		return
	}
	_ = c.ShowOverlay()
}

// fatal logs err and blocks on a native error dialog so the failure is
// visible without a terminal.
func (c *Coordinator) fatal(headline string, err error) {
	c.logger.Error().Err(err).Msg(headline)
	ShowFatalError(fmt.Sprintf("%s.\n\n%v", headline, err))
}

func (c *Coordinator) requestExit(code int) {
	c.exitMu.Lock()
	if c.exitCode == 0 {
		c.exitCode = code
	}
	c.exitMu.Unlock()
	tray.Quit()
}

func (c *Coordinator) readExitCode() int {
	c.exitMu.Lock()
	defer c.exitMu.Unlock()
	return c.exitCode
}

// profileDir is where per-surface browser profiles live.
func profileDir() string {
	dir, err := config.GlobalDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "deskmate-surfaces")
	}
	return filepath.Join(dir, "surfaces")
}

// --- gateway.HostOps ---

// BackendURL returns the backend worker's base address.
func (c *Coordinator) BackendURL() string {
	sup, _, _, _, _ := c.services()
	if sup == nil {
		return ""
	}
	return sup.BaseURL()
}

// ShowPrimary opens or focuses the dashboard surface.
func (c *Coordinator) ShowPrimary() error {
	_, _, _, windows, _ := c.services()
	if windows == nil {
		return errNotReady
	}
	return windows.Show(surfaces.KindPrimary)
}

// ShowOverlay opens or focuses the companion overlay.
func (c *Coordinator) ShowOverlay() error {
	_, _, _, windows, _ := c.services()
	if windows == nil {
		return errNotReady
	}
	if err := windows.Show(surfaces.KindOverlay); err != nil {
		return err
	}
	c.mu.Lock()
	c.overlayHidden = false
	c.mu.Unlock()
	return nil
}

// HideOverlay hides the companion overlay if it is open.
func (c *Coordinator) HideOverlay() error {
	_, _, _, windows, _ := c.services()
	if windows == nil {
		return errNotReady
	}
	c.mu.Lock()
	c.overlayHidden = true
	c.mu.Unlock()
	return windows.Hide(surfaces.KindOverlay)
}

// SetOverlayClickThrough toggles pointer pass-through on the overlay.
func (c *Coordinator) SetOverlayClickThrough(enabled bool) error {
	_, _, _, windows, _ := c.services()
	if windows == nil {
		return errNotReady
	}
	return windows.SetClickThrough(enabled)
}

// OpenExternal hands a validated URL to the default browser.
func (c *Coordinator) OpenExternal(rawURL string) error {
	return openExternal(rawURL)
}

// --- tray.HostState ---

// BackendState returns the supervisor state for tray display.
func (c *Coordinator) BackendState() string {
	sup, _, _, _, _ := c.services()
	if sup == nil {
		return "starting"
	}
	return sup.State().String()
}

// Paused reports whether companion activity is suspended.
func (c *Coordinator) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// SetPaused flips the pause flag and tells every connected surface.
// Surfaces created later fetch state themselves; there is no replay.
func (c *Coordinator) SetPaused(paused bool) {
	c.mu.Lock()
	if c.paused == paused {
		c.mu.Unlock()
		return
	}
	c.paused = paused
	gw := c.gw
	c.mu.Unlock()

	c.logger.Info().Bool("paused", paused).Msg("pause state changed")
	if gw != nil {
		if err := gw.Broadcast(gateway.EventPauseStateChanged, paused); err != nil {
			c.logger.Warn().Err(err).Msg("failed to broadcast pause state")
		}
	}
}

// RequestShutdown asks the tray loop to exit, which runs shutdown.
func (c *Coordinator) RequestShutdown() {
	c.requestExit(0)
}
