package surfaces

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// browserCandidates lists app-mode capable browsers in preference order.
func browserCandidates() []string {
	if env := os.Getenv("DESKMATE_BROWSER"); env != "" {
		return []string{env}
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramFiles"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Microsoft", "Edge", "Application", "msedge.exe"),
		}
	default:
		return []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "microsoft-edge"}
	}
}

// AppOpener creates surfaces as app-mode browser windows pointed at the
// host's loopback content server. Each kind gets its own profile directory
// so the two surfaces stay independent processes.
type AppOpener struct {
	logger     zerolog.Logger
	profileDir string
}

// NewAppOpener creates an opener whose per-kind browser profiles live
// under profileDir.
func NewAppOpener(profileDir string, logger zerolog.Logger) *AppOpener {
	return &AppOpener{logger: logger, profileDir: profileDir}
}

func (o *AppOpener) findBrowser() (string, error) {
	for _, candidate := range browserCandidates() {
		if filepath.IsAbs(candidate) {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no app-mode capable browser found (set DESKMATE_BROWSER to override)")
}

// Open launches an app-mode browser window for the given kind.
func (o *AppOpener) Open(kind Kind, contentURL string, policy SecurityPolicy) (Window, error) {
	browser, err := o.findBrowser()
	if err != nil {
		return nil, err
	}

	profile := filepath.Join(o.profileDir, string(kind))
	if err := os.MkdirAll(profile, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create surface profile dir: %w", err)
	}

	args := []string{
		"--app=" + contentURL,
		"--user-data-dir=" + profile,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-extensions",
	}
	if kind == KindOverlay {
		args = append(args, "--window-size=420,560")
	}

	cmd := exec.Command(browser, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch surface window: %w", err)
	}

	o.logger.Debug().
		Str("kind", string(kind)).
		Str("browser", browser).
		Int("pid", cmd.Process.Pid).
		Msg("surface window launched")

	w := &appWindow{
		opener:  o,
		kind:    kind,
		url:     contentURL,
		browser: browser,
		profile: profile,
		cmd:     cmd,
		done:    make(chan struct{}),
	}
	go func() {
		_ = cmd.Wait()
		close(w.done)
	}()
	return w, nil
}

// appWindow is one app-mode browser process.
type appWindow struct {
	opener  *AppOpener
	kind    Kind
	url     string
	browser string
	profile string
	cmd     *exec.Cmd
	done    chan struct{}

	closeOnce sync.Once
}

// Focus relaunches the app URL against the same profile. Chromium treats
// this as an activation of the existing window and exits immediately.
func (w *appWindow) Focus() error {
	cmd := exec.Command(w.browser,
		"--app="+w.url,
		"--user-data-dir="+w.profile,
		"--no-first-run",
	)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Hide closes the window. App-mode browser windows cannot be hidden from
// outside the process, so the next Show recreates the surface instead.
func (w *appWindow) Hide() error {
	return w.Close()
}

// SetClickThrough is not reachable for an external browser window. The
// overlay renderer degrades to pointer-events styling; the host records
// the request as unsupported.
func (w *appWindow) SetClickThrough(enabled bool) error {
	w.opener.logger.Debug().
		Str("kind", string(w.kind)).
		Bool("enabled", enabled).
		Msg("click-through not supported by app-mode opener")
	return nil
}

func (w *appWindow) Close() error {
	w.closeOnce.Do(func() {
		if w.cmd.Process != nil {
			_ = w.cmd.Process.Kill()
		}
	})
	return nil
}

func (w *appWindow) Done() <-chan struct{} {
	return w.done
}
