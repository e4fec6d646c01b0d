package lifecycle

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openExternal hands a URL to the user's default browser. Scheme
// validation happens at the gateway boundary before this runs.
func openExternal(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %q externally: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
