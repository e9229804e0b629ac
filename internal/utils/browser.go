package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the command that opens url on the current OS
func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform %s, open %s manually", goos, url)
	}
}

// OpenBrowser opens the specified URL in the user's default browser
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser, open %s manually: %w", url, err)
	}
	// don't leave a zombie behind once the opener exits
	go cmd.Wait()
	return nil
}
