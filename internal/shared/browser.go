package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// browserCommand resolves the command that opens url in a browser. A
// BROWSER environment variable overrides platform detection, which also
// covers headless setups where no platform opener exists.
func browserCommand(url string) (*exec.Cmd, error) {
	if browser := os.Getenv("BROWSER"); browser != "" {
		return exec.Command(browser, url), nil
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens the default system browser to the specified URL,
// used by the auth command to start the Spotify authorization flow.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
