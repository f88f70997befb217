// Package browser launches the user's default web browser, used for the
// sign-in flow and the "web" shortcut.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open opens url in the default browser. The command is started, not waited
// on; callers fall back to printing the URL when it fails.
func Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}
