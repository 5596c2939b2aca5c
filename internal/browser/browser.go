// Package browser opens the plot editor in the user's web browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	return cmd.Start()
}

var defaultCommander Commander = RealCommander{}

// Open opens the specified URL in the default browser. $BROWSER, when set,
// takes precedence over the platform opener.
func Open(target string) error {
	return OpenWithCommander(target, defaultCommander, runtime.GOOS, os.Getenv("BROWSER"))
}

// OpenWithCommander opens the URL using the specified commander, OS and
// $BROWSER value (for testing)
func OpenWithCommander(target string, commander Commander, goos, browserEnv string) error {
	if cmd := strings.Fields(browserEnv); len(cmd) > 0 {
		return commander.Start(cmd[0], append(cmd[1:], target)...)
	}

	var name string
	var args []string

	switch goos {
	case "linux", "freebsd", "openbsd":
		name = "xdg-open"
		args = []string{target}
	case "darwin":
		name = "open"
		args = []string{target}
	case "windows":
		name = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", target}
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}

	return commander.Start(name, args...)
}

// PlotURL is the editor address that opens a specific plot
func PlotURL(editorURL, plotID string) string {
	base := strings.TrimRight(editorURL, "/") + "/"
	if plotID == "" {
		return base
	}
	return base + "?plot=" + url.QueryEscape(plotID)
}
