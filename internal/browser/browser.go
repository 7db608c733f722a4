// Package browser opens post permalinks in the user's browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
)

// Validate accepts only absolute http and https URLs.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", rawURL)
	}
	return nil
}

// Command returns the program and arguments that open rawURL on goos.
// A non-empty browserEnv overrides the platform default.
func Command(goos, browserEnv, rawURL string) (string, []string) {
	if browserEnv != "" {
		return browserEnv, []string{rawURL}
	}
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd /c start interpreting the URL.
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

func Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	name, args := Command(runtime.GOOS, os.Getenv("BROWSER"), rawURL)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("opening %s: %w", rawURL, err)
	}
	return nil
}
