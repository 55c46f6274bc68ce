package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// CodeSource yields an authorization code for the given authorization URL.
type CodeSource interface {
	AuthorizationCode(ctx context.Context, authURL, state string) (string, error)
}

// BrowserFlow opens the authorization URL in the user's browser and waits
// for the redirect listener to capture a code.
type BrowserFlow struct {
	ListenAddr   string
	Timeout      time.Duration
	PollInterval time.Duration

	// Open launches the browser. Defaults to OpenBrowser.
	Open func(url string) error

	// Out receives the URL so the user can open it by hand.
	Out io.Writer
}

var _ CodeSource = (*BrowserFlow)(nil)

// AuthorizationCode starts the listener, opens the browser and polls until a
// code arrives, the deadline passes or ctx is cancelled. The listener is
// always stopped before returning.
func (f *BrowserFlow) AuthorizationCode(ctx context.Context, authURL, state string) (string, error) {
	server, err := StartCallbackServer(f.ListenAddr, state)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			slog.Warn("closing callback server", "error", closeErr)
		}
	}()

	if f.Out != nil {
		fmt.Fprintf(f.Out, "Opening the browser for Spotify authorization. If it does not open, visit:\n%s\n", authURL)
	}
	open := f.Open
	if open == nil {
		open = OpenBrowser
	}
	if err := open(authURL); err != nil {
		slog.Warn("could not open browser", "error", err)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	interval := f.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		code, err := server.Poll()
		if err != nil {
			return "", err
		}
		if code != "" {
			slog.Info("authorization code received")
			return code, nil
		}
		if !time.Now().Before(deadline) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}

// browserCommand returns the opener for goos. On Windows the URL is handed to
// rundll32 because cmd's start splits it at the first '&'.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
