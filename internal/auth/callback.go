package auth

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	successPage = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>maestro</title></head>` +
		`<body><h1>Authorization complete</h1><p>You can close this window and return to the terminal.</p></body></html>`
	failurePage = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>maestro</title></head>` +
		`<body><h1>Authorization failed</h1><p>%s</p></body></html>`
)

// CallbackServer is the loopback redirect listener. It records the first
// authorization code it receives and keeps serving until Close.
type CallbackServer struct {
	expectedState string
	listener      net.Listener
	server        *http.Server

	mu      sync.Mutex
	code    string
	denied  error
	settled bool

	closeOnce sync.Once
}

// StartCallbackServer binds listenAddr and starts serving in the background.
// An empty expectedState disables the state check.
func StartCallbackServer(listenAddr, expectedState string) (*CallbackServer, error) {
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen callback server on %s: %w", listenAddr, err)
	}

	cb := &CallbackServer{
		expectedState: expectedState,
		listener:      listener,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", cb.handleCallback)
	cb.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if serveErr := cb.server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("callback server stopped", "error", serveErr)
		}
	}()

	slog.Debug("callback server listening", "addr", listener.Addr().String())
	return cb, nil
}

// Addr returns the bound host:port.
func (c *CallbackServer) Addr() string {
	return c.listener.Addr().String()
}

// Poll returns the captured code, or the provider's denial. Both are empty
// while the callback has not arrived yet.
func (c *CallbackServer) Poll() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code, c.denied
}

// Close stops the listener. It is safe to call more than once.
func (c *CallbackServer) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		closeErr = c.server.Close()
	})
	return closeErr
}

func (c *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if c.expectedState != "" && q.Get("state") != c.expectedState {
		slog.Warn("callback rejected", "reason", "state mismatch")
		writePage(w, http.StatusBadRequest, fmt.Sprintf(failurePage, "The request did not originate from this session."))
		return
	}

	if oauthErr := q.Get("error"); oauthErr != "" {
		slog.Warn("authorization denied", "error", oauthErr)
		c.settle("", fmt.Errorf("%w: %s", ErrDenied, oauthErr))
		writePage(w, http.StatusBadRequest, fmt.Sprintf(failurePage, html.EscapeString(oauthErr)))
		return
	}

	code := q.Get("code")
	if code == "" {
		writePage(w, http.StatusBadRequest, fmt.Sprintf(failurePage, "No authorization code was found."))
		return
	}

	c.settle(code, nil)
	writePage(w, http.StatusOK, successPage)
}

// settle records the first outcome; later callbacks do not overwrite it.
func (c *CallbackServer) settle(code string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settled {
		return
	}
	c.code, c.denied, c.settled = code, err, true
}

func writePage(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
