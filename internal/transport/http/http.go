// Package http exposes the command pipeline over HTTP.
//
// POST /command accepts one utterance as JSON or plain text and answers with
// the outcome the console would have announced. The OpenAPI description is
// served under /swagger/.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/maestro/internal/message"
	"github.com/nadzzz/maestro/internal/transport"
	_ "github.com/nadzzz/maestro/internal/transport/http/docs"
)

// maxBody caps a command request body.
const maxBody = 64 << 10

// CommandRequest is the JSON body of POST /command.
type CommandRequest struct {
	// Text is the command, e.g. "play Bohemian Rhapsody by Queen".
	Text string `json:"text" example:"następna piosenka"`
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	addr   string
	server *http.Server
	ready  chan struct{}
	bound  string
}

var _ transport.Transport = (*Transport)(nil)

// New creates an HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{addr: fmt.Sprintf(":%d", port), ready: make(chan struct{})}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the routing mux; exposed for tests.
func (t *Transport) Handler(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /command", func(w http.ResponseWriter, r *http.Request) {
		handleCommand(w, r, handler)
	})

	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server and blocks until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	listener, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	t.server = &http.Server{
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	t.bound = listener.Addr().String()
	close(t.ready)

	slog.Info("http transport listening", "addr", t.bound)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		_ = t.Close()
	}()

	if err := t.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// Addr blocks until the server is bound and returns its address.
func (t *Transport) Addr() string {
	<-t.ready
	return t.bound
}

// handleCommand processes a POST /command request.
//
// @Summary     Run a playback command
// @Description Accepts one utterance as JSON ({"text": "..."}) or as a text/plain body.
// @Description The utterance is parsed into an action and executed exactly as if it had been
// @Description typed at the console. The response carries the announced feedback line.
// @Tags        command
// @Accept      json
// @Accept      plain
// @Produce     json
// @Param       command  body      CommandRequest   true  "Command to run"
// @Param       X-Maestro-Source  header  string  false  "Free-form caller name, logged with the command"
// @Success     200  {object}  message.Outcome  "Command outcome (success may be false)"
// @Failure     400  {string}  string  "Invalid or empty request body"
// @Router      /command [post]
func handleCommand(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var text string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req CommandRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		text = req.Text
	default:
		text = string(body)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		http.Error(w, "empty command", http.StatusBadRequest)
		return
	}

	u := message.NewUtterance(message.SourceHTTP, text)
	if caller := r.Header.Get("X-Maestro-Source"); caller != "" {
		slog.Info("remote command", "message_id", u.ID, "caller", caller)
	}

	out := handler(r.Context(), u)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return t.server.Shutdown(ctx)
}
