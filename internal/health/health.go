// Package health exposes liveness and readiness over HTTP and the standard
// gRPC health service.
//
// The session becomes ready once the first Spotify access token has been
// obtained; until then /readyz and the gRPC check report not serving.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server serves /healthz and /readyz, and optionally grpc.health.v1.Health.
type Server struct {
	port     int
	grpcPort int

	ready atomic.Bool
	grpc  *grpchealth.Server
}

// New creates a health server. A zero grpcPort disables the gRPC service.
func New(port, grpcPort int) *Server {
	s := &Server{port: port, grpcPort: grpcPort, grpc: grpchealth.NewServer()}
	s.grpc.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetReady marks the session as ready to accept commands.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.grpc.SetServingStatus("", status)
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// ListenAndServe starts the HTTP health server and, if configured, the gRPC
// health service. It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("health server: %w", err)
	}

	var grpcLn net.Listener
	if s.grpcPort != 0 {
		grpcLn, err = net.Listen("tcp", fmt.Sprintf(":%d", s.grpcPort))
		if err != nil {
			_ = httpLn.Close()
			return fmt.Errorf("grpc health server: %w", err)
		}
	}
	return s.Serve(ctx, httpLn, grpcLn)
}

// Serve runs on already bound listeners. grpcLn may be nil.
func (s *Server) Serve(ctx context.Context, httpLn, grpcLn net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var grpcServer *grpc.Server
	grpcErr := make(chan error, 1)
	if grpcLn != nil {
		grpcServer = grpc.NewServer()
		healthpb.RegisterHealthServer(grpcServer, s.grpc)
		slog.Info("grpc health server listening", "addr", grpcLn.Addr().String())
		go func() {
			grpcErr <- grpcServer.Serve(grpcLn)
		}()
	}

	slog.Info("health server listening", "addr", httpLn.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if grpcServer != nil {
			s.grpc.Shutdown()
			grpcServer.GracefulStop()
		}
	}()

	if err := server.Serve(httpLn); !errors.Is(err, http.ErrServerClosed) {
		if grpcServer != nil {
			grpcServer.Stop()
		}
		return fmt.Errorf("health server: %w", err)
	}
	if grpcServer != nil {
		if err := <-grpcErr; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc health server: %w", err)
		}
	}
	return nil
}
