package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/killallgit/pharmai/pkg/controllers"
	"github.com/killallgit/pharmai/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// HealthChecker reports whether the upstream model is usable
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// Server exposes conversations over websockets, one per connection
type Server struct {
	newController func() *controllers.ChatController
	health        HealthChecker
	upgrader      websocket.Upgrader
	log           *logger.Logger
}

// New creates a Server. newController is called once per connection;
// health may be nil.
func New(newController func() *controllers.ChatController, health HealthChecker) *Server {
	return &Server{
		newController: newController,
		health:        health,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.WithComponent("server"),
	}
}

// Router returns the HTTP handler with logging and panic recovery applied
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Path("/chat").Methods(http.MethodGet).HandlerFunc(s.handleChat)
	r.Path("/healthz").Methods(http.MethodGet).HandlerFunc(s.handleHealth)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.log}),
		handlers.PrintRecoveryStack(true),
	)
	return handlers.CombinedLoggingHandler(accessLog{s.log}, recovery(r))
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.health != nil {
		if err := s.health.CheckHealth(r.Context()); err != nil {
			s.log.Warn("Health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	cc := s.newController()
	s.log.Info("Conversation opened", "conversation", cc.ID(), "remote", r.RemoteAddr)

	for {
		var frame ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Connection ended", "conversation", cc.ID(), "error", err)
			}
			return
		}

		switch frame.Type {
		case FrameMessage:
			if err := s.turn(r.Context(), conn, cc, frame.Message); err != nil {
				s.log.Warn("Failed to send reply", "conversation", cc.ID(), "error", err)
				return
			}
		case FrameReset:
			cc.Reset()
			if err := conn.WriteJSON(ServerFrame{Type: FrameReset, Conversation: cc.ID()}); err != nil {
				return
			}
		default:
			if err := conn.WriteJSON(ServerFrame{Type: FrameError, Error: fmt.Sprintf("unknown frame type %q", frame.Type)}); err != nil {
				return
			}
		}
	}
}

func (s *Server) turn(ctx context.Context, conn *websocket.Conn, cc *controllers.ChatController, message string) error {
	for snapshot := range cc.Submit(ctx, message) {
		if err := conn.WriteJSON(ServerFrame{Type: FrameSnapshot, Messages: snapshot.Messages}); err != nil {
			return err
		}
	}
	done := ServerFrame{Type: FrameDone, Conversation: cc.ID()}
	if usage := cc.LastUsage(); usage.Total() > 0 {
		done.Usage = &usage
	}
	return conn.WriteJSON(done)
}

// accessLog routes gorilla access log lines into the component logger
type accessLog struct {
	log *logger.Logger
}

func (a accessLog) Write(p []byte) (int, error) {
	a.log.Info(strings.TrimSpace(string(p)))
	return len(p), nil
}

type recoveryLogger struct {
	log *logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintln(v...)))
}
