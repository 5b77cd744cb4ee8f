// Package server exposes the intake service over HTTP: the chat turn
// endpoint, session management, ticket materialization, and catalog
// administration.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"tagdesk/internal/catalog"
	"tagdesk/internal/common/config"
	"tagdesk/internal/common/logger"
	"tagdesk/internal/resolver"
	"tagdesk/internal/session"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	config   *config.ServerConfig
	handlers *Handlers
	logger   logger.Logger
	httpSrv  *http.Server
}

func New(cfg *config.ServerConfig, manager *session.Manager, holder *catalog.Holder, res *resolver.Resolver, log logger.Logger) *Server {
	return &Server{
		config:   cfg,
		handlers: NewHandlers(manager, holder, res, log),
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			s.handlers.Chat(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			s.handlers.GetSession(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/sessions/{id}/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			s.handlers.ResetSession(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/sessions/{id}/ticket", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			s.handlers.CreateTicket(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/sessions/{id}/tickets", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			s.handlers.ListTickets(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/platforms", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handlers.ListPlatforms(w, r)
		case http.MethodPut:
			s.handlers.UpdatePlatforms(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/platforms/suggest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			s.handlers.SuggestPlatforms(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start listens on the configured address and serves until ctx is cancelled.
// The returned address reflects the actual listener (useful with port 0 in
// tests).
func (s *Server) Start(ctx context.Context) (string, error) {
	readTimeout := time.Duration(s.config.ReadTimeout) * time.Millisecond
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := time.Duration(s.config.WriteTimeout) * time.Millisecond
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	s.httpSrv = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return "", err
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", map[string]interface{}{"error": err.Error()})
		}
	}()

	s.logger.Info("server listening", map[string]interface{}{"address": actualAddr})
	return actualAddr, nil
}
