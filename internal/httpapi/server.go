// SPDX-License-Identifier: GPL-3.0-or-later

// Package httpapi exposes the connection checker and the mock registry over
// HTTP. Check and disconnect endpoints require the regular API key, mock
// management endpoints require the elevated dev key, both passed in the
// X-Api-Key header.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dialtonehq/callcheck/internal/checker"
	"github.com/dialtonehq/callcheck/internal/mockreg"
	"github.com/dialtonehq/callcheck/logger"
)

type Config struct {
	ListenAddr string
	APIKey     string
	DevAPIKey  string
}

type Server struct {
	*logger.Logger

	checker  *checker.Service
	registry *mockreg.Registry

	mu        sync.RWMutex
	apiKey    string
	devAPIKey string

	srv *http.Server
}

func New(cfg Config, svc *checker.Service, registry *mockreg.Registry, log *logger.Logger) *Server {
	s := &Server{
		Logger:    log,
		checker:   svc,
		registry:  registry,
		apiKey:    cfg.APIKey,
		devAPIKey: cfg.DevAPIKey,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /check-connection", s.requireKey(s.handleCheckConnection))
	mux.HandleFunc("POST /disconnect-call", s.requireKey(s.handleDisconnectCall))
	mux.HandleFunc("DELETE /disconnect-call", s.requireKey(s.handleDisconnectCall))
	mux.HandleFunc("POST /mock-connect", s.requireDevKey(s.handleMockConnect))
	mux.HandleFunc("DELETE /clear-mocks", s.requireDevKey(s.handleClearMocks))
	mux.HandleFunc("GET /mock-status", s.requireDevKey(s.handleMockStatus))

	s.srv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           withRecover(log, withCORS(mux)),
		ReadHeaderTimeout: time.Second * 10,
	}

	return s
}

// Run blocks serving requests until Shutdown is called.
func (s *Server) Run() error {
	s.Infof("listening on %s", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// SetAPIKeys swaps both keys atomically, used on config reload.
func (s *Server) SetAPIKeys(apiKey, devAPIKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = apiKey
	s.devAPIKey = devAPIKey
}

func (s *Server) currentAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

func (s *Server) currentDevAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.devAPIKey
}
