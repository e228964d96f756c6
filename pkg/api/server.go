/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP API server for the sensor control surface
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	srhttp "github.com/carverauto/simtemp/pkg/http"
	"github.com/carverauto/simtemp/pkg/logger"
)

const (
	// No write timeout: the long-poll and websocket endpoints manage
	// their own deadlines.
	defaultReadTimeout     = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// APIServer exposes the sensor control surface over HTTP.
type APIServer struct {
	addr       string
	sensor     SensorService
	hostInfo   HostInfoProvider
	router     *mux.Router
	httpServer *http.Server
	logger     logger.Logger
}

// ServerOption modifies APIServer configuration.
type ServerOption func(*APIServer)

// WithAPIKey protects all routes with an API key.
func WithAPIKey(key string) ServerOption {
	return func(s *APIServer) {
		if key != "" {
			s.router.Use(srhttp.APIKeyMiddleware(key, s.logger))
		}
	}
}

// WithHostInfo attaches a host info block to status responses.
func WithHostInfo(provider HostInfoProvider) ServerOption {
	return func(s *APIServer) {
		s.hostInfo = provider
	}
}

// NewAPIServer creates the API server and registers all routes.
func NewAPIServer(addr string, sensor SensorService, log logger.Logger, opts ...ServerOption) *APIServer {
	s := &APIServer{
		addr:   addr,
		sensor: sensor,
		router: mux.NewRouter(),
		logger: log,
	}

	s.router.Use(srhttp.CommonMiddleware(log))

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	sensor := s.router.PathPrefix("/api/sensor").Subrouter()

	sensor.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	sensor.HandleFunc("/temp_mc", s.getReading).Methods(http.MethodGet)
	sensor.HandleFunc("/ready", s.getReady).Methods(http.MethodGet)
	sensor.HandleFunc("/wait", s.waitReady).Methods(http.MethodGet)
	sensor.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	sensor.HandleFunc("/enable", s.getEnable).Methods(http.MethodGet)
	sensor.HandleFunc("/enable", s.putEnable).Methods(http.MethodPut)
	sensor.HandleFunc("/sampling_hz", s.getRate).Methods(http.MethodGet)
	sensor.HandleFunc("/sampling_hz", s.putRate).Methods(http.MethodPut)
	sensor.HandleFunc("/threshold_mc", s.getThreshold).Methods(http.MethodGet)
	sensor.HandleFunc("/threshold_mc", s.putThreshold).Methods(http.MethodPut)
}

// Router exposes the handler for tests and embedding.
func (s *APIServer) Router() http.Handler {
	return s.router
}

// Start implements lifecycle.Service.
func (s *APIServer) Start(_ context.Context) error {
	s.httpServer = &http.Server{
		Addr:        s.addr,
		Handler:     s.router,
		ReadTimeout: defaultReadTimeout,
	}

	s.logger.Info().Str("addr", s.addr).Msg("Starting HTTP API server")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server failure")
		}
	}()

	return nil
}

// Stop implements lifecycle.Service.
func (s *APIServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("Stopping HTTP API server")

	return s.httpServer.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
