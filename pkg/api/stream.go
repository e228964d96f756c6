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

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/simtemp/pkg/models"
)

const streamWriteTimeout = 10 * time.Second

// StreamMessage represents a message sent over the WebSocket
type StreamMessage struct {
	Type      string         `json:"type"` // "sample", "error"
	Sample    *models.Sample `json:"sample,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// handleStream upgrades to a WebSocket and pushes one message per
// produced sample until the client disconnects.
func (s *APIServer) handleStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	s.logger.Info().
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket sample stream established")

	defer func() {
		s.logger.Debug().
			Str("remote_addr", r.RemoteAddr).
			Msg("Closing WebSocket connection")
		conn.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader goroutine: detect client disconnect.
	go func() {
		defer cancel()

		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	// Follow the sample counter from the current position; each sample
	// wakes this loop exactly once.
	last := s.sensor.Snapshot().SampleCount

	for {
		sample, waitErr := s.sensor.WaitSample(ctx, last)
		if waitErr != nil {
			if !errors.Is(waitErr, context.Canceled) {
				s.logger.Error().Err(waitErr).Msg("Sample wait failed")
			}

			return
		}

		last = sample.SampleCount

		msg := StreamMessage{
			Type:      "sample",
			Sample:    &sample,
			Timestamp: time.Now().UTC(),
		}

		if writeErr := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); writeErr != nil {
			return
		}

		if writeErr := conn.WriteJSON(msg); writeErr != nil {
			s.logger.Debug().Err(writeErr).Msg("WebSocket write failed, dropping client")
			return
		}
	}
}
