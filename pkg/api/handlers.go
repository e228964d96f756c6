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
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/carverauto/simtemp/pkg/models"
	"github.com/carverauto/simtemp/pkg/simtemp"
)

// statusResponse is the full status payload, optionally carrying host info.
type statusResponse struct {
	Sensor models.SensorStatus `json:"sensor"`
	Host   *models.HostInfo    `json:"host,omitempty"`
}

func (s *APIServer) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Sensor: s.sensor.Snapshot()}

	if s.hostInfo != nil {
		info := s.hostInfo.Collect(r.Context())
		resp.Host = &info
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) getReading(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int32{"temp_mc": s.sensor.Reading()})
}

func (s *APIServer) getReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ready": s.sensor.ConsumeReady()})
}

// waitReady long-polls until a sample is ready or the timeout elapses.
// Timeout is a normal outcome reported as 204, not an error.
func (s *APIServer) waitReady(w http.ResponseWriter, r *http.Request) {
	var timeout time.Duration

	if raw := r.URL.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			writeError(w, "invalid timeout", http.StatusBadRequest)
			return
		}

		timeout = parsed
	}

	ready, err := s.sensor.WaitReady(r.Context(), timeout)
	if err != nil {
		// Client went away while blocked.
		return
	}

	if !ready {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func (s *APIServer) getEnable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"value": s.sensor.Enabled()})
}

func (s *APIServer) putEnable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value bool `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.sensor.SetEnabled(body.Value)

	writeJSON(w, http.StatusOK, map[string]bool{"value": s.sensor.Enabled()})
}

func (s *APIServer) getRate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint32{"value": s.sensor.Rate()})
}

func (s *APIServer) putRate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value int64 `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if body.Value < 0 || body.Value > math.MaxUint32 {
		writeError(w, simtemp.ErrInvalidRate.Error(), http.StatusBadRequest)
		return
	}

	if err := s.sensor.SetRate(uint32(body.Value)); err != nil {
		if errors.Is(err, simtemp.ErrInvalidRate) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeError(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, map[string]uint32{"value": s.sensor.Rate()})
}

func (s *APIServer) getThreshold(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int32{"value": s.sensor.Threshold()})
}

func (s *APIServer) putThreshold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value int32 `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.sensor.SetThreshold(body.Value)

	writeJSON(w, http.StatusOK, map[string]int32{"value": s.sensor.Threshold()})
}
