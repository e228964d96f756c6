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

package models

import "time"

// Sample is one produced sensor reading together with its counter value.
type Sample struct {
	DeviceID       string    `json:"device_id"`
	TempMC         int32     `json:"temp_mc"`
	ThresholdMC    int32     `json:"threshold_mc"`
	AboveThreshold bool      `json:"above_threshold"`
	SampleCount    uint64    `json:"sample_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// SensorStatus is a consistent snapshot of the sensor state, taken under
// a single lock acquisition.
type SensorStatus struct {
	DeviceID    string    `json:"device_id"`
	Enabled     bool      `json:"enabled"`
	SamplingHz  uint32    `json:"sampling_hz"`
	Interval    Duration  `json:"interval"`
	TempMC      int32     `json:"temp_mc"`
	ThresholdMC int32     `json:"threshold_mc"`
	DataReady   bool      `json:"data_ready"`
	SampleCount uint64    `json:"sample_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// HostInfo describes the host the sensor service runs on. Attached to
// status payloads for device registration downstream.
type HostInfo struct {
	Hostname    string `json:"hostname"`
	HostID      string `json:"host_id"`
	UptimeSecs  uint64 `json:"uptime_seconds"`
	MemoryTotal uint64 `json:"memory_total_bytes"`
	MemoryUsed  uint64 `json:"memory_used_bytes"`
}

// NATSConfig configures the optional sample event publisher.
type NATSConfig struct {
	URL     string `json:"url"`
	Domain  string `json:"domain,omitempty"`
	Stream  string `json:"stream,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// CloudEvent is a minimal CloudEvents 1.0 envelope for published events.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data"`
}
