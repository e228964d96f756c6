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

// Package simtemp implements a simulated, periodically-sampled
// temperature sensor. A background sampler mutates the sensor state
// under a single mutex; observers poll or block until a new sample is
// available; control operations interleave safely with the running
// sampler.
package simtemp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/simtemp/pkg/logger"
	"github.com/carverauto/simtemp/pkg/models"
)

// Sensor is the shared sensor instance. All state fields are read and
// written only while holding mu; mu is the sole serialization point
// between control operations, observers and the sampler.
type Sensor struct {
	mu          sync.Mutex
	enabled     bool
	samplingHz  uint32
	interval    time.Duration // derived from samplingHz, recomputed on rate change
	tempMC      int32
	thresholdMC int32
	dataReady   bool
	sampleCount uint64
	notify      chan struct{} // closed and re-armed under mu on every sample

	gen      *Generator
	clock    Clock
	logger   logger.Logger
	deviceID string

	// Sampler lifecycle. runMu serializes enable/disable transitions so a
	// disable waits out the in-flight cycle before a re-enable can start.
	runMu sync.Mutex
	done  chan struct{}
	runWG sync.WaitGroup
}

// New creates a sensor with defaults overridden by the optional fields
// present in config. A nil clock defaults to the real clock.
func New(config *Config, clock Clock, log logger.Logger) (*Sensor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sensor config: %w", err)
	}

	if clock == nil {
		clock = realClock{}
	}

	hz := config.samplingHz()

	s := &Sensor{
		samplingHz:  hz,
		interval:    intervalForRate(hz),
		tempMC:      baselineMC,
		thresholdMC: config.thresholdMC(),
		notify:      make(chan struct{}),
		gen:         NewGenerator(config.rngSeed()),
		clock:       clock,
		logger:      log,
		deviceID:    config.DeviceID,
	}

	log.Info().
		Str("device_id", s.deviceID).
		Uint32("sampling_hz", s.samplingHz).
		Int32("threshold_mc", s.thresholdMC).
		Msg("Sensor initialized")

	return s, nil
}

func intervalForRate(hz uint32) time.Duration {
	return time.Second / time.Duration(hz)
}

// Enabled reports whether the periodic sampler is running.
func (s *Sensor) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled
}

// SetEnabled starts or stops the periodic sampler. Enabling schedules the
// first sample immediately. Disabling is synchronous: it returns only
// after any in-flight cycle has exited and no further cycle is scheduled.
// Setting the current value is a no-op.
func (s *Sensor) SetEnabled(v bool) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	if s.enabled == v {
		s.mu.Unlock()
		return
	}

	s.enabled = v
	s.mu.Unlock()

	if v {
		s.done = make(chan struct{})
		s.runWG.Add(1)

		go s.run(s.done)

		s.logger.Info().Msg("Sampling enabled")

		return
	}

	close(s.done)
	s.runWG.Wait()

	s.logger.Info().Msg("Sampling disabled")
}

// Rate returns the sampling rate in hertz.
func (s *Sensor) Rate() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.samplingHz
}

// SetRate updates the sampling rate. Rates outside [1,100] Hz are
// rejected with ErrInvalidRate and leave all state unchanged. A cycle
// already sleeping finishes at the old interval; the new interval takes
// effect when the sampler next re-arms.
func (s *Sensor) SetRate(hz uint32) error {
	if hz < minSamplingHz || hz > maxSamplingHz {
		return fmt.Errorf("%w: %d (expected %d..%d)", ErrInvalidRate, hz, minSamplingHz, maxSamplingHz)
	}

	s.mu.Lock()
	s.samplingHz = hz
	s.interval = intervalForRate(hz)
	s.mu.Unlock()

	s.logger.Debug().Uint32("sampling_hz", hz).Msg("Sampling rate updated")

	return nil
}

// Threshold returns the threshold in milli-degrees C.
func (s *Sensor) Threshold() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.thresholdMC
}

// SetThreshold stores a new threshold. Any value is accepted; the
// threshold is informational and does not change wakeup behavior.
func (s *Sensor) SetThreshold(mc int32) {
	s.mu.Lock()
	s.thresholdMC = mc
	s.mu.Unlock()

	s.logger.Debug().Int32("threshold_mc", mc).Msg("Threshold updated")
}

// Reading returns the last computed temperature in milli-degrees C.
func (s *Sensor) Reading() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tempMC
}

// ConsumeReady reads and clears the unread-sample flag, reporting whether
// it was set.
func (s *Sensor) ConsumeReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	was := s.dataReady
	s.dataReady = false

	return was
}

// WaitReady blocks until an unread sample is available, the timeout
// elapses, or ctx is canceled. A timeout <= 0 means no timeout. The
// ready flag is not consumed; it reports (false, nil) on timeout.
func (s *Sensor) WaitReady(ctx context.Context, timeout time.Duration) (bool, error) {
	var deadline <-chan time.Time

	if timeout > 0 {
		timer := s.clock.Timer(timeout)
		defer timer.Stop()

		deadline = timer.Chan()
	}

	s.mu.Lock()

	for !s.dataReady {
		// Snapshot the notify channel before releasing the lock: a sample
		// produced between unlock and select closes exactly this channel,
		// so the wakeup cannot be lost.
		ch := s.notify
		s.mu.Unlock()

		select {
		case <-ch:
		case <-deadline:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}

		s.mu.Lock()
	}

	s.mu.Unlock()

	return true, nil
}

// WaitSample blocks until the sample counter exceeds lastCount and
// returns that sample. Multiple observers can follow the sample stream
// independently without consuming the poll flag.
func (s *Sensor) WaitSample(ctx context.Context, lastCount uint64) (models.Sample, error) {
	s.mu.Lock()

	for s.sampleCount <= lastCount {
		ch := s.notify
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return models.Sample{}, ctx.Err()
		}

		s.mu.Lock()
	}

	sample := s.sampleLocked()
	s.mu.Unlock()

	return sample, nil
}

// Snapshot returns a consistent view of the sensor state taken under one
// lock acquisition. It does not consume the ready flag.
func (s *Sensor) Snapshot() models.SensorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SensorStatus{
		DeviceID:    s.deviceID,
		Enabled:     s.enabled,
		SamplingHz:  s.samplingHz,
		Interval:    models.Duration(s.interval),
		TempMC:      s.tempMC,
		ThresholdMC: s.thresholdMC,
		DataReady:   s.dataReady,
		SampleCount: s.sampleCount,
		Timestamp:   s.clock.Now().UTC(),
	}
}

// sampleLocked builds a Sample from current state. Callers hold mu.
func (s *Sensor) sampleLocked() models.Sample {
	return models.Sample{
		DeviceID:       s.deviceID,
		TempMC:         s.tempMC,
		ThresholdMC:    s.thresholdMC,
		AboveThreshold: s.tempMC >= s.thresholdMC,
		SampleCount:    s.sampleCount,
		Timestamp:      s.clock.Now().UTC(),
	}
}

// Start implements lifecycle.Service. The sampler itself only runs once
// enabled through the control surface, matching the hardware defaults.
func (s *Sensor) Start(_ context.Context) error {
	s.logger.Info().Str("device_id", s.deviceID).Msg("Sensor service started")
	return nil
}

// Stop implements lifecycle.Service: a synchronous disable, so shutdown
// never leaves a cycle in flight.
func (s *Sensor) Stop(_ context.Context) error {
	s.SetEnabled(false)
	s.logger.Info().Msg("Sensor service stopped")

	return nil
}
