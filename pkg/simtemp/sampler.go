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

package simtemp

import "time"

// run is the periodic sampling task. It re-arms its timer after each
// cycle with the interval read under the same lock acquisition that
// produced the sample, so a concurrent rate change is honored starting
// with the next cycle. The first cycle fires immediately.
func (s *Sensor) run(done chan struct{}) {
	defer s.runWG.Done()

	timer := s.clock.Timer(0)
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case <-timer.Chan():
			next, ok := s.sample()
			if !ok {
				return
			}

			timer.Reset(next)
		}
	}
}

// sample produces one reading. It returns the interval to sleep before
// the next cycle, or ok=false if sampling was disabled while this cycle
// was sleeping.
func (s *Sensor) sample() (next time.Duration, ok bool) {
	// The generator draws entropy outside any observable state; the
	// reading is only published under the lock below.
	reading := s.gen.Next()

	s.mu.Lock()

	if !s.enabled {
		s.mu.Unlock()
		return 0, false
	}

	s.tempMC = reading
	s.sampleCount++
	s.dataReady = true

	// Wake all observers on every sample. Threshold crossing does not
	// change wakeup behavior; it is carried in payloads only.
	close(s.notify)
	s.notify = make(chan struct{})

	interval := s.interval
	count := s.sampleCount
	s.mu.Unlock()

	s.logger.Debug().
		Int32("temp_mc", reading).
		Uint64("sample_count", count).
		Msg("Sample produced")

	return interval, true
}
