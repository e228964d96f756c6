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

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnableSchedulesImmediateFirstCycle(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(true)

	require.Eventually(t, func() bool { return clock.timerCount() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, time.Duration(0), clock.timer(0).initial)

	clock.timer(0).fire(clock.Now())
	waitForCount(t, s, 1)

	status := s.Snapshot()
	assert.True(t, status.DataReady)
	assert.InDelta(t, 40000, status.TempMC, 500)
}

func TestSamplerReArmsWithCurrentInterval(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(true)
	fireSampler(t, clock, 0)
	waitForCount(t, s, 1)

	// Default 2 Hz
	require.Eventually(t, func() bool {
		d, ok := clock.timer(0).lastReset()
		return ok && d == 500*time.Millisecond
	}, time.Second, time.Millisecond)

	// A rate change is observed by the next re-arm, not the pending one.
	require.NoError(t, s.SetRate(10))

	clock.timer(0).fire(clock.Now())
	waitForCount(t, s, 2)

	require.Eventually(t, func() bool {
		d, ok := clock.timer(0).lastReset()
		return ok && d == 100*time.Millisecond
	}, time.Second, time.Millisecond)
}

func TestDisableIsSynchronous(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(true)
	fireSampler(t, clock, 0)
	waitForCount(t, s, 1)

	s.SetEnabled(false)

	count := s.Snapshot().SampleCount

	// Fire the stale timer: the run loop has exited, so nothing consumes
	// it and no further sample may be produced.
	clock.timer(0).fire(clock.Now())
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, count, s.Snapshot().SampleCount)
	assert.False(t, s.Enabled())
}

func TestRedundantEnableDisableAreNoOps(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(false) // already stopped
	assert.Equal(t, 0, clock.timerCount())

	s.SetEnabled(true)
	require.Eventually(t, func() bool { return clock.timerCount() == 1 }, time.Second, time.Millisecond)

	s.SetEnabled(true) // already running: must not spawn a second sampler
	assert.Equal(t, 1, clock.timerCount())
}

func TestReEnableStartsFreshCycle(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(true)
	fireSampler(t, clock, 0)
	waitForCount(t, s, 1)
	s.SetEnabled(false)

	s.SetEnabled(true)
	fireSampler(t, clock, 1)
	waitForCount(t, s, 2)

	// Counter is monotonic across restarts, never reset.
	assert.Equal(t, uint64(2), s.Snapshot().SampleCount)
}

func TestConcurrentControlOpsKeepStateConsistent(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(true)

	require.Eventually(t, func() bool { return clock.timerCount() == 1 }, time.Second, time.Millisecond)

	done := make(chan struct{})

	var wg sync.WaitGroup

	wg.Add(3)

	go func() {
		defer wg.Done()

		hz := uint32(1)

		for {
			select {
			case <-done:
				return
			default:
				_ = s.SetRate(hz%100 + 1)
				hz++
			}
		}
	}()

	go func() {
		defer wg.Done()

		for {
			select {
			case <-done:
				return
			default:
				s.SetThreshold(int32(41000))
				_ = s.Threshold()
				_ = s.Reading()
			}
		}
	}()

	go func() {
		defer wg.Done()

		var last uint64

		for {
			select {
			case <-done:
				return
			default:
				status := s.Snapshot()
				// Reading and counter are updated as a group: a bumped
				// counter always comes with an in-range reading.
				if status.SampleCount > 0 {
					assert.InDelta(t, 40000, status.TempMC, 500)
				}

				assert.GreaterOrEqual(t, status.SampleCount, last)
				last = status.SampleCount
			}
		}
	}()

	for i := 0; i < 50; i++ {
		clock.timer(0).fire(clock.Now())
		waitForCount(t, s, uint64(i+1))
	}

	close(done)
	wg.Wait()

	assert.Equal(t, uint64(50), s.Snapshot().SampleCount)
}

// End-to-end timing scenario against the real clock: enable at 2 Hz,
// observe the immediate first sample, speed up to 10 Hz, then disable
// and verify the counter freezes.
func TestSamplerScenarioRealClock(t *testing.T) {
	s := newTestSensor(t, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.SetEnabled(true)

	ready, err := s.WaitReady(ctx, 2*time.Second)
	require.NoError(t, err)
	require.True(t, ready)

	status := s.Snapshot()
	assert.GreaterOrEqual(t, status.SampleCount, uint64(1))
	assert.GreaterOrEqual(t, status.TempMC, int32(39500))
	assert.LessOrEqual(t, status.TempMC, int32(40500))

	require.NoError(t, s.SetRate(10))

	first := status.SampleCount

	require.Eventually(t, func() bool {
		return s.Snapshot().SampleCount > first
	}, 2*time.Second, 10*time.Millisecond)

	s.SetEnabled(false)

	frozen := s.Snapshot().SampleCount

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, frozen, s.Snapshot().SampleCount)
}
