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
	"testing"
	"time"

	"github.com/carverauto/simtemp/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSensor(t *testing.T, cfg *Config, clock Clock) *Sensor {
	t.Helper()

	if cfg == nil {
		cfg = &Config{}
	}

	s, err := New(cfg, clock, logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { s.SetEnabled(false) })

	return s
}

func TestSensorDefaults(t *testing.T) {
	t.Parallel()

	s := newTestSensor(t, nil, newFakeClock())

	assert.False(t, s.Enabled())
	assert.Equal(t, uint32(2), s.Rate())
	assert.Equal(t, int32(45000), s.Threshold())
	assert.Equal(t, int32(40000), s.Reading())
	assert.False(t, s.ConsumeReady())

	status := s.Snapshot()
	assert.Equal(t, uint64(0), status.SampleCount)
	assert.Equal(t, 500*time.Millisecond, time.Duration(status.Interval))
}

func TestSensorConfigOverridesAppliedWhenPresent(t *testing.T) {
	t.Parallel()

	hz := uint32(50)
	threshold := int32(41000)
	seed := uint64(99)

	s := newTestSensor(t, &Config{
		DeviceID:    "dev-1",
		SamplingHz:  &hz,
		ThresholdMC: &threshold,
		RNGSeed:     &seed,
	}, newFakeClock())

	assert.Equal(t, uint32(50), s.Rate())
	assert.Equal(t, int32(41000), s.Threshold())
	assert.Equal(t, "dev-1", s.Snapshot().DeviceID)
	assert.Equal(t, 20*time.Millisecond, time.Duration(s.Snapshot().Interval))
}

func TestSensorConfigRejectsOutOfRangeOverride(t *testing.T) {
	t.Parallel()

	hz := uint32(101)

	_, err := New(&Config{SamplingHz: &hz}, newFakeClock(), logger.NewTestLogger())
	require.ErrorIs(t, err, ErrInvalidRate)
}

func TestSetRateAcceptsFullRange(t *testing.T) {
	t.Parallel()

	s := newTestSensor(t, nil, newFakeClock())

	for hz := uint32(1); hz <= 100; hz++ {
		require.NoError(t, s.SetRate(hz))
		require.Equal(t, hz, s.Rate())
	}
}

func TestSetRateRejectsOutOfRangeUnchanged(t *testing.T) {
	t.Parallel()

	s := newTestSensor(t, nil, newFakeClock())
	require.NoError(t, s.SetRate(10))

	before := s.Snapshot()

	for _, hz := range []uint32{0, 101, 1000} {
		err := s.SetRate(hz)
		require.ErrorIs(t, err, ErrInvalidRate)
	}

	after := s.Snapshot()
	assert.Equal(t, before.SamplingHz, after.SamplingHz)
	assert.Equal(t, before.Interval, after.Interval)
}

func TestSetThresholdUnchecked(t *testing.T) {
	t.Parallel()

	s := newTestSensor(t, nil, newFakeClock())

	for _, mc := range []int32{-100000, 0, 45000, 2000000000} {
		s.SetThreshold(mc)
		assert.Equal(t, mc, s.Threshold())
	}
}

func TestConsumeReadyClearsFlagOnce(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(true)
	fireSampler(t, clock, 0)
	waitForCount(t, s, 1)

	assert.True(t, s.ConsumeReady())
	assert.False(t, s.ConsumeReady())
}

func TestWaitReadyTimesOutWhileDisabled(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	result := make(chan bool, 1)

	go func() {
		ready, err := s.WaitReady(context.Background(), 50*time.Millisecond)
		assert.NoError(t, err)
		result <- ready
	}()

	// The wait creates the timeout timer; fire it.
	require.Eventually(t, func() bool { return clock.timerCount() == 1 }, time.Second, time.Millisecond)
	clock.timer(0).fire(clock.Now())

	select {
	case ready := <-result:
		assert.False(t, ready)
	case <-time.After(time.Second):
		t.Fatal("WaitReady did not return after timeout fired")
	}

	// Timing out must not consume readiness state for later samples.
	assert.False(t, s.ConsumeReady())
}

func TestWaitReadyHonorsContextCancellation(t *testing.T) {
	s := newTestSensor(t, nil, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)

	go func() {
		_, err := s.WaitReady(ctx, 0)
		result <- err
	}()

	cancel()

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("WaitReady did not return after cancellation")
	}
}

func TestWaitReadyWakesOnSample(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	result := make(chan bool, 1)

	go func() {
		ready, err := s.WaitReady(context.Background(), 0)
		assert.NoError(t, err)
		result <- ready
	}()

	s.SetEnabled(true)
	fireSampler(t, clock, 0)

	select {
	case ready := <-result:
		assert.True(t, ready)
	case <-time.After(time.Second):
		t.Fatal("WaitReady did not wake after sample")
	}
}

func TestWaitSampleFollowsCounter(t *testing.T) {
	clock := newFakeClock()
	s := newTestSensor(t, nil, clock)

	s.SetEnabled(true)
	fireSampler(t, clock, 0)
	waitForCount(t, s, 1)

	sample, err := s.WaitSample(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sample.SampleCount)
	assert.InDelta(t, 40000, sample.TempMC, 500)
	assert.Equal(t, sample.TempMC >= sample.ThresholdMC, sample.AboveThreshold)

	// Waiting past the current counter blocks until the next sample.
	next := make(chan uint64, 1)

	go func() {
		got, waitErr := s.WaitSample(context.Background(), sample.SampleCount)
		assert.NoError(t, waitErr)
		next <- got.SampleCount
	}()

	fireSampler(t, clock, 0)

	select {
	case count := <-next:
		assert.Equal(t, uint64(2), count)
	case <-time.After(time.Second):
		t.Fatal("WaitSample did not observe the second sample")
	}
}

func waitForCount(t *testing.T, s *Sensor, want uint64) {
	t.Helper()

	require.Eventually(t, func() bool {
		return s.Snapshot().SampleCount >= want
	}, 2*time.Second, time.Millisecond)
}

// fireSampler fires the idx-th timer once it exists.
func fireSampler(t *testing.T, clock *fakeClock, idx int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return clock.timerCount() > idx
	}, 2*time.Second, time.Millisecond)

	clock.timer(idx).fire(clock.Now())
}
