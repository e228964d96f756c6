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

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/simtemp/pkg/logger"
	"github.com/carverauto/simtemp/pkg/models"
	"github.com/carverauto/simtemp/pkg/simtemp"
)

func TestBuildSampleEvent(t *testing.T) {
	sample := models.Sample{
		DeviceID:       "dev-1",
		TempMC:         45250,
		ThresholdMC:    45000,
		AboveThreshold: true,
		SampleCount:    7,
		Timestamp:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	event := buildSampleEvent(sample, defaultSubject)

	assert.Equal(t, "1.0", event.SpecVersion)
	assert.Equal(t, "simtemp/sensor", event.Source)
	assert.Equal(t, "com.carverauto.simtemp.sample", event.Type)
	assert.Equal(t, "events.simtemp.sample", event.Subject)
	assert.NotEmpty(t, event.ID)
	require.NotNil(t, event.Time)
	assert.Equal(t, sample.Timestamp, *event.Time)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.JSONEq(t, `"1.0"`, string(decoded["specversion"]))

	var data models.Sample
	require.NoError(t, json.Unmarshal(decoded["data"], &data))
	assert.Equal(t, sample, data)
}

func TestBuildSampleEventUniqueIDs(t *testing.T) {
	sample := models.Sample{DeviceID: "dev-1"}

	first := buildSampleEvent(sample, defaultSubject)
	second := buildSampleEvent(sample, defaultSubject)

	assert.NotEqual(t, first.ID, second.ID)
}

// capturePublisher records published samples, dropping once the buffer
// fills so it never blocks the forwarder.
type capturePublisher struct {
	samples chan models.Sample
}

func (p *capturePublisher) PublishSample(_ context.Context, sample models.Sample) error {
	select {
	case p.samples <- sample:
	default:
	}

	return nil
}

func TestForwarderPublishesProducedSamples(t *testing.T) {
	sensor, err := simtemp.New(&simtemp.Config{DeviceID: "dev-fwd"}, nil, logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { sensor.SetEnabled(false) })

	publisher := &capturePublisher{samples: make(chan models.Sample, 16)}
	forwarder := NewForwarder(sensor, publisher, logger.NewTestLogger())

	require.NoError(t, forwarder.Start(context.Background()))

	t.Cleanup(func() { _ = forwarder.Stop(context.Background()) })

	require.NoError(t, sensor.SetRate(100))
	sensor.SetEnabled(true)

	var first, second models.Sample

	select {
	case first = <-publisher.samples:
	case <-time.After(2 * time.Second):
		t.Fatal("no sample forwarded")
	}

	select {
	case second = <-publisher.samples:
	case <-time.After(2 * time.Second):
		t.Fatal("no second sample forwarded")
	}

	assert.Equal(t, "dev-fwd", first.DeviceID)
	assert.Greater(t, second.SampleCount, first.SampleCount)

	require.NoError(t, forwarder.Stop(context.Background()))
}
