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
	"errors"
	"sync"

	"github.com/carverauto/simtemp/pkg/logger"
	"github.com/carverauto/simtemp/pkg/models"
)

// SampleSource is the slice of the sensor the forwarder follows.
type SampleSource interface {
	WaitSample(ctx context.Context, lastCount uint64) (models.Sample, error)
	Snapshot() models.SensorStatus
}

// SamplePublisher publishes a single sample downstream.
type SamplePublisher interface {
	PublishSample(ctx context.Context, sample models.Sample) error
}

// Forwarder follows the sample counter and publishes every produced
// sample. It implements lifecycle.Service.
type Forwarder struct {
	source    SampleSource
	publisher SamplePublisher
	logger    logger.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
}

// NewForwarder creates a forwarder over the given source and publisher.
func NewForwarder(source SampleSource, publisher SamplePublisher, log logger.Logger) *Forwarder {
	return &Forwarder{
		source:    source,
		publisher: publisher,
		logger:    log,
	}
}

// Start implements lifecycle.Service.
func (f *Forwarder) Start(_ context.Context) error {
	f.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(context.Background())
		f.cancel = cancel

		f.wg.Add(1)

		go f.run(runCtx)
	})

	return nil
}

// Stop implements lifecycle.Service. It returns once the forwarding
// goroutine has exited.
func (f *Forwarder) Stop(_ context.Context) error {
	if f.cancel != nil {
		f.cancel()
	}

	f.wg.Wait()

	return nil
}

func (f *Forwarder) run(ctx context.Context) {
	defer f.wg.Done()

	f.logger.Info().Msg("Sample event forwarder started")

	last := f.source.Snapshot().SampleCount

	for {
		sample, err := f.source.WaitSample(ctx, last)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				f.logger.Error().Err(err).Msg("Sample wait failed")
			}

			f.logger.Info().Msg("Sample event forwarder stopped")

			return
		}

		last = sample.SampleCount

		if err := f.publisher.PublishSample(ctx, sample); err != nil {
			// Publishing is best-effort: a broker hiccup must not stall
			// the sensor or drop the forwarder.
			f.logger.Error().
				Err(err).
				Uint64("sample_count", sample.SampleCount).
				Msg("Failed to publish sample event")
		}
	}
}
