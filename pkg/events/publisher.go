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

// Package events publishes produced samples as CloudEvents over NATS
// JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/simtemp/pkg/logger"
	"github.com/carverauto/simtemp/pkg/models"
)

const (
	defaultStream  = "events"
	defaultSubject = "events.simtemp.sample"

	eventSource = "simtemp/sensor"
	eventType   = "com.carverauto.simtemp.sample"
)

// EventPublisher publishes sample CloudEvents to a JetStream stream.
type EventPublisher struct {
	js      jetstream.JetStream
	stream  string
	subject string
	logger  logger.Logger
}

// NewEventPublisher creates a publisher on an existing JetStream context.
func NewEventPublisher(js jetstream.JetStream, stream, subject string, log logger.Logger) *EventPublisher {
	if stream == "" {
		stream = defaultStream
	}

	if subject == "" {
		subject = defaultSubject
	}

	return &EventPublisher{
		js:      js,
		stream:  stream,
		subject: subject,
		logger:  log,
	}
}

// ConnectPublisher connects to NATS, ensures the stream exists and
// returns a ready publisher. The caller owns the returned connection.
func ConnectPublisher(ctx context.Context, config *models.NATSConfig, log logger.Logger, opts ...nats.Option) (*EventPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var js jetstream.JetStream

	if config.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, config.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	publisher := NewEventPublisher(js, config.Stream, config.Subject, log)

	if _, err = js.Stream(ctx, publisher.stream); err != nil {
		// Create the stream when it does not exist yet.
		streamConfig := jetstream.StreamConfig{
			Name:     publisher.stream,
			Subjects: []string{"events.simtemp.>"},
		}

		if _, err = js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("failed to create or get stream %s: %w", publisher.stream, err)
		}

		log.Info().Str("stream", publisher.stream).Msg("Created JetStream stream")
	}

	return publisher, nc, nil
}

// PublishSample publishes one sample as a CloudEvent.
func (p *EventPublisher) PublishSample(ctx context.Context, sample models.Sample) error {
	event := buildSampleEvent(sample, p.subject)

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sample event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish sample event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published sample event")

	return nil
}

func buildSampleEvent(sample models.Sample, subject string) models.CloudEvent {
	ts := sample.Timestamp

	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &ts,
		Data:            sample,
	}
}
