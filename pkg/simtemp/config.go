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
	"fmt"

	"github.com/carverauto/simtemp/pkg/logger"
	"github.com/carverauto/simtemp/pkg/models"
	"github.com/google/uuid"
)

const (
	// Hardware-equivalent defaults, matching the device description values.
	defaultSamplingHz  = 2
	defaultThresholdMC = 45000
	defaultSeed        = 1

	minSamplingHz = 1
	maxSamplingHz = 100

	defaultListenAddr  = ":50080"
	defaultHTTPAddr    = ":8090"
	defaultServiceName = "simtemp"
)

var errListenerConflict = fmt.Errorf("grpc and http listeners must use distinct addresses")

// Config represents the sensor service configuration. SamplingHz,
// ThresholdMC and RNGSeed are optional startup overrides: only fields
// present in the source configuration are applied over the defaults.
type Config struct {
	ListenAddr  string             `json:"listen_addr"`
	HTTPAddr    string             `json:"http_addr"`
	ServiceName string             `json:"service_name"`
	DeviceID    string             `json:"device_id,omitempty"`
	SamplingHz  *uint32            `json:"sampling_hz,omitempty"`
	ThresholdMC *int32             `json:"threshold_mc,omitempty"`
	RNGSeed     *uint64            `json:"rng_seed,omitempty"`
	APIKey      string             `json:"api_key,omitempty"`
	NATS        *models.NATSConfig `json:"nats,omitempty"`
	Logging     *logger.Config     `json:"logging,omitempty"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = defaultHTTPAddr
	}

	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}

	if c.DeviceID == "" {
		c.DeviceID = uuid.NewString()
	}

	if c.SamplingHz != nil {
		if *c.SamplingHz < minSamplingHz || *c.SamplingHz > maxSamplingHz {
			return fmt.Errorf("%w: %d (expected %d..%d)", ErrInvalidRate, *c.SamplingHz, minSamplingHz, maxSamplingHz)
		}
	}

	if c.ListenAddr == c.HTTPAddr {
		return fmt.Errorf("%w: %q", errListenerConflict, c.ListenAddr)
	}

	return nil
}

// samplingHz returns the configured override or the default rate.
func (c *Config) samplingHz() uint32 {
	if c.SamplingHz != nil {
		return *c.SamplingHz
	}

	return defaultSamplingHz
}

// thresholdMC returns the configured override or the default threshold.
func (c *Config) thresholdMC() int32 {
	if c.ThresholdMC != nil {
		return *c.ThresholdMC
	}

	return defaultThresholdMC
}

// rngSeed returns the configured override or the default seed.
func (c *Config) rngSeed() uint64 {
	if c.RNGSeed != nil {
		return *c.RNGSeed
	}

	return defaultSeed
}
