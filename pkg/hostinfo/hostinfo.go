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

// Package hostinfo collects host identity and memory figures attached to
// sensor status payloads.
package hostinfo

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/carverauto/simtemp/pkg/logger"
	"github.com/carverauto/simtemp/pkg/models"
)

// Provider collects host info via gopsutil.
type Provider struct {
	logger logger.Logger
}

// NewProvider creates a host info provider.
func NewProvider(log logger.Logger) *Provider {
	return &Provider{logger: log}
}

// Collect gathers host identity and memory usage. Collection failures
// are logged and leave the affected fields zeroed; status reporting must
// not fail because a host probe did.
func (p *Provider) Collect(ctx context.Context) models.HostInfo {
	var info models.HostInfo

	if hostStats, err := host.InfoWithContext(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("host info collection failed")
	} else {
		info.Hostname = hostStats.Hostname
		info.HostID = hostStats.HostID
		info.UptimeSecs = hostStats.Uptime
	}

	if vmStats, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("memory collection failed; reporting zeroes")
	} else {
		info.MemoryTotal = vmStats.Total
		info.MemoryUsed = vmStats.Used
	}

	return info
}
