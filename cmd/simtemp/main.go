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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/carverauto/simtemp/pkg/api"
	"github.com/carverauto/simtemp/pkg/config"
	"github.com/carverauto/simtemp/pkg/events"
	"github.com/carverauto/simtemp/pkg/hostinfo"
	"github.com/carverauto/simtemp/pkg/lifecycle"
	"github.com/carverauto/simtemp/pkg/simtemp"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/simtemp/simtemp.json", "Path to simtemp config file")
	flag.Parse()

	ctx := context.Background()

	var cfg simtemp.Config

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mainLogger, err := lifecycle.CreateComponentLogger("simtemp", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	sensor, err := simtemp.New(&cfg, nil, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to create sensor: %w", err)
	}

	apiLogger, err := lifecycle.CreateComponentLogger("api", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	apiServer := api.NewAPIServer(cfg.HTTPAddr, sensor, apiLogger,
		api.WithAPIKey(cfg.APIKey),
		api.WithHostInfo(hostinfo.NewProvider(apiLogger)),
	)

	services := []lifecycle.Service{sensor, apiServer}

	if cfg.NATS != nil && cfg.NATS.URL != "" {
		eventsLogger, logErr := lifecycle.CreateComponentLogger("events", cfg.Logging)
		if logErr != nil {
			return fmt.Errorf("failed to create logger: %w", logErr)
		}

		publisher, nc, pubErr := events.ConnectPublisher(ctx, cfg.NATS, eventsLogger)
		if pubErr != nil {
			return fmt.Errorf("failed to connect event publisher: %w", pubErr)
		}

		defer nc.Close()

		services = append(services, events.NewForwarder(sensor, publisher, eventsLogger))
	}

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ListenAddr:        cfg.ListenAddr,
		ServiceName:       cfg.ServiceName,
		Services:          services,
		EnableHealthCheck: true,
		Logger:            mainLogger,
	})
}
