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

// Package lifecycle manages service startup and graceful shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	googlegrpc "google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/carverauto/simtemp/pkg/grpc"
	"github.com/carverauto/simtemp/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
)

var errStartup = errors.New("startup failed")

// Service is a component with a managed lifetime. Stop must be safe to
// call after a failed Start.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// GRPCServiceRegistrar registers gRPC services with the server.
type GRPCServiceRegistrar func(*googlegrpc.Server) error

// ServerOptions holds configuration for RunServer.
type ServerOptions struct {
	ListenAddr           string
	ServiceName          string
	Services             []Service
	RegisterGRPCServices []GRPCServiceRegistrar
	EnableHealthCheck    bool
	Logger               logger.Logger
}

// RunServer starts the gRPC server and all managed services, then blocks
// until the context is canceled or a shutdown signal arrives. Services
// are stopped in reverse start order.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grpcServer := grpc.NewServer(opts.ListenAddr, log)

	for _, register := range opts.RegisterGRPCServices {
		if err := register(grpcServer.GetGRPCServer()); err != nil {
			return fmt.Errorf("failed to register gRPC service: %w", err)
		}
	}

	if opts.EnableHealthCheck {
		if err := grpcServer.RegisterHealthServer(); err != nil {
			return fmt.Errorf("failed to register health server: %w", err)
		}

		grpcServer.GetHealthCheck().SetServingStatus(opts.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	started, err := startServices(sigCtx, opts.Services)
	if err != nil {
		stopServices(started, log)
		return err
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- grpcServer.Start()
	}()

	var runErr error

	select {
	case <-sigCtx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			log.Error().Err(runErr).Msg("gRPC server exited with error")
		}
	}

	if opts.EnableHealthCheck {
		grpcServer.GetHealthCheck().SetServingStatus(opts.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	stopServices(started, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcServer.Stop(shutdownCtx)

	return runErr
}

func startServices(ctx context.Context, services []Service) ([]Service, error) {
	started := make([]Service, 0, len(services))

	for _, svc := range services {
		if err := svc.Start(ctx); err != nil {
			return started, fmt.Errorf("%w: %w", errStartup, err)
		}

		started = append(started, svc)
	}

	return started, nil
}

// stopServices stops services in reverse start order so dependents go
// down before their dependencies.
func stopServices(services []Service, log logger.Logger) {
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("Service stop failed")
		}
	}
}
