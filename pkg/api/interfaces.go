package api

import (
	"context"
	"time"

	"github.com/carverauto/simtemp/pkg/models"
)

// SensorService is the control surface the API server maps named
// attributes onto. Range validation lives behind this interface, not in
// the HTTP layer.
type SensorService interface {
	Enabled() bool
	SetEnabled(v bool)
	Rate() uint32
	SetRate(hz uint32) error
	Threshold() int32
	SetThreshold(mc int32)
	Reading() int32
	ConsumeReady() bool
	WaitReady(ctx context.Context, timeout time.Duration) (bool, error)
	WaitSample(ctx context.Context, lastCount uint64) (models.Sample, error)
	Snapshot() models.SensorStatus
}

// HostInfoProvider supplies the host block attached to status payloads.
type HostInfoProvider interface {
	Collect(ctx context.Context) models.HostInfo
}
