package interfaces

import (
	"context"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// SensorQueryParams filters the sensor history
type SensorQueryParams struct {
	Limit  int
	Window time.Duration
	Now    time.Time
}

type SensorRepository interface {
	// Append stores a sample and evicts the oldest beyond capacity
	Append(ctx context.Context, sample bbmmodels.SensorSample) error
	Query(ctx context.Context, params SensorQueryParams) ([]bbmmodels.SensorSample, error)
	Current(ctx context.Context) (bbmmodels.SensorSample, error)
	Len(ctx context.Context) int
	Reset(ctx context.Context)
}
