package interfaces

import (
	"context"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

type ThresholdRepository interface {
	// Get returns the stored threshold or the default one
	Get(ctx context.Context) (bbmmodels.Threshold, error)
	Set(ctx context.Context, low, high float64) (bbmmodels.Threshold, error)
	Reset(ctx context.Context)
}
