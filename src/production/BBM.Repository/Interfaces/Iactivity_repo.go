package interfaces

import (
	"context"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

type ActivityRepository interface {
	// Append assigns an ID to entry and stores it
	Append(ctx context.Context, entry bbmmodels.ActivityLog) (bbmmodels.ActivityLog, error)
	NextID(now time.Time) int64
	ListRecordings(ctx context.Context, limit int) ([]bbmmodels.ActivityLog, error)
	CountRecordings(ctx context.Context) int
	Reset(ctx context.Context)
}
