package interfaces

import (
	"context"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// SleepQueryParams filters the sleep log. From and To are inclusive
// YYYY-MM-DD bounds; empty means open.
type SleepQueryParams struct {
	BabyID int
	From   string
	To     string
	Limit  int
}

type SleepRepository interface {
	// Create assigns the ID and timestamps and stores the record
	Create(ctx context.Context, record bbmmodels.SleepRecord) (*bbmmodels.SleepRecord, error)
	Get(ctx context.Context, id string) (*bbmmodels.SleepRecord, error)

	// List returns matching records newest date first
	List(ctx context.Context, params SleepQueryParams) ([]bbmmodels.SleepRecord, error)

	// Update applies the patch and validates the result before storing it
	Update(ctx context.Context, id string, patch bbmmodels.SleepRecordPatch) (*bbmmodels.SleepRecord, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) int
	Reset(ctx context.Context)
}
