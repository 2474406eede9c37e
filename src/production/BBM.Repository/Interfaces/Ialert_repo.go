package interfaces

import (
	"context"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// AlertQueryParams filters the alert listing
type AlertQueryParams struct {
	Limit      int
	UnreadOnly bool
}

type AlertRepository interface {
	Create(ctx context.Context, message string, alertType bbmmodels.AlertType, priority bbmmodels.AlertPriority) (*bbmmodels.Alert, error)
	List(ctx context.Context, params AlertQueryParams) ([]bbmmodels.Alert, error)
	MarkRead(ctx context.Context, id int64) (*bbmmodels.Alert, error)
	Count(ctx context.Context) int
	Reset(ctx context.Context)
}
