package implementation

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

const DefaultAlertLimit = 20

// MemoryAlertRepository keeps alerts keyed by ID
type MemoryAlertRepository struct {
	mu     sync.RWMutex
	alerts map[int64]*bbmmodels.Alert
	ids    idGenerator
	now    func() time.Time
}

func NewMemoryAlertRepository() *MemoryAlertRepository {
	return &MemoryAlertRepository{
		alerts: make(map[int64]*bbmmodels.Alert),
		now:    time.Now,
	}
}

func (r *MemoryAlertRepository) Create(ctx context.Context, message string, alertType bbmmodels.AlertType, priority bbmmodels.AlertPriority) (*bbmmodels.Alert, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, bbmmodels.NewValidationError("message", "alert message is required")
	}
	if alertType == "" {
		alertType = bbmmodels.AlertTypeInfo
	}
	if !alertType.Valid() {
		return nil, bbmmodels.NewValidationError("type", "must be one of info, warning, error")
	}
	if priority == "" {
		priority = bbmmodels.AlertPriorityNormal
	}
	if !priority.Valid() {
		return nil, bbmmodels.NewValidationError("priority", "must be one of low, normal, high")
	}

	now := r.now()
	alert := &bbmmodels.Alert{
		ID:        r.ids.next(now),
		Message:   message,
		Type:      alertType,
		Priority:  priority,
		Timestamp: now,
	}

	r.mu.Lock()
	r.alerts[alert.ID] = alert
	r.mu.Unlock()

	out := *alert
	return &out, nil
}

// List returns alerts newest first
func (r *MemoryAlertRepository) List(ctx context.Context, params interfaces.AlertQueryParams) ([]bbmmodels.Alert, error) {
	limit := clampLimit(params.Limit, DefaultAlertLimit)

	r.mu.RLock()
	out := make([]bbmmodels.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if params.UnreadOnly && a.Read {
			continue
		}
		out = append(out, *a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkRead is idempotent; the first readAt is kept
func (r *MemoryAlertRepository) MarkRead(ctx context.Context, id int64) (*bbmmodels.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, bbmmodels.NewNotFoundError("alert", strconv.FormatInt(id, 10))
	}
	if !a.Read {
		now := r.now()
		a.Read = true
		a.ReadAt = &now
	}
	out := *a
	return &out, nil
}

func (r *MemoryAlertRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alerts)
}

func (r *MemoryAlertRepository) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = make(map[int64]*bbmmodels.Alert)
}
