package implementation

import (
	"context"
	"sync"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

const DefaultHistoryLimit = 50

// MemorySensorRepository is a bounded FIFO of sensor samples
type MemorySensorRepository struct {
	mu       sync.RWMutex
	capacity int
	samples  []bbmmodels.SensorSample
	current  bbmmodels.SensorSample
	now      func() time.Time
}

func NewMemorySensorRepository(capacity int) *MemorySensorRepository {
	r := &MemorySensorRepository{capacity: capacity, now: time.Now}
	r.current = bbmmodels.BaselineSample(r.now())
	return r
}

func (r *MemorySensorRepository) Append(ctx context.Context, sample bbmmodels.SensorSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, sample)
	if over := len(r.samples) - r.capacity; over > 0 {
		// copy down so the backing array does not grow without bound
		n := copy(r.samples, r.samples[over:])
		r.samples = r.samples[:n]
	}
	r.current = sample
	return nil
}

// Query keeps samples inside the window, then returns the newest Limit of
// them in chronological order.
func (r *MemorySensorRepository) Query(ctx context.Context, params interfaces.SensorQueryParams) ([]bbmmodels.SensorSample, error) {
	limit := clampLimit(params.Limit, DefaultHistoryLimit)
	now := params.Now
	if now.IsZero() {
		now = r.now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]bbmmodels.SensorSample, 0, len(r.samples))
	for _, s := range r.samples {
		if params.Window > 0 && s.Timestamp.Before(now.Add(-params.Window)) {
			continue
		}
		filtered = append(filtered, s)
	}
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered, nil
}

func (r *MemorySensorRepository) Current(ctx context.Context) (bbmmodels.SensorSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, nil
}

func (r *MemorySensorRepository) Len(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.samples)
}

func (r *MemorySensorRepository) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
	r.current = bbmmodels.BaselineSample(r.now())
}
