package implementation

import (
	"context"
	"math"
	"sync"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// MemoryThresholdRepository holds the single temperature threshold
type MemoryThresholdRepository struct {
	mu        sync.RWMutex
	threshold *bbmmodels.Threshold
	now       func() time.Time
}

func NewMemoryThresholdRepository() *MemoryThresholdRepository {
	return &MemoryThresholdRepository{now: time.Now}
}

func (r *MemoryThresholdRepository) Get(ctx context.Context) (bbmmodels.Threshold, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.threshold == nil {
		return bbmmodels.DefaultThreshold(r.now()), nil
	}
	return *r.threshold, nil
}

func (r *MemoryThresholdRepository) Set(ctx context.Context, low, high float64) (bbmmodels.Threshold, error) {
	if !finite(low) || !finite(high) {
		return bbmmodels.Threshold{}, bbmmodels.NewValidationError("threshold", "values must be finite numbers")
	}
	if low >= high {
		return bbmmodels.Threshold{}, bbmmodels.NewValidationError("threshold", "lowThreshold must be below highThreshold")
	}

	t := bbmmodels.Threshold{Low: low, High: high, UpdatedAt: r.now()}
	r.mu.Lock()
	r.threshold = &t
	r.mu.Unlock()
	return t, nil
}

func (r *MemoryThresholdRepository) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threshold = nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
