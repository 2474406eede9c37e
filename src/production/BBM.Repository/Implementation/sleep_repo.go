package implementation

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

const DefaultSleepLimit = 30

// MemorySleepRepository keeps the sleep log keyed by record ID
type MemorySleepRepository struct {
	mu      sync.RWMutex
	records map[string]*bbmmodels.SleepRecord
	ids     idGenerator
	now     func() time.Time
}

func NewMemorySleepRepository() *MemorySleepRepository {
	return &MemorySleepRepository{
		records: make(map[string]*bbmmodels.SleepRecord),
		now:     time.Now,
	}
}

func (r *MemorySleepRepository) Create(ctx context.Context, record bbmmodels.SleepRecord) (*bbmmodels.SleepRecord, error) {
	if record.BabyID == 0 {
		record.BabyID = 1
	}
	if record.SleepQuality == "" {
		record.SleepQuality = bbmmodels.SleepQualityFair
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	record.ID = "sleep_" + strconv.FormatInt(r.ids.next(now), 10)
	record.CreatedAt = now
	record.UpdatedAt = now

	r.mu.Lock()
	r.records[record.ID] = &record
	r.mu.Unlock()

	out := record
	return &out, nil
}

func (r *MemorySleepRepository) Get(ctx context.Context, id string) (*bbmmodels.SleepRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, bbmmodels.NewNotFoundError("sleep record", id)
	}
	out := *rec
	return &out, nil
}

// List filters by baby and date window, newest date first. Dates are
// YYYY-MM-DD so string order is calendar order.
func (r *MemorySleepRepository) List(ctx context.Context, params interfaces.SleepQueryParams) ([]bbmmodels.SleepRecord, error) {
	limit := clampLimit(params.Limit, DefaultSleepLimit)

	r.mu.RLock()
	out := make([]bbmmodels.SleepRecord, 0, len(r.records))
	for _, rec := range r.records {
		if params.BabyID != 0 && rec.BabyID != params.BabyID {
			continue
		}
		if params.From != "" && rec.Date < params.From {
			continue
		}
		if params.To != "" && rec.Date > params.To {
			continue
		}
		out = append(out, *rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update keeps the ID, baby and creation time. A patch that leaves the
// record invalid is rejected and nothing changes.
func (r *MemorySleepRepository) Update(ctx context.Context, id string, patch bbmmodels.SleepRecordPatch) (*bbmmodels.SleepRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, bbmmodels.NewNotFoundError("sleep record", id)
	}
	updated := *rec
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.now()
	r.records[id] = &updated

	out := updated
	return &out, nil
}

func (r *MemorySleepRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return bbmmodels.NewNotFoundError("sleep record", id)
	}
	delete(r.records, id)
	return nil
}

func (r *MemorySleepRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *MemorySleepRepository) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]*bbmmodels.SleepRecord)
}
