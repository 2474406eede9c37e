package implementation

import (
	"context"
	"sort"
	"sync"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

const DefaultRecordingLimit = 20

// MemoryActivityRepository stores camera and recording logs
type MemoryActivityRepository struct {
	mu         sync.RWMutex
	cameraLogs []bbmmodels.ActivityLog
	recordings []bbmmodels.ActivityLog
	ids        idGenerator
}

func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{}
}

// NextID reserves an ID so callers can derive filenames before appending
func (r *MemoryActivityRepository) NextID(now time.Time) int64 {
	return r.ids.next(now)
}

func (r *MemoryActivityRepository) Append(ctx context.Context, entry bbmmodels.ActivityLog) (bbmmodels.ActivityLog, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.ID == 0 {
		entry.ID = r.ids.next(entry.Timestamp)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch entry.Action {
	case bbmmodels.ActionCameraSwitch:
		r.cameraLogs = append(r.cameraLogs, entry)
	default:
		r.recordings = append(r.recordings, entry)
	}
	return entry, nil
}

// ListRecordings returns recording logs newest first
func (r *MemoryActivityRepository) ListRecordings(ctx context.Context, limit int) ([]bbmmodels.ActivityLog, error) {
	limit = clampLimit(limit, DefaultRecordingLimit)

	r.mu.RLock()
	out := make([]bbmmodels.ActivityLog, len(r.recordings))
	copy(out, r.recordings)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
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

func (r *MemoryActivityRepository) CountRecordings(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recordings)
}

func (r *MemoryActivityRepository) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameraLogs = nil
	r.recordings = nil
}
