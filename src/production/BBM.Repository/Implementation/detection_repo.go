package implementation

import (
	"context"
	"sync"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// MemoryDetectionRepository holds the detector state and a newest-first,
// capped list of audio file references.
type MemoryDetectionRepository struct {
	mu         sync.RWMutex
	state      bbmmodels.DetectionState
	audioFiles []bbmmodels.AudioFileRef
	capacity   int
}

func NewMemoryDetectionRepository(audioCapacity int) *MemoryDetectionRepository {
	return &MemoryDetectionRepository{capacity: audioCapacity}
}

func (r *MemoryDetectionRepository) Snapshot(ctx context.Context) bbmmodels.DetectionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *MemoryDetectionRepository) MarkStarted(ctx context.Context, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.IsActive = true
	r.state.LastStartTime = &at
}

func (r *MemoryDetectionRepository) MarkStopped(ctx context.Context, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.IsActive = false
	r.state.LastStopTime = &at
}

// SyncActive applies a device-reported isActive unless a start or stop was
// recorded after seen was taken. Mark* always stores a fresh pointer, so
// pointer identity tells whether a command landed in between.
func (r *MemoryDetectionRepository) SyncActive(ctx context.Context, active bool, seen bbmmodels.DetectionState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.LastStartTime != seen.LastStartTime || r.state.LastStopTime != seen.LastStopTime {
		return false
	}
	r.state.IsActive = active
	return true
}

func (r *MemoryDetectionRepository) SetRemoteConnected(ctx context.Context, connected bool, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.RemoteConnected = &connected
	r.state.LastRemoteCheck = &at
}

func (r *MemoryDetectionRepository) RecordDetection(ctx context.Context, at time.Time, ref *bbmmodels.AudioFileRef) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.TotalDetections++
	r.state.LastDetection = &at

	if ref != nil {
		files := make([]bbmmodels.AudioFileRef, 0, min(len(r.audioFiles)+1, r.capacity))
		files = append(files, *ref)
		files = append(files, r.audioFiles...)
		if len(files) > r.capacity {
			files = files[:r.capacity]
		}
		r.audioFiles = files
	}
	return r.state.TotalDetections
}

// ListAudioFiles pages through the newest-first list and reports the total
func (r *MemoryDetectionRepository) ListAudioFiles(ctx context.Context, limit, offset int) ([]bbmmodels.AudioFileRef, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.audioFiles)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []bbmmodels.AudioFileRef{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]bbmmodels.AudioFileRef, end-offset)
	copy(out, r.audioFiles[offset:end])
	return out, total
}

func (r *MemoryDetectionRepository) CountAudioFiles(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.audioFiles)
}

func (r *MemoryDetectionRepository) AllAudioFiles(ctx context.Context) []bbmmodels.AudioFileRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]bbmmodels.AudioFileRef, len(r.audioFiles))
	copy(out, r.audioFiles)
	return out
}

func (r *MemoryDetectionRepository) GetAudioFile(ctx context.Context, id string) (*bbmmodels.AudioFileRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.audioFiles {
		if r.audioFiles[i].ID == id {
			ref := r.audioFiles[i]
			return &ref, nil
		}
	}
	return nil, bbmmodels.NewNotFoundError("audio file", id)
}

func (r *MemoryDetectionRepository) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = bbmmodels.DetectionState{}
	r.audioFiles = nil
}
