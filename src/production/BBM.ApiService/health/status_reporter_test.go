package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	implementation "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Implementation"
)

func TestSnapshotEmpty(t *testing.T) {
	r := NewStatusReporter(nil, nil, nil, nil, "test", "1.0.0")
	snap := r.Snapshot(context.Background())

	assert.Equal(t, "healthy", snap.Status)
	assert.Equal(t, "unknown", snap.Services.Detector)
	assert.Equal(t, "inactive", snap.Services.SensorData)
	assert.Equal(t, "memory-based", snap.Services.Database)
	assert.Equal(t, DataPointCounters{}, snap.DataPoints)
}

func TestSnapshotCounts(t *testing.T) {
	ctx := context.Background()
	sensors := implementation.NewMemorySensorRepository(100)
	alerts := implementation.NewMemoryAlertRepository()
	activity := implementation.NewMemoryActivityRepository()
	detection := implementation.NewMemoryDetectionRepository(100)

	require.NoError(t, sensors.Append(ctx, bbmmodels.SensorSample{Timestamp: time.Now()}))
	_, err := alerts.Create(ctx, "hi", "", "")
	require.NoError(t, err)
	_, err = activity.Append(ctx, bbmmodels.ActivityLog{Action: bbmmodels.ActionRecordingStarted})
	require.NoError(t, err)
	detection.RecordDetection(ctx, time.Now(), &bbmmodels.AudioFileRef{ID: "a", FilePath: "/a.wav"})
	detection.MarkStarted(ctx, time.Now())
	detection.SetRemoteConnected(ctx, false, time.Now())

	snap := NewStatusReporter(sensors, alerts, activity, detection, "test", "1.0.0").Snapshot(ctx)
	assert.Equal(t, DataPointCounters{SensorHistory: 1, Alerts: 1, Recordings: 1, AudioFiles: 1}, snap.DataPoints)
	assert.Equal(t, "active", snap.Services.SensorData)
	assert.Equal(t, "disconnected", snap.Services.Detector)
	assert.True(t, snap.Detection.IsActive)
	assert.Equal(t, 1, snap.Detection.TotalDetections)

	detection.SetRemoteConnected(ctx, true, time.Now())
	snap = NewStatusReporter(sensors, alerts, activity, detection, "test", "1.0.0").Snapshot(ctx)
	assert.Equal(t, "connected", snap.Services.Detector)
}

// countingDetectionRepo fails the test if the reporter copies the audio list
type countingDetectionRepo struct {
	*implementation.MemoryDetectionRepository
	t *testing.T
}

func (r countingDetectionRepo) ListAudioFiles(ctx context.Context, limit, offset int) ([]bbmmodels.AudioFileRef, int) {
	r.t.Error("snapshot should count audio files, not list them")
	return r.MemoryDetectionRepository.ListAudioFiles(ctx, limit, offset)
}

func (r countingDetectionRepo) AllAudioFiles(ctx context.Context) []bbmmodels.AudioFileRef {
	r.t.Error("snapshot should count audio files, not copy them")
	return r.MemoryDetectionRepository.AllAudioFiles(ctx)
}

func TestSnapshotCountsAudioFilesWithoutCopying(t *testing.T) {
	ctx := context.Background()
	detection := implementation.NewMemoryDetectionRepository(5)
	for i := 0; i < 8; i++ {
		detection.RecordDetection(ctx, time.Now(), &bbmmodels.AudioFileRef{ID: string(rune('a' + i)), FilePath: "/x.wav"})
	}

	snap := NewStatusReporter(nil, nil, nil, countingDetectionRepo{detection, t}, "test", "1.0.0").Snapshot(ctx)
	assert.Equal(t, 5, snap.DataPoints.AudioFiles)
	assert.Equal(t, 8, snap.Detection.TotalDetections)
}
