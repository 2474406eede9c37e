package implementation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

func sample(ts time.Time, room float64) bbmmodels.SensorSample {
	return bbmmodels.SensorSample{RoomTemperature: room, Humidity: 50, BabyTemperature: 36.6, Timestamp: ts}
}

func TestSensorHistoryEvictsOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySensorRepository(100)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 150; i++ {
		require.NoError(t, repo.Append(ctx, sample(base.Add(time.Duration(i)*time.Second), float64(i))))
	}

	assert.Equal(t, 100, repo.Len(ctx))
	all, err := repo.Query(ctx, interfaces.SensorQueryParams{Limit: 1000, Window: 24 * time.Hour})
	require.NoError(t, err)
	require.Len(t, all, 100)
	for i, s := range all {
		assert.Equal(t, float64(i+50), s.RoomTemperature)
	}

	cur, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(149), cur.RoomTemperature)
}

func TestSensorQueryWindowThenLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySensorRepository(100)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, sample(now.Add(-3*time.Hour), 1)))
	require.NoError(t, repo.Append(ctx, sample(now.Add(-90*time.Minute), 2)))
	require.NoError(t, repo.Append(ctx, sample(now.Add(-30*time.Minute), 3)))
	require.NoError(t, repo.Append(ctx, sample(now.Add(-10*time.Minute), 4)))

	got, err := repo.Query(ctx, interfaces.SensorQueryParams{Limit: 2, Window: 2 * time.Hour, Now: now})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, float64(3), got[0].RoomTemperature)
	assert.Equal(t, float64(4), got[1].RoomTemperature)

	got, err = repo.Query(ctx, interfaces.SensorQueryParams{Window: 2 * time.Hour, Now: now})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSensorQueryEmpty(t *testing.T) {
	repo := NewMemorySensorRepository(10)
	got, err := repo.Query(context.Background(), interfaces.SensorQueryParams{Window: time.Hour})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	cur, err := repo.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23.2, cur.RoomTemperature)
}

func TestThresholdStore(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryThresholdRepository()

	def, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 36.0, def.Low)
	assert.Equal(t, 38.0, def.High)

	_, err = repo.Set(ctx, 38, 36)
	assert.True(t, errors.Is(err, bbmmodels.ErrValidation))
	_, err = repo.Set(ctx, 37, 37)
	assert.True(t, errors.Is(err, bbmmodels.ErrValidation))
	_, err = repo.Set(ctx, math.NaN(), 37)
	assert.True(t, errors.Is(err, bbmmodels.ErrValidation))

	_, err = repo.Set(ctx, 36, 38)
	require.NoError(t, err)
	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 36.0, got.Low)
	assert.Equal(t, 38.0, got.High)

	_, err = repo.Set(ctx, 35.5, 37.5)
	require.NoError(t, err)
	got, _ = repo.Get(ctx)
	assert.Equal(t, 35.5, got.Low)

	repo.Reset(ctx)
	got, _ = repo.Get(ctx)
	assert.Equal(t, bbmmodels.DefaultThresholdLow, got.Low)
}

func TestAlertLedger(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAlertRepository()

	_, err := repo.Create(ctx, "   ", "", "")
	assert.True(t, errors.Is(err, bbmmodels.ErrValidation))
	_, err = repo.Create(ctx, "hot", "critical", "")
	assert.True(t, errors.Is(err, bbmmodels.ErrValidation))

	a, err := repo.Create(ctx, "Temp high", bbmmodels.AlertTypeWarning, bbmmodels.AlertPriorityHigh)
	require.NoError(t, err)
	assert.False(t, a.Read)
	assert.Nil(t, a.ReadAt)

	b, err := repo.Create(ctx, "Feeding", "", "")
	require.NoError(t, err)
	assert.Equal(t, bbmmodels.AlertTypeInfo, b.Type)
	assert.Equal(t, bbmmodels.AlertPriorityNormal, b.Priority)
	assert.Greater(t, b.ID, a.ID)

	list, err := repo.List(ctx, interfaces.AlertQueryParams{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	first, err := repo.MarkRead(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)
	second, err := repo.MarkRead(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, second.Read)
	assert.Equal(t, *first.ReadAt, *second.ReadAt)

	unread, err := repo.List(ctx, interfaces.AlertQueryParams{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, b.ID, unread[0].ID)

	_, err = repo.MarkRead(ctx, 12345)
	assert.True(t, errors.Is(err, bbmmodels.ErrNotFound))
}

func TestAlertListLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAlertRepository()
	for i := 0; i < 30; i++ {
		_, err := repo.Create(ctx, fmt.Sprintf("alert %d", i), "", "")
		require.NoError(t, err)
	}
	list, err := repo.List(ctx, interfaces.AlertQueryParams{})
	require.NoError(t, err)
	assert.Len(t, list, DefaultAlertLimit)
	assert.Equal(t, "alert 29", list[0].Message)

	list, err = repo.List(ctx, interfaces.AlertQueryParams{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestAlertIDsUniqueUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAlertRepository()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	var wg sync.WaitGroup
	ids := make(chan int64, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := repo.Create(ctx, "x", "", "")
			if err == nil {
				ids <- a.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 200)
	assert.Equal(t, 200, repo.Count(ctx))
}

func TestDetectionAudioFilesCapped(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDetectionRepository(100)
	base := time.Now()

	for i := 0; i < 110; i++ {
		ref := &bbmmodels.AudioFileRef{ID: fmt.Sprintf("id-%d", i), FilePath: fmt.Sprintf("/a/%d.wav", i), Timestamp: base.Add(time.Duration(i) * time.Second)}
		repo.RecordDetection(ctx, ref.Timestamp, ref)
	}

	all := repo.AllAudioFiles(ctx)
	require.Len(t, all, 100)
	assert.Equal(t, "id-109", all[0].ID)
	assert.Equal(t, "id-10", all[99].ID)
	assert.Equal(t, 110, repo.Snapshot(ctx).TotalDetections)

	_, err := repo.GetAudioFile(ctx, "id-5")
	assert.True(t, errors.Is(err, bbmmodels.ErrNotFound))

	page, total := repo.ListAudioFiles(ctx, 10, 95)
	assert.Equal(t, 100, total)
	assert.Len(t, page, 5)
	page, _ = repo.ListAudioFiles(ctx, 10, 200)
	assert.Empty(t, page)
	assert.Equal(t, 100, repo.CountAudioFiles(ctx))
}

func TestDetectionStateTransitions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDetectionRepository(10)
	now := time.Now()

	repo.MarkStarted(ctx, now)
	s := repo.Snapshot(ctx)
	assert.True(t, s.IsActive)
	require.NotNil(t, s.LastStartTime)

	repo.MarkStopped(ctx, now.Add(time.Minute))
	s = repo.Snapshot(ctx)
	assert.False(t, s.IsActive)
	require.NotNil(t, s.LastStopTime)

	repo.SetRemoteConnected(ctx, false, now)
	s = repo.Snapshot(ctx)
	require.NotNil(t, s.RemoteConnected)
	assert.False(t, *s.RemoteConnected)

	total := repo.RecordDetection(ctx, now, nil)
	assert.Equal(t, 1, total)
	assert.Empty(t, repo.AllAudioFiles(ctx))

	repo.Reset(ctx)
	assert.Equal(t, bbmmodels.DetectionState{}, repo.Snapshot(ctx))
}

func TestDetectionSyncActiveSkipsAfterCommand(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDetectionRepository(10)
	now := time.Now()

	seen := repo.Snapshot(ctx)
	assert.True(t, repo.SyncActive(ctx, true, seen))
	assert.True(t, repo.Snapshot(ctx).IsActive)

	seen = repo.Snapshot(ctx)
	repo.MarkStopped(ctx, now)
	assert.False(t, repo.SyncActive(ctx, true, seen))
	assert.False(t, repo.Snapshot(ctx).IsActive)

	seen = repo.Snapshot(ctx)
	repo.MarkStarted(ctx, now)
	assert.False(t, repo.SyncActive(ctx, false, seen), "same timestamp still counts as a new command")
	assert.True(t, repo.Snapshot(ctx).IsActive)

	assert.True(t, repo.SyncActive(ctx, false, repo.Snapshot(ctx)))
	assert.False(t, repo.Snapshot(ctx).IsActive)
}

func TestActivityRecordingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryActivityRepository()
	base := time.Now()

	_, err := repo.Append(ctx, bbmmodels.ActivityLog{Action: bbmmodels.ActionCameraSwitch, CameraType: bbmmodels.CameraInfrared, Timestamp: base})
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		_, err := repo.Append(ctx, bbmmodels.ActivityLog{Action: bbmmodels.ActionRecordingStarted, Timestamp: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	list, err := repo.ListRecordings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, DefaultRecordingLimit)
	assert.True(t, list[0].Timestamp.After(list[1].Timestamp))
	assert.Equal(t, 25, repo.CountRecordings(ctx))
}

func night(date string, hours float64) bbmmodels.SleepRecord {
	return bbmmodels.SleepRecord{Date: date, BedTime: "20:00", WakeTime: "06:30", SleepHours: hours}
}

func TestSleepRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySleepRepository()

	rec, err := repo.Create(ctx, night("2024-05-01", 10.5))
	require.NoError(t, err)
	assert.Contains(t, rec.ID, "sleep_")
	assert.Equal(t, 1, rec.BabyID)
	assert.Equal(t, bbmmodels.SleepQualityFair, rec.SleepQuality)
	assert.False(t, rec.CreatedAt.IsZero())

	hours := 12.0
	good := bbmmodels.SleepQualityGood
	updated, err := repo.Update(ctx, rec.ID, bbmmodels.SleepRecordPatch{SleepHours: &hours, SleepQuality: &good})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, 12.0, updated.SleepHours)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(rec.UpdatedAt))

	badDate := "yesterday"
	_, err = repo.Update(ctx, rec.ID, bbmmodels.SleepRecordPatch{Date: &badDate})
	assert.True(t, errors.Is(err, bbmmodels.ErrValidation))
	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", got.Date, "rejected patch leaves the record alone")

	require.NoError(t, repo.Delete(ctx, rec.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, rec.ID), bbmmodels.ErrNotFound))
	_, err = repo.Update(ctx, rec.ID, bbmmodels.SleepRecordPatch{})
	assert.True(t, errors.Is(err, bbmmodels.ErrNotFound))
	assert.Equal(t, 0, repo.Count(ctx))
}

func TestSleepRecordValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySleepRepository()

	tests := []struct {
		name  string
		rec   bbmmodels.SleepRecord
		field string
	}{
		{name: "missing date", rec: night("", 10), field: "date"},
		{name: "bad bed time", rec: bbmmodels.SleepRecord{Date: "2024-05-01", BedTime: "8pm", WakeTime: "06:30", SleepHours: 10}, field: "bedTime"},
		{name: "no hours", rec: night("2024-05-01", 0), field: "sleepHours"},
		{name: "too many hours", rec: night("2024-05-01", 25), field: "sleepHours"},
		{name: "bad quality", rec: bbmmodels.SleepRecord{Date: "2024-05-01", BedTime: "20:00", WakeTime: "06:30", SleepHours: 10, SleepQuality: "great"}, field: "sleepQuality"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.rec)
			var verr *bbmmodels.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 0, repo.Count(ctx))
}

func TestSleepListFiltersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySleepRepository()

	for _, d := range []string{"2024-05-03", "2024-05-01", "2024-05-05", "2024-05-02", "2024-05-04"} {
		_, err := repo.Create(ctx, night(d, 10))
		require.NoError(t, err)
	}
	other := night("2024-05-04", 9)
	other.BabyID = 2
	_, err := repo.Create(ctx, other)
	require.NoError(t, err)

	list, err := repo.List(ctx, interfaces.SleepQueryParams{BabyID: 1})
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "2024-05-05", list[0].Date)
	assert.Equal(t, "2024-05-01", list[4].Date)

	list, err = repo.List(ctx, interfaces.SleepQueryParams{BabyID: 1, From: "2024-05-02", To: "2024-05-04", Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-05-04", list[0].Date)
	assert.Equal(t, "2024-05-03", list[1].Date)

	list, err = repo.List(ctx, interfaces.SleepQueryParams{BabyID: 2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 9.0, list[0].SleepHours)

	repo.Reset(ctx)
	assert.Equal(t, 0, repo.Count(ctx))
}
