package monitor

import (
	"context"
	"fmt"
	"time"

	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

const (
	DefaultHistoryLimit = 50
	DefaultHistoryHours = 24
)

// DeviceConnectivity reports whether the sensor board answered
type DeviceConnectivity struct {
	Connected bool      `json:"connected"`
	URL       string    `json:"jetsonUrl"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Service covers environment sensors, the temperature threshold and the
// camera/recording activity log.
type Service struct {
	sensors    interfaces.SensorRepository
	thresholds interfaces.ThresholdRepository
	activity   interfaces.ActivityRepository
	driver     interfaces.SensorDriver
	metrics    *metrics.Metrics
	logger     *logger.Logger
	now        func() time.Time
}

func NewService(
	sensors interfaces.SensorRepository,
	thresholds interfaces.ThresholdRepository,
	activity interfaces.ActivityRepository,
	driver interfaces.SensorDriver,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		sensors:    sensors,
		thresholds: thresholds,
		activity:   activity,
		driver:     driver,
		metrics:    m,
		logger:     log.WithComponent("monitor"),
		now:        time.Now,
	}
}

// ReadSensors takes a fresh reading and appends it to history
func (s *Service) ReadSensors(ctx context.Context) (bbmmodels.SensorSample, error) {
	sample, err := s.driver.ReadAll(ctx)
	if err != nil {
		s.metrics.RemoteCall("sensors", "error")
		return bbmmodels.SensorSample{}, fmt.Errorf("read sensors: %w", err)
	}
	s.metrics.RemoteCall("sensors", "ok")
	if sample.Timestamp.IsZero() {
		sample.Timestamp = s.now()
	}
	if err := s.sensors.Append(ctx, sample); err != nil {
		return bbmmodels.SensorSample{}, fmt.Errorf("store sample: %w", err)
	}
	s.metrics.SensorSample()
	return sample, nil
}

func (s *Service) Current(ctx context.Context) (bbmmodels.SensorSample, error) {
	return s.sensors.Current(ctx)
}

// History returns up to limit samples from the last hours hours
func (s *Service) History(ctx context.Context, limit, hours int) ([]bbmmodels.SensorSample, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if hours <= 0 {
		hours = DefaultHistoryHours
	}
	return s.sensors.Query(ctx, interfaces.SensorQueryParams{
		Limit:  limit,
		Window: time.Duration(hours) * time.Hour,
		Now:    s.now(),
	})
}

func (s *Service) GetThreshold(ctx context.Context) (bbmmodels.Threshold, error) {
	return s.thresholds.Get(ctx)
}

func (s *Service) SetThreshold(ctx context.Context, low, high float64) (bbmmodels.Threshold, error) {
	t, err := s.thresholds.Set(ctx, low, high)
	if err != nil {
		return bbmmodels.Threshold{}, err
	}
	s.logger.Logger.Info().Float64("low", low).Float64("high", high).Msg("Temperature threshold updated")
	return t, nil
}

// SwitchCamera logs a switch between the normal and infrared cameras
func (s *Service) SwitchCamera(ctx context.Context, cameraType string) (bbmmodels.ActivityLog, error) {
	if cameraType != bbmmodels.CameraNormal && cameraType != bbmmodels.CameraInfrared {
		return bbmmodels.ActivityLog{}, bbmmodels.NewValidationError("cameraType", "must be normal or infrared")
	}
	ok := true
	return s.activity.Append(ctx, bbmmodels.ActivityLog{
		Action:     bbmmodels.ActionCameraSwitch,
		CameraType: cameraType,
		Timestamp:  s.now(),
		Success:    &ok,
	})
}

func (s *Service) StartRecording(ctx context.Context) (bbmmodels.ActivityLog, error) {
	now := s.now()
	id := s.activity.NextID(now)
	entry, err := s.activity.Append(ctx, bbmmodels.ActivityLog{
		ID:        id,
		Action:    bbmmodels.ActionRecordingStarted,
		Timestamp: now,
		Filename:  fmt.Sprintf("baby_recording_%d.mp4", id),
	})
	if err != nil {
		return bbmmodels.ActivityLog{}, err
	}
	s.logger.Logger.Info().Str("filename", entry.Filename).Msg("Recording started")
	return entry, nil
}

func (s *Service) StopRecording(ctx context.Context) (bbmmodels.ActivityLog, error) {
	return s.activity.Append(ctx, bbmmodels.ActivityLog{
		Action:    bbmmodels.ActionRecordingStopped,
		Timestamp: s.now(),
	})
}

func (s *Service) ListRecordings(ctx context.Context, limit int) ([]bbmmodels.ActivityLog, error) {
	return s.activity.ListRecordings(ctx, limit)
}

// DeviceStatus asks the sensor board for its health; failures are reported, not returned
func (s *Service) DeviceStatus(ctx context.Context) DeviceConnectivity {
	out := DeviceConnectivity{URL: s.driver.BaseURL(), Timestamp: s.now()}
	if err := s.driver.Health(ctx); err != nil {
		s.metrics.RemoteCall("sensor-health", "error")
		out.Error = err.Error()
		return out
	}
	s.metrics.RemoteCall("sensor-health", "ok")
	out.Connected = true
	return out
}

// HasSamples reports whether any reading reached history
func (s *Service) HasSamples(ctx context.Context) bool {
	return s.sensors.Len(ctx) > 0
}
