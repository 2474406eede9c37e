package health

import (
	"context"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

// StatusReporter composes a health snapshot from the in-memory stores.
// It reads only and never fails; a missing store counts as empty.
type StatusReporter struct {
	sensors     interfaces.SensorRepository
	alerts      interfaces.AlertRepository
	activity    interfaces.ActivityRepository
	detection   interfaces.DetectionRepository
	environment string
	version     string
	startedAt   time.Time
	now         func() time.Time
}

// Snapshot is the /api/health body
type Snapshot struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment"`
	Version     string            `json:"version"`
	Uptime      string            `json:"uptime"`
	Services    ServiceStates     `json:"services"`
	Detection   DetectionSummary  `json:"detection"`
	DataPoints  DataPointCounters `json:"dataPoints"`
}

type ServiceStates struct {
	SensorData string `json:"sensorData"`
	Detector   string `json:"detector"`
	Database   string `json:"database"`
}

type DetectionSummary struct {
	IsActive        bool       `json:"isActive"`
	TotalDetections int        `json:"totalDetections"`
	LastDetection   *time.Time `json:"lastDetection"`
	LastStartTime   *time.Time `json:"lastStartTime"`
	LastStopTime    *time.Time `json:"lastStopTime"`
}

type DataPointCounters struct {
	SensorHistory int `json:"sensorHistory"`
	Alerts        int `json:"alerts"`
	Recordings    int `json:"recordings"`
	AudioFiles    int `json:"audioFiles"`
}

func NewStatusReporter(
	sensors interfaces.SensorRepository,
	alerts interfaces.AlertRepository,
	activity interfaces.ActivityRepository,
	detection interfaces.DetectionRepository,
	environment, version string,
) *StatusReporter {
	return &StatusReporter{
		sensors:     sensors,
		alerts:      alerts,
		activity:    activity,
		detection:   detection,
		environment: environment,
		version:     version,
		startedAt:   time.Now(),
		now:         time.Now,
	}
}

func (r *StatusReporter) Snapshot(ctx context.Context) Snapshot {
	now := r.now()
	snap := Snapshot{
		Status:      "healthy",
		Timestamp:   now,
		Environment: r.environment,
		Version:     r.version,
		Uptime:      now.Sub(r.startedAt).Round(time.Second).String(),
		Services: ServiceStates{
			SensorData: "inactive",
			Detector:   "unknown",
			Database:   "memory-based",
		},
	}

	if r.sensors != nil {
		snap.DataPoints.SensorHistory = r.sensors.Len(ctx)
		if snap.DataPoints.SensorHistory > 0 {
			snap.Services.SensorData = "active"
		}
	}
	if r.alerts != nil {
		snap.DataPoints.Alerts = r.alerts.Count(ctx)
	}
	if r.activity != nil {
		snap.DataPoints.Recordings = r.activity.CountRecordings(ctx)
	}
	if r.detection != nil {
		st := r.detection.Snapshot(ctx)
		snap.Services.Detector = connectivity(st)
		snap.Detection = DetectionSummary{
			IsActive:        st.IsActive,
			TotalDetections: st.TotalDetections,
			LastDetection:   st.LastDetection,
			LastStartTime:   st.LastStartTime,
			LastStopTime:    st.LastStopTime,
		}
		snap.DataPoints.AudioFiles = r.detection.CountAudioFiles(ctx)
	}
	return snap
}

func connectivity(st bbmmodels.DetectionState) string {
	switch {
	case st.RemoteConnected == nil:
		return "unknown"
	case *st.RemoteConnected:
		return "connected"
	default:
		return "disconnected"
	}
}
