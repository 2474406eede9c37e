package client

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// SimulatedDetector stands in for the Pi when no hardware is attached
type SimulatedDetector struct {
	mu     sync.Mutex
	active bool
}

func NewSimulatedDetector() *SimulatedDetector {
	return &SimulatedDetector{}
}

func (d *SimulatedDetector) BaseURL() string { return "simulated://detector" }

func (d *SimulatedDetector) Start(ctx context.Context) (*bbmmodels.CommandResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return &bbmmodels.CommandResult{Status: bbmmodels.CommandAlreadyRunning}, nil
	}
	d.active = true
	return &bbmmodels.CommandResult{Status: bbmmodels.CommandStarted}, nil
}

func (d *SimulatedDetector) Stop(ctx context.Context) (*bbmmodels.CommandResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return &bbmmodels.CommandResult{Status: bbmmodels.CommandAlreadyStopped}, nil
	}
	d.active = false
	return &bbmmodels.CommandResult{Status: bbmmodels.CommandStopped}, nil
}

func (d *SimulatedDetector) Status(ctx context.Context) (*bbmmodels.DeviceStatus, error) {
	d.mu.Lock()
	active := d.active
	d.mu.Unlock()
	return &bbmmodels.DeviceStatus{
		Active: &active,
		Raw:    map[string]interface{}{"isActive": active, "simulated": true},
	}, nil
}

func (d *SimulatedDetector) Health(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"status": "healthy", "simulated": true}, nil
}

func (d *SimulatedDetector) UpdateSettings(ctx context.Context, settings bbmmodels.DetectorSettings) (map[string]interface{}, error) {
	out := map[string]interface{}{"success": true}
	if settings.ConfidenceThreshold != nil {
		out["confidenceThreshold"] = *settings.ConfidenceThreshold
	}
	if settings.AudioSaving != nil {
		out["audioSaving"] = *settings.AudioSaving
	}
	return out, nil
}

func (d *SimulatedDetector) DownloadAudio(ctx context.Context, filePath string) (*bbmmodels.AudioDownload, error) {
	return nil, bbmmodels.NewNotFoundError("audio file", filePath)
}

// SimulatedSensors produces plausible nursery readings
type SimulatedSensors struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewSimulatedSensors() *SimulatedSensors {
	return &SimulatedSensors{
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (s *SimulatedSensors) BaseURL() string { return "simulated://sensors" }

// ReadAll returns room 20-26 °C, humidity 40-70 %, baby 36.0-38.5 °C
func (s *SimulatedSensors) ReadAll(ctx context.Context) (bbmmodels.SensorSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bbmmodels.SensorSample{
		RoomTemperature: round1(20 + s.rng.Float64()*6),
		Humidity:        math.Floor(40 + s.rng.Float64()*30),
		BabyTemperature: round1(36.0 + s.rng.Float64()*2.5),
		Timestamp:       s.now(),
	}, nil
}

func (s *SimulatedSensors) Health(ctx context.Context) error { return nil }

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
