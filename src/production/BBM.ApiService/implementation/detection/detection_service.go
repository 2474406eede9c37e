package detection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

const (
	DefaultAudioFileLimit = 50
	MaxAudioFileLimit     = 100

	unknownSource = "unknown"
	statusWarning = "Unable to reach the detector device; showing the last known state."
)

// CommandOutcome is returned by a successful start or stop
type CommandOutcome struct {
	Status       string
	DeviceStatus string
	Timestamp    time.Time
}

// StatusReport is the detector state plus what the device said, or a
// warning when the device could not be asked.
type StatusReport struct {
	State        bbmmodels.DetectionState
	DeviceStatus map[string]interface{}
	Warning      string
}

// ConnectionReport is the result of calling the detector's health endpoint
type ConnectionReport struct {
	Connected bool
	URL       string
	Response  map[string]interface{}
	Err       error
}

// AudioFilePage is one page of the newest-first audio file list
type AudioFilePage struct {
	Files  []bbmmodels.AudioFileRef
	Total  int
	Limit  int
	Offset int
}

// Service is the cry detection state machine. Start and Stop go through the
// device and are serialised; Status and the read paths never wait on them.
type Service struct {
	repo    interfaces.DetectionRepository
	driver  interfaces.DetectorDriver
	metrics *metrics.Metrics
	logger  *logger.Logger

	cmdMu sync.Mutex
	now   func() time.Time
}

func NewService(repo interfaces.DetectionRepository, driver interfaces.DetectorDriver, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		driver:  driver,
		metrics: m,
		logger:  log.WithComponent("detection"),
		now:     time.Now,
	}
}

var (
	startAccepted = map[string]bool{bbmmodels.CommandStarted: true, bbmmodels.CommandAlreadyRunning: true}
	stopAccepted  = map[string]bool{bbmmodels.CommandStopped: true, bbmmodels.CommandNotRunning: true, bbmmodels.CommandAlreadyStopped: true}
)

// Start asks the device to begin detecting. Local state only changes when the
// device confirms.
func (s *Service) Start(ctx context.Context) (*CommandOutcome, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	res, err := s.command(ctx, "start", s.driver.Start, startAccepted)
	if err != nil {
		return nil, err
	}

	at := s.now()
	s.repo.MarkStarted(ctx, at)
	s.metrics.SetDetectionActive(true)
	s.logger.Logger.Info().Str("device_status", res.Status).Msg("Cry detection started")
	return &CommandOutcome{Status: bbmmodels.CommandStarted, DeviceStatus: res.Status, Timestamp: at}, nil
}

// Stop asks the device to stop detecting
func (s *Service) Stop(ctx context.Context) (*CommandOutcome, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	res, err := s.command(ctx, "stop", s.driver.Stop, stopAccepted)
	if err != nil {
		return nil, err
	}

	at := s.now()
	s.repo.MarkStopped(ctx, at)
	s.metrics.SetDetectionActive(false)
	s.logger.Logger.Info().Str("device_status", res.Status).Msg("Cry detection stopped")
	return &CommandOutcome{Status: bbmmodels.CommandStopped, DeviceStatus: res.Status, Timestamp: at}, nil
}

func (s *Service) command(ctx context.Context, op string, call func(context.Context) (*bbmmodels.CommandResult, error), accepted map[string]bool) (*bbmmodels.CommandResult, error) {
	res, err := call(ctx)
	if err == nil && !accepted[res.Status] {
		err = &bbmmodels.RemoteError{
			Op:   op,
			Kind: bbmmodels.RemoteUnexpectedResponse,
			Err:  fmt.Errorf("device reported status %q", res.Status),
		}
	}
	s.observe(ctx, op, err)
	if err != nil {
		s.logger.Logger.Error().Err(err).Str("op", op).Msg("Detector command failed")
		return nil, err
	}
	return res, nil
}

// Status resyncs isActive from the device. It never fails: when the device
// cannot be reached the last local state is returned with a warning.
// A start or stop confirmed while the status call was in flight wins over
// the device's older answer.
func (s *Service) Status(ctx context.Context) *StatusReport {
	before := s.repo.Snapshot(ctx)
	st, err := s.driver.Status(ctx)
	s.observe(ctx, "status", err)
	if err != nil {
		s.logger.Logger.Warn().Err(err).Msg("Detector status unavailable, returning local state")
		return &StatusReport{State: s.repo.Snapshot(ctx), Warning: statusWarning}
	}

	if st.Active != nil {
		if s.repo.SyncActive(ctx, *st.Active, before) {
			s.metrics.SetDetectionActive(*st.Active)
		} else {
			s.logger.Logger.Debug().Bool("device_active", *st.Active).Msg("Skipped stale detector status")
		}
	}
	return &StatusReport{State: s.repo.Snapshot(ctx), DeviceStatus: st.Raw}
}

// RecordDetectionEvent stores an event reported by a detector. It does not
// touch the device and always succeeds.
func (s *Service) RecordDetectionEvent(ctx context.Context, ev bbmmodels.DetectionEvent) int {
	at := ev.Timestamp
	if at.IsZero() {
		at = s.now()
	}
	source := strings.TrimSpace(ev.Source)
	if source == "" {
		source = unknownSource
	}
	confidence := clampConfidence(ev.Confidence)

	var ref *bbmmodels.AudioFileRef
	if ev.AudioFilePath != "" {
		ref = &bbmmodels.AudioFileRef{
			ID:         uuid.NewString(),
			FilePath:   ev.AudioFilePath,
			Timestamp:  at,
			Confidence: confidence,
			Source:     source,
			Size:       ev.Size,
			Duration:   ev.Duration,
		}
	}

	total := s.repo.RecordDetection(ctx, at, ref)
	s.metrics.DetectionEvent(source)
	s.logger.Logger.Info().
		Str("source", source).
		Float64("confidence", confidence).
		Bool("audio_file", ref != nil).
		Int("total", total).
		Msg("Cry detected")
	return total
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Max(0, math.Min(100, c))
}

func (s *Service) Snapshot(ctx context.Context) bbmmodels.DetectionState {
	return s.repo.Snapshot(ctx)
}

func (s *Service) History(ctx context.Context) bbmmodels.DetectionHistory {
	st := s.repo.Snapshot(ctx)
	return bbmmodels.DetectionHistory{
		TotalDetections:   st.TotalDetections,
		LastDetection:     st.LastDetection,
		IsCurrentlyActive: st.IsActive,
		LastStartTime:     st.LastStartTime,
		LastStopTime:      st.LastStopTime,
	}
}

// ListAudioFiles pages through saved clips, newest first
func (s *Service) ListAudioFiles(ctx context.Context, limit, offset int) AudioFilePage {
	if limit <= 0 {
		limit = DefaultAudioFileLimit
	}
	if limit > MaxAudioFileLimit {
		limit = MaxAudioFileLimit
	}
	if offset < 0 {
		offset = 0
	}
	files, total := s.repo.ListAudioFiles(ctx, limit, offset)
	return AudioFilePage{Files: files, Total: total, Limit: limit, Offset: offset}
}

// AudioStats buckets clips by local calendar day and over the last 7 days
func (s *Service) AudioStats(ctx context.Context) bbmmodels.AudioStats {
	now := s.now()
	files := s.repo.AllAudioFiles(ctx)

	y, m, d := now.Date()
	todayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := now.AddDate(0, 0, -7)

	stats := bbmmodels.AudioStats{Total: len(files), AverageConfidence: "0.0"}
	var sum float64
	for _, f := range files {
		ts := f.Timestamp.In(now.Location())
		switch {
		case !ts.Before(todayStart):
			stats.Today++
		case !ts.Before(yesterdayStart):
			stats.Yesterday++
		}
		if ts.After(weekStart) {
			stats.ThisWeek++
		}
		sum += f.Confidence
	}
	if len(files) > 0 {
		stats.AverageConfidence = fmt.Sprintf("%.1f", sum/float64(len(files)))
	}
	stats.LastDetection = s.repo.Snapshot(ctx).LastDetection
	return stats
}

// DownloadAudio proxies a saved clip from the detector
func (s *Service) DownloadAudio(ctx context.Context, id string) (*bbmmodels.AudioDownload, error) {
	ref, err := s.repo.GetAudioFile(ctx, id)
	if err != nil {
		return nil, err
	}
	dl, err := s.driver.DownloadAudio(ctx, ref.FilePath)
	s.observe(ctx, "download-audio", err)
	if err != nil {
		return nil, err
	}
	return dl, nil
}

// UpdateSettings pushes a partial settings change to the detector
func (s *Service) UpdateSettings(ctx context.Context, settings bbmmodels.DetectorSettings) (map[string]interface{}, error) {
	if settings.ConfidenceThreshold == nil && settings.AudioSaving == nil {
		return nil, bbmmodels.NewValidationError("settings", "at least one of confidenceThreshold or audioSaving is required")
	}
	if th := settings.ConfidenceThreshold; th != nil && (math.IsNaN(*th) || *th < 0 || *th > 1) {
		return nil, bbmmodels.NewValidationError("confidenceThreshold", "must be between 0 and 1")
	}

	out, err := s.driver.UpdateSettings(ctx, settings)
	s.observe(ctx, "update-settings", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TestConnection calls the detector health endpoint
func (s *Service) TestConnection(ctx context.Context) *ConnectionReport {
	resp, err := s.driver.Health(ctx)
	s.observe(ctx, "health", err)
	return &ConnectionReport{
		Connected: err == nil,
		URL:       s.driver.BaseURL(),
		Response:  resp,
		Err:       err,
	}
}

func (s *Service) DetectorURL() string {
	return s.driver.BaseURL()
}

// observe records the outcome of a device call on the connectivity flag.
// Only a reply, even an unexpected one, proves the device is reachable.
// A call cancelled by our own caller says nothing about the device.
func (s *Service) observe(ctx context.Context, op string, err error) {
	at := s.now()
	var re *bbmmodels.RemoteError
	switch {
	case err == nil:
		s.repo.SetRemoteConnected(ctx, true, at)
		s.metrics.RemoteCall(op, "ok")
	case errors.Is(err, context.Canceled):
		s.metrics.RemoteCall(op, "canceled")
	case errors.As(err, &re) && re.Kind == bbmmodels.RemoteUnexpectedResponse:
		s.repo.SetRemoteConnected(ctx, true, at)
		s.metrics.RemoteCall(op, "unexpected")
	case errors.As(err, &re) && re.Unavailable():
		s.repo.SetRemoteConnected(ctx, false, at)
		s.metrics.RemoteCall(op, "unavailable")
	case errors.As(err, &re):
		s.repo.SetRemoteConnected(ctx, false, at)
		s.metrics.RemoteCall(op, "unreachable")
	case errors.Is(err, bbmmodels.ErrNotFound):
		s.repo.SetRemoteConnected(ctx, true, at)
		s.metrics.RemoteCall(op, "not_found")
	default:
		s.metrics.RemoteCall(op, "error")
	}
}
