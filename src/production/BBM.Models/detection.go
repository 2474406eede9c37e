package bbmmodels

import "time"

// DetectionState is the server-side view of the cry detector
type DetectionState struct {
	IsActive        bool       `json:"isActive"`
	LastStartTime   *time.Time `json:"lastStartTime"`
	LastStopTime    *time.Time `json:"lastStopTime"`
	LastDetection   *time.Time `json:"lastDetection"`
	TotalDetections int        `json:"totalDetections"`

	// Remote connectivity as last observed. Nil until the first remote call.
	RemoteConnected *bool      `json:"remoteConnected"`
	LastRemoteCheck *time.Time `json:"lastRemoteCheck,omitempty"`
}

// AudioFileRef points at a clip the detector saved on its own storage
type AudioFileRef struct {
	ID         string    `json:"id"`
	FilePath   string    `json:"filePath"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	Size       *int64    `json:"size,omitempty"`
	Duration   *float64  `json:"duration,omitempty"`
}

// DetectionEvent is what a detector reports when it hears crying.
// A zero Timestamp means "now".
type DetectionEvent struct {
	Timestamp     time.Time
	Confidence    float64
	AudioFilePath string
	Source        string
	Size          *int64
	Duration      *float64
}

// DetectionHistory summarises detector activity
type DetectionHistory struct {
	TotalDetections   int        `json:"totalDetections"`
	LastDetection     *time.Time `json:"lastDetection"`
	IsCurrentlyActive bool       `json:"isCurrentlyActive"`
	LastStartTime     *time.Time `json:"lastStartTime"`
	LastStopTime      *time.Time `json:"lastStopTime"`
}

// AudioStats aggregates the audio file list
type AudioStats struct {
	Total             int        `json:"total"`
	Today             int        `json:"today"`
	Yesterday         int        `json:"yesterday"`
	ThisWeek          int        `json:"thisWeek"`
	AverageConfidence string     `json:"averageConfidence"`
	LastDetection     *time.Time `json:"lastDetection"`
}
