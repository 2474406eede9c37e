package bbmmodels

import "time"

// Camera types
const (
	CameraNormal   = "normal"
	CameraInfrared = "infrared"
)

// Activity log actions
const (
	ActionCameraSwitch     = "camera_switch"
	ActionRecordingStarted = "recording_started"
	ActionRecordingStopped = "recording_stopped"
)

// ActivityLog records a camera switch or a recording start/stop
type ActivityLog struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	Filename   string    `json:"filename,omitempty"`
	CameraType string    `json:"cameraType,omitempty"`
	Success    *bool     `json:"success,omitempty"`
}
