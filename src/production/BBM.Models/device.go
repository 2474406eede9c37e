package bbmmodels

// Detector command outcomes as reported by the device
const (
	CommandStarted        = "started"
	CommandAlreadyRunning = "already_running"
	CommandStopped        = "stopped"
	CommandNotRunning     = "not_running"
	CommandAlreadyStopped = "already_stopped"
)

// CommandResult is the device reply to start/stop
type CommandResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Raw     map[string]interface{} `json:"-"`
}

// DeviceStatus is the device reply to a status query. Active is nil when
// the device did not report it.
type DeviceStatus struct {
	Active *bool                  `json:"-"`
	Raw    map[string]interface{} `json:"raw"`
}

// DetectorSettings is a partial settings update pushed to the detector
type DetectorSettings struct {
	ConfidenceThreshold *float64 `json:"confidenceThreshold,omitempty"`
	AudioSaving         *bool    `json:"audioSaving,omitempty"`
}

// AudioDownload carries clip bytes fetched from the detector
type AudioDownload struct {
	ContentType string
	FileName    string
	Data        []byte
}
