package bbmmodels

import (
	"strings"
	"time"
)

// DetectionEventPayload is the wire shape detectors post over HTTP and MQTT.
// Devices differ in casing for the file path, so both spellings are accepted.
type DetectionEventPayload struct {
	Timestamp      string      `json:"timestamp"`
	Confidence     *float64    `json:"confidence"`
	Source         string      `json:"source"`
	AudioFilePath  string      `json:"audio_file_path"`
	AudioFilePathC string      `json:"audioFilePath"`
	AudioData      interface{} `json:"audioData,omitempty"`
	Size           *int64      `json:"size,omitempty"`
	Duration       *float64    `json:"duration,omitempty"`
}

// ToEvent converts the payload. Unparseable timestamps are dropped so the
// event is stamped on arrival instead of rejected.
func (p DetectionEventPayload) ToEvent() DetectionEvent {
	ev := DetectionEvent{
		Source:        strings.TrimSpace(p.Source),
		AudioFilePath: strings.TrimSpace(p.AudioFilePath),
		Size:          p.Size,
		Duration:      p.Duration,
	}
	if ev.AudioFilePath == "" {
		ev.AudioFilePath = strings.TrimSpace(p.AudioFilePathC)
	}
	if p.Confidence != nil {
		ev.Confidence = *p.Confidence
	}
	if ts, ok := ParseDeviceTime(p.Timestamp); ok {
		ev.Timestamp = ts
	}
	return ev
}

var deviceTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseDeviceTime accepts RFC 3339 and the zone-less ISO form Python's
// isoformat() emits. Zone-less values are read as server local time.
func ParseDeviceTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deviceTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
