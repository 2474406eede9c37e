package bbmmodels

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSentinels(t *testing.T) {
	wrapped := fmt.Errorf("set threshold: %w", NewValidationError("lowThreshold", "must be below highThreshold"))
	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.False(t, errors.Is(wrapped, ErrNotFound))

	nf := fmt.Errorf("mark read: %w", NewNotFoundError("alert", "42"))
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Equal(t, "mark read: alert 42 not found", nf.Error())

	var re error = &RemoteError{Op: "start", Kind: RemoteTimeout}
	assert.True(t, errors.Is(re, ErrRemoteUnavailable))
	assert.False(t, errors.Is(re, ErrUnexpectedRemote))

	re = &RemoteError{Op: "start", Kind: RemoteUnexpectedResponse, StatusCode: 502}
	assert.True(t, errors.Is(re, ErrUnexpectedRemote))
	assert.False(t, errors.Is(re, ErrRemoteUnavailable))
	assert.Contains(t, re.Error(), "HTTP 502")
}

func TestRemoteErrorUserMessageDiffersByKind(t *testing.T) {
	kinds := []RemoteErrorKind{RemoteConnectionRefused, RemoteHostNotFound, RemoteTimeout, RemoteUnexpectedResponse, RemoteUnknown}
	seen := map[string]bool{}
	for _, k := range kinds {
		msg := (&RemoteError{Kind: k}).UserMessage()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message for %s", k)
		seen[msg] = true
	}
}

func TestAlertEnums(t *testing.T) {
	assert.True(t, AlertTypeWarning.Valid())
	assert.False(t, AlertType("critical").Valid())
	assert.True(t, AlertPriorityHigh.Valid())
	assert.False(t, AlertPriority("urgent").Valid())
}

func TestDetectionEventPayload(t *testing.T) {
	var p DetectionEventPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"timestamp": "2024-05-01T12:34:56.123456",
		"confidence": 91.5,
		"source": "raspberry-pi",
		"audio_file_path": "/data/cry_1.wav"
	}`), &p))

	ev := p.ToEvent()
	assert.Equal(t, 91.5, ev.Confidence)
	assert.Equal(t, "raspberry-pi", ev.Source)
	assert.Equal(t, "/data/cry_1.wav", ev.AudioFilePath)
	assert.Equal(t, 2024, ev.Timestamp.Year())
	assert.Equal(t, 34, ev.Timestamp.Minute())

	p = DetectionEventPayload{AudioFilePathC: "/data/cry_2.wav", Timestamp: "yesterday"}
	ev = p.ToEvent()
	assert.Equal(t, "/data/cry_2.wav", ev.AudioFilePath)
	assert.True(t, ev.Timestamp.IsZero())
}

func TestParseDeviceTime(t *testing.T) {
	ts, ok := ParseDeviceTime("2024-05-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.UTC, ts.Location())

	_, ok = ParseDeviceTime("2024-05-01 10:00:00")
	assert.True(t, ok)

	_, ok = ParseDeviceTime("")
	assert.False(t, ok)
}
