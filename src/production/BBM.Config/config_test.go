package config

import (
	"go/format"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DETECTOR_MODE", "")
	t.Setenv("SENSOR_MODE", "")
	t.Setenv("RASPBERRY_PI_URL", "")
	t.Setenv("MQTT_ENABLED", "")
	t.Setenv("HISTORY_CAPACITY", "")
	t.Setenv("SLEEP_SAMPLE_DATA", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "http://192.168.0.94:5000", cfg.Detector.BaseURL)
	assert.Equal(t, ModeRemote, cfg.Detector.Mode)
	assert.Equal(t, ModeSimulated, cfg.Sensors.Mode)
	assert.Equal(t, 10*time.Second, cfg.Detector.CommandTimeout)
	assert.Equal(t, 5*time.Second, cfg.Detector.StatusTimeout)
	assert.Equal(t, 100, cfg.Store.HistoryCapacity)
	assert.Equal(t, 100, cfg.Store.AudioFileCapacity)
	assert.False(t, cfg.MQTT.Enabled)
	assert.False(t, cfg.Store.SeedSleepSamples)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:5173")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DETECTOR_MODE", "Simulated")
	t.Setenv("HISTORY_CAPACITY", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DETECTOR_COMMAND_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, ModeSimulated, cfg.Detector.Mode)
	assert.Equal(t, 10, cfg.Store.HistoryCapacity)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Detector.CommandTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "5000"},
			Detector: DetectorConfig{Mode: ModeRemote, BaseURL: "http://pi.local:5000"},
			Sensors:  SensorConfig{Mode: ModeSimulated},
			Store:    StoreConfig{HistoryCapacity: 100, AudioFileCapacity: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "PORT"},
		{name: "bad mode", mutate: func(c *Config) { c.Detector.Mode = "mock" }, wantErr: "DETECTOR_MODE"},
		{name: "relative url", mutate: func(c *Config) { c.Detector.BaseURL = "pi.local" }, wantErr: "not a valid absolute URL"},
		{name: "zero history", mutate: func(c *Config) { c.Store.HistoryCapacity = 0 }, wantErr: "HISTORY_CAPACITY"},
		{name: "mqtt without broker", mutate: func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Topic = "t"
			c.MQTT.QueueSize = 1
		}, wantErr: "BROKER_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetMQTTBrokerURL(t *testing.T) {
	c := &Config{MQTT: MQTTConfig{BrokerHost: "broker", BrokerPort: 8883, UseTLS: true}}
	assert.Equal(t, "tcps://broker:8883", c.GetMQTTBrokerURL())

	c.MQTT.UseTLS = false
	c.MQTT.BrokerPort = 1883
	assert.Equal(t, "tcp://broker:1883", c.GetMQTTBrokerURL())
}

func TestLoadReportsEveryBadValue(t *testing.T) {
	t.Setenv("HISTORY_CAPACITY", "lots")
	t.Setenv("MQTT_ENABLED", "maybe")
	t.Setenv("SENSOR_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HISTORY_CAPACITY")
	assert.Contains(t, err.Error(), "MQTT_ENABLED")
	assert.Contains(t, err.Error(), "SENSOR_TIMEOUT")
}

func TestDurationAcceptsBareSeconds(t *testing.T) {
	e := &envReader{}
	t.Setenv("X_TIMEOUT", "45")
	assert.Equal(t, 45*time.Second, e.duration("X_TIMEOUT", time.Second))
	t.Setenv("X_TIMEOUT", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, e.duration("X_TIMEOUT", time.Second))
	assert.NoError(t, e.err())
}

func TestSourcesAreGofmtClean(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		src, err := os.ReadFile(name)
		require.NoError(t, err)
		formatted, err := format.Source(src)
		require.NoError(t, err, name)
		assert.Equal(t, string(formatted), string(src), "%s is not gofmt-clean", name)
	}
}
