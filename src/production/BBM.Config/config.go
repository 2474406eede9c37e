package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Device driver modes
const (
	ModeRemote    = "remote"
	ModeSimulated = "simulated"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Cry detector (Raspberry Pi) configuration
	Detector DetectorConfig `json:"detector"`

	// Environment sensor (Jetson) configuration
	Sensors SensorConfig `json:"sensors"`

	// In-memory store sizing
	Store StoreConfig `json:"store"`

	// MQTT configuration
	MQTT MQTTConfig `json:"mqtt"`

	// Auth configuration
	Auth AuthConfig `json:"auth"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Environment  string        `json:"environment"`
	Version      string        `json:"version"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DetectorConfig holds the cry detector device settings
type DetectorConfig struct {
	BaseURL         string        `json:"base_url"`
	Mode            string        `json:"mode"`
	CommandTimeout  time.Duration `json:"command_timeout"`
	StatusTimeout   time.Duration `json:"status_timeout"`
	DownloadTimeout time.Duration `json:"download_timeout"`
}

// SensorConfig holds the environment sensor device settings
type SensorConfig struct {
	BaseURL string        `json:"base_url"`
	Mode    string        `json:"mode"`
	Timeout time.Duration `json:"timeout"`
}

// StoreConfig bounds the in-memory buffers
type StoreConfig struct {
	HistoryCapacity   int  `json:"history_capacity"`
	AudioFileCapacity int  `json:"audio_file_capacity"`
	SeedSleepSamples  bool `json:"seed_sleep_samples"`
}

// MQTTConfig holds MQTT-related configuration
type MQTTConfig struct {
	Enabled     bool          `json:"enabled"`
	BrokerHost  string        `json:"broker_host"`
	BrokerPort  int           `json:"broker_port"`
	BrokerUser  string        `json:"broker_user"`
	BrokerPass  string        `json:"broker_pass"`
	UseTLS      bool          `json:"use_tls"`
	CACertPath  string        `json:"ca_cert_path"`
	Topic       string        `json:"topic"`
	ClientID    string        `json:"client_id"`
	SharedGroup string        `json:"shared_group"`
	KeepAlive   time.Duration `json:"keep_alive"`
	PingTimeout time.Duration `json:"ping_timeout"`
	QueueSize   int           `json:"queue_size"`
}

// AuthConfig holds device-to-server authentication settings
type AuthConfig struct {
	// DeviceEventSecret guards the detection-event webhook. Empty leaves it open.
	DeviceEventSecret string `json:"-"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// Load loads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	env := &envReader{}

	config := &Config{
		Server: ServerConfig{
			Port:         env.str("PORT", "5000"),
			Environment:  env.str("APP_ENV", "development"),
			Version:      env.str("APP_VERSION", "1.0.0"),
			ReadTimeout:  env.duration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: env.duration("WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  env.duration("IDLE_TIMEOUT", 120*time.Second),
		},
		Detector: DetectorConfig{
			BaseURL:         env.str("RASPBERRY_PI_URL", "http://192.168.0.94:5000"),
			Mode:            strings.ToLower(env.str("DETECTOR_MODE", ModeRemote)),
			CommandTimeout:  env.duration("DETECTOR_COMMAND_TIMEOUT", 10*time.Second),
			StatusTimeout:   env.duration("DETECTOR_STATUS_TIMEOUT", 5*time.Second),
			DownloadTimeout: env.duration("DETECTOR_DOWNLOAD_TIMEOUT", 30*time.Second),
		},
		Sensors: SensorConfig{
			BaseURL: env.str("JETSON_NANO_URL", "http://192.168.0.100:5000"),
			Mode:    strings.ToLower(env.str("SENSOR_MODE", ModeSimulated)),
			Timeout: env.duration("SENSOR_TIMEOUT", 3*time.Second),
		},
		Store: StoreConfig{
			HistoryCapacity:   env.integer("HISTORY_CAPACITY", 100),
			AudioFileCapacity: env.integer("AUDIO_FILE_CAPACITY", 100),
			SeedSleepSamples:  env.boolean("SLEEP_SAMPLE_DATA", false),
		},
		MQTT: MQTTConfig{
			Enabled:     env.boolean("MQTT_ENABLED", false),
			BrokerHost:  env.str("BROKER_HOST", "localhost"),
			BrokerPort:  env.integer("BROKER_PORT", 1883),
			BrokerUser:  env.str("BROKER_USER", ""),
			BrokerPass:  env.str("BROKER_PASS", ""),
			UseTLS:      env.boolean("BROKER_TLS", false),
			CACertPath:  env.str("BROKER_CA_FILE", ""),
			Topic:       env.str("MQTT_TOPIC", "babymonitor/+/cry-detection"),
			ClientID:    env.str("MQTT_CLIENT_ID", "baby-monitor-server"),
			SharedGroup: env.str("MQTT_SHARED_GROUP", ""),
			KeepAlive:   env.duration("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout: env.duration("MQTT_PING_TIMEOUT", 10*time.Second),
			QueueSize:   env.integer("MQTT_QUEUE_SIZE", 1024),
		},
		Auth: AuthConfig{
			DeviceEventSecret: env.str("DEVICE_EVENT_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:        env.str("LOG_LEVEL", "info"),
			Format:       env.str("LOG_FORMAT", "text"),
			Output:       env.str("LOG_OUTPUT", "stdout"),
			EnableCaller: env.boolean("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: env.list("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			}),
			AllowedMethods:   env.list("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   env.list("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			ExposedHeaders:   env.list("CORS_EXPOSED_HEADERS", []string{"Content-Length", "X-Request-ID"}),
			AllowCredentials: env.boolean("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           env.integer("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	if err := env.err(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if err := validateDevice("DETECTOR", c.Detector.Mode, c.Detector.BaseURL); err != nil {
		return err
	}
	if err := validateDevice("SENSOR", c.Sensors.Mode, c.Sensors.BaseURL); err != nil {
		return err
	}
	if c.Store.HistoryCapacity <= 0 {
		return fmt.Errorf("HISTORY_CAPACITY must be positive")
	}
	if c.Store.AudioFileCapacity <= 0 {
		return fmt.Errorf("AUDIO_FILE_CAPACITY must be positive")
	}
	if c.MQTT.Enabled {
		if c.MQTT.BrokerHost == "" {
			return fmt.Errorf("BROKER_HOST is required when MQTT_ENABLED is set")
		}
		if c.MQTT.Topic == "" {
			return fmt.Errorf("MQTT_TOPIC is required when MQTT_ENABLED is set")
		}
		if c.MQTT.QueueSize <= 0 {
			return fmt.Errorf("MQTT_QUEUE_SIZE must be positive")
		}
	}
	return nil
}

func validateDevice(prefix, mode, baseURL string) error {
	switch mode {
	case ModeSimulated:
		return nil
	case ModeRemote:
		u, err := url.Parse(baseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s base URL %q is not a valid absolute URL", prefix, baseURL)
		}
		return nil
	default:
		return fmt.Errorf("%s_MODE must be %q or %q, got %q", prefix, ModeRemote, ModeSimulated, mode)
	}
}

// IsProduction reports whether APP_ENV selects production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *Config) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

// envReader reads typed environment variables and collects parse failures.
// Bad values fall back to the default and are reported by err.
type envReader struct {
	errs []error
}

func (e *envReader) fail(key, value, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: expected %s", key, value, want))
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}

func (e *envReader) str(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (e *envReader) integer(key string, defaultValue int) int {
	value := e.str(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, value, "an integer")
		return defaultValue
	}
	return n
}

func (e *envReader) boolean(key string, defaultValue bool) bool {
	value := e.str(key, "")
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, value, "true/false or 1/0")
		return defaultValue
	}
	return b
}

// duration accepts Go durations ("1500ms") and bare seconds ("30")
func (e *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := e.str(key, "")
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.fail(key, value, "a duration")
		return defaultValue
	}
	return d
}

func (e *envReader) list(key string, defaultValue []string) []string {
	value := e.str(key, "")
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
