package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	config "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Config"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// sensorReading is the Jetson /sensors/all payload
type sensorReading struct {
	RoomTemperature float64 `json:"room_temperature"`
	Humidity        float64 `json:"humidity"`
	BabyTemperature float64 `json:"baby_temperature"`
	Timestamp       string  `json:"timestamp"`
}

// SensorClient reads environment sensors from the Jetson board
type SensorClient struct {
	baseURL string
	http    *resty.Client
	timeout time.Duration
}

func NewSensorClient(cfg config.SensorConfig) *SensorClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &SensorClient{
		baseURL: baseURL,
		http:    resty.New().SetBaseURL(baseURL).SetHeader("Accept", "application/json"),
		timeout: cfg.Timeout,
	}
}

func (c *SensorClient) BaseURL() string { return c.baseURL }

func (c *SensorClient) ReadAll(ctx context.Context) (bbmmodels.SensorSample, error) {
	const op = "sensors"
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/sensors/all")
	if err != nil {
		return bbmmodels.SensorSample{}, classify(op, err)
	}
	if resp.IsError() {
		return bbmmodels.SensorSample{}, unexpected(op, resp.StatusCode(), fmt.Errorf("%s", strings.TrimSpace(resp.String())))
	}

	var r sensorReading
	if err := json.Unmarshal(resp.Body(), &r); err != nil {
		return bbmmodels.SensorSample{}, unexpected(op, resp.StatusCode(), fmt.Errorf("decode response: %w", err))
	}
	ts, ok := bbmmodels.ParseDeviceTime(r.Timestamp)
	if !ok {
		ts = time.Now()
	}
	return bbmmodels.SensorSample{
		RoomTemperature: r.RoomTemperature,
		Humidity:        r.Humidity,
		BabyTemperature: r.BabyTemperature,
		Timestamp:       ts,
	}, nil
}

func (c *SensorClient) Health(ctx context.Context) error {
	const op = "sensor-health"
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return classify(op, err)
	}
	if resp.IsError() {
		return unexpected(op, resp.StatusCode(), nil)
	}
	return nil
}
