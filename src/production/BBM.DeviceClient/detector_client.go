package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	config "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Config"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// DetectorClient drives the Raspberry Pi cry detector over HTTP.
// Calls are never retried; the caller decides what a failure means.
type DetectorClient struct {
	baseURL         string
	http            *resty.Client
	commandTimeout  time.Duration
	statusTimeout   time.Duration
	downloadTimeout time.Duration
	logger          *logger.Logger
}

// NewDetectorClient creates a new detector client
func NewDetectorClient(cfg config.DetectorConfig, log *logger.Logger) *DetectorClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &DetectorClient{
		baseURL: baseURL,
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		commandTimeout:  cfg.CommandTimeout,
		statusTimeout:   cfg.StatusTimeout,
		downloadTimeout: cfg.DownloadTimeout,
		logger:          log.WithComponent("detector-client"),
	}
}

func (c *DetectorClient) BaseURL() string { return c.baseURL }

func (c *DetectorClient) Start(ctx context.Context) (*bbmmodels.CommandResult, error) {
	return c.command(ctx, "start")
}

func (c *DetectorClient) Stop(ctx context.Context) (*bbmmodels.CommandResult, error) {
	return c.command(ctx, "stop")
}

func (c *DetectorClient) command(ctx context.Context, op string) (*bbmmodels.CommandResult, error) {
	raw, err := c.doJSON(ctx, op, http.MethodPost, "/"+op, map[string]interface{}{}, c.commandTimeout)
	if err != nil {
		return nil, err
	}
	result := &bbmmodels.CommandResult{Raw: raw}
	result.Status, _ = raw["status"].(string)
	result.Message, _ = raw["message"].(string)
	return result, nil
}

// Status reads the detector state. The Pi reports isActive, the Jetson
// firmware reports active.
func (c *DetectorClient) Status(ctx context.Context) (*bbmmodels.DeviceStatus, error) {
	raw, err := c.doJSON(ctx, "status", http.MethodGet, "/status", nil, c.statusTimeout)
	if err != nil {
		return nil, err
	}
	status := &bbmmodels.DeviceStatus{Raw: raw}
	for _, key := range []string{"isActive", "active"} {
		if v, ok := raw[key].(bool); ok {
			status.Active = &v
			break
		}
	}
	return status, nil
}

func (c *DetectorClient) Health(ctx context.Context) (map[string]interface{}, error) {
	return c.doJSON(ctx, "health", http.MethodGet, "/health", nil, c.statusTimeout)
}

func (c *DetectorClient) UpdateSettings(ctx context.Context, settings bbmmodels.DetectorSettings) (map[string]interface{}, error) {
	return c.doJSON(ctx, "update-settings", http.MethodPost, "/update-settings", settings, c.statusTimeout)
}

// DownloadAudio fetches a saved clip by its on-device path
func (c *DetectorClient) DownloadAudio(ctx context.Context, filePath string) (*bbmmodels.AudioDownload, error) {
	const op = "download-audio"
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetQueryParam("filePath", filePath).
		Get("/download-audio")
	if err != nil {
		return nil, classify(op, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, bbmmodels.NewNotFoundError("audio file", filePath)
	}
	if resp.IsError() {
		return nil, unexpected(op, resp.StatusCode(), fmt.Errorf("%s", strings.TrimSpace(resp.String())))
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &bbmmodels.AudioDownload{
		ContentType: contentType,
		FileName:    path.Base(filePath),
		Data:        resp.Body(),
	}, nil
}

func (c *DetectorClient) doJSON(ctx context.Context, op, method, url string, body interface{}, timeout time.Duration) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	started := time.Now()
	resp, err := req.Execute(method, url)
	if err != nil {
		rerr := classify(op, err)
		c.logger.Logger.Warn().Err(err).Str("op", op).Str("kind", string(rerr.Kind)).Dur("elapsed", time.Since(started)).Msg("Detector request failed")
		return nil, rerr
	}
	if resp.IsError() {
		return nil, unexpected(op, resp.StatusCode(), fmt.Errorf("%s", strings.TrimSpace(resp.String())))
	}

	raw := map[string]interface{}{}
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &raw); err != nil {
			return nil, unexpected(op, resp.StatusCode(), fmt.Errorf("decode response: %w", err))
		}
	}
	c.logger.Logger.Debug().Str("op", op).Int("status", resp.StatusCode()).Dur("elapsed", time.Since(started)).Msg("Detector request completed")
	return raw, nil
}
