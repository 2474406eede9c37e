package bbmingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Config"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// EventRecorder receives decoded detection events
type EventRecorder interface {
	RecordDetectionEvent(ctx context.Context, ev bbmmodels.DetectionEvent) int
}

type queuedEvent struct {
	deviceID   string
	topic      string
	event      bbmmodels.DetectionEvent
	receivedAt time.Time
}

// Ingestor subscribes to detector topics and feeds the events to the
// detection service through a bounded queue. A full queue drops the event.
type Ingestor struct {
	cfg      config.MQTTConfig
	recorder EventRecorder
	metrics  *metrics.Metrics
	logger   *logger.Logger

	client mqtt.Client
	msgCh  chan queuedEvent
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func New(cfg config.MQTTConfig, recorder EventRecorder, m *metrics.Metrics, log *logger.Logger) *Ingestor {
	size := cfg.QueueSize
	if size <= 0 {
		size = 1024
	}
	return &Ingestor{
		cfg:      cfg,
		recorder: recorder,
		metrics:  m,
		logger:   log.WithComponent("mqtt-ingestor"),
		msgCh:    make(chan queuedEvent, size),
		done:     make(chan struct{}),
	}
}

// Start connects to the broker and starts the worker. The subscription is
// renewed on every reconnect.
func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.brokerURL()).
		SetClientID(i.cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.KeepAlive).
		SetPingTimeout(i.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetCleanSession(false)

	if i.cfg.BrokerUser != "" {
		opts.SetUsername(i.cfg.BrokerUser)
		opts.SetPassword(i.cfg.BrokerPass)
	}

	if i.cfg.UseTLS {
		tlsCfg, err := i.tlsConfig(i.cfg.CACertPath)
		if err != nil {
			return fmt.Errorf("mqtt tls config: %w", err)
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Warn().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.subscriptionTopic()
		i.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing")
		if token := c.Subscribe(topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("MQTT subscribe failed")
		}
	}

	i.client = mqtt.NewClient(opts)
	tk := i.client.Connect()
	if !tk.WaitTimeout(15 * time.Second) {
		return fmt.Errorf("mqtt connect to %s timed out", i.brokerURL())
	}
	if err := tk.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", i.brokerURL(), err)
	}

	i.startWorker(ctx)
	return nil
}

// Stop disconnects and waits for queued events to be recorded
func (i *Ingestor) Stop() {
	i.once.Do(func() {
		if i.client != nil && i.client.IsConnected() {
			i.client.Disconnect(500)
		}
		close(i.done)
		i.wg.Wait()
		i.logger.Info("MQTT ingestor stopped")
	})
}

func (i *Ingestor) IsConnected() bool {
	return i.client != nil && i.client.IsConnected()
}

func (i *Ingestor) subscriptionTopic() string {
	if i.cfg.SharedGroup != "" {
		return fmt.Sprintf("$share/%s/%s", i.cfg.SharedGroup, i.cfg.Topic)
	}
	return i.cfg.Topic
}

func (i *Ingestor) startWorker(ctx context.Context) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.worker(ctx)
	}()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	// Expected format: babymonitor/<device_id>/cry-detection
	deviceID := "unknown"
	if parts := strings.Split(m.Topic(), "/"); len(parts) >= 2 && parts[1] != "" {
		deviceID = parts[1]
	}

	var payload bbmmodels.DetectionEventPayload
	if err := json.Unmarshal(m.Payload(), &payload); err != nil {
		i.logger.WithDevice(deviceID).Logger.Warn().Err(err).Str("topic", m.Topic()).Msg("Dropping undecodable detection event")
		i.publishError(deviceID, "invalid_payload", fmt.Sprintf("Payload is not a valid detection event: %v", err))
		return
	}
	if strings.TrimSpace(payload.Source) == "" {
		payload.Source = deviceID
	}

	i.enqueue(queuedEvent{
		deviceID:   deviceID,
		topic:      m.Topic(),
		event:      payload.ToEvent(),
		receivedAt: time.Now(),
	})
}

// enqueue never blocks the paho callback goroutine
func (i *Ingestor) enqueue(ev queuedEvent) bool {
	select {
	case <-i.done:
		return false
	default:
	}
	select {
	case i.msgCh <- ev:
		return true
	default:
		i.metrics.IngestorDropped()
		i.logger.WithDevice(ev.deviceID).Logger.Warn().
			Int("queue_size", cap(i.msgCh)).
			Msg("Detection event queue full, dropping event")
		return false
	}
}

func (i *Ingestor) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			i.drain(context.WithoutCancel(ctx))
			return
		case <-i.done:
			i.drain(ctx)
			return
		case ev := <-i.msgCh:
			i.record(ctx, ev)
		}
	}
}

func (i *Ingestor) drain(ctx context.Context) {
	for {
		select {
		case ev := <-i.msgCh:
			i.record(ctx, ev)
		default:
			return
		}
	}
}

func (i *Ingestor) record(ctx context.Context, ev queuedEvent) {
	total := i.recorder.RecordDetectionEvent(ctx, ev.event)
	i.logger.WithDevice(ev.deviceID).Logger.Debug().
		Str("topic", ev.topic).
		Dur("queued_for", time.Since(ev.receivedAt)).
		Int("total", total).
		Msg("Detection event ingested")
}

func (i *Ingestor) brokerURL() string {
	scheme := "tcp"
	if i.cfg.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, i.cfg.BrokerHost, i.cfg.BrokerPort)
}

func (i *Ingestor) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file %s", caFile)
	}
	cfg.RootCAs = cp
	return cfg, nil
}

// publishError answers a detector on babymonitor/<device_id>/errors
func (i *Ingestor) publishError(deviceID, errorType, message string) {
	if i.client == nil || !i.client.IsConnected() {
		return
	}

	payloadJSON, err := json.Marshal(map[string]interface{}{
		"error_type": errorType,
		"message":    message,
		"device_id":  deviceID,
		"timestamp":  time.Now().UTC(),
	})
	if err != nil {
		i.logger.ErrorWithError(err, "Failed to marshal error payload")
		return
	}

	errorTopic := fmt.Sprintf("babymonitor/%s/errors", deviceID)
	token := i.client.Publish(errorTopic, 1, false, payloadJSON)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		i.logger.Logger.Warn().Err(token.Error()).Str("topic", errorTopic).Msg("Failed to publish error")
	}
}
