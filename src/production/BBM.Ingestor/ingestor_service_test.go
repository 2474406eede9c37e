package bbmingestor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Config"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type recordingSink struct {
	mu     sync.Mutex
	events []bbmmodels.DetectionEvent
	got    chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{got: make(chan struct{}, 16)}
}

func (r *recordingSink) RecordDetectionEvent(_ context.Context, ev bbmmodels.DetectionEvent) int {
	r.mu.Lock()
	r.events = append(r.events, ev)
	n := len(r.events)
	r.mu.Unlock()
	r.got <- struct{}{}
	return n
}

func (r *recordingSink) snapshot() []bbmmodels.DetectionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bbmmodels.DetectionEvent(nil), r.events...)
}

func newTestIngestor(queue int, sink EventRecorder, m *metrics.Metrics) *Ingestor {
	return New(config.MQTTConfig{
		BrokerHost: "localhost",
		BrokerPort: 1883,
		Topic:      "babymonitor/+/cry-detection",
		QueueSize:  queue,
	}, sink, m, logger.NewNopLogger())
}

func droppedCount(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "babymonitor_ingestor_dropped_total" {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatal("dropped counter not registered")
	return 0
}

func TestOnMessageRecordsEvent(t *testing.T) {
	sink := newRecordingSink()
	ing := newTestIngestor(8, sink, metrics.New())
	ing.startWorker(context.Background())
	defer ing.Stop()

	ing.onMessage(nil, fakeMessage{
		topic:   "babymonitor/nursery-pi/cry-detection",
		payload: []byte(`{"confidence": 92.5, "audioFilePath": "/data/cry.wav", "timestamp": "2024-05-01T10:00:00Z"}`),
	})

	select {
	case <-sink.got:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not recorded")
	}

	events := sink.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "nursery-pi", events[0].Source)
	assert.Equal(t, 92.5, events[0].Confidence)
	assert.Equal(t, "/data/cry.wav", events[0].AudioFilePath)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), events[0].Timestamp.UTC())
}

func TestOnMessageKeepsExplicitSource(t *testing.T) {
	sink := newRecordingSink()
	ing := newTestIngestor(8, sink, metrics.New())
	ing.startWorker(context.Background())
	defer ing.Stop()

	ing.onMessage(nil, fakeMessage{
		topic:   "babymonitor/pi-2/cry-detection",
		payload: []byte(`{"confidence": 80, "source": "raspberry-pi"}`),
	})
	<-sink.got
	assert.Equal(t, "raspberry-pi", sink.snapshot()[0].Source)
}

func TestOnMessageIgnoresUndecodablePayload(t *testing.T) {
	sink := newRecordingSink()
	ing := newTestIngestor(8, sink, metrics.New())

	ing.onMessage(nil, fakeMessage{topic: "babymonitor/pi-1/cry-detection", payload: []byte("crying!!")})
	assert.Empty(t, ing.msgCh)
}

func TestFullQueueDropsEvents(t *testing.T) {
	m := metrics.New()
	sink := newRecordingSink()
	ing := newTestIngestor(1, sink, m)

	msg := fakeMessage{topic: "babymonitor/pi-1/cry-detection", payload: []byte(`{"confidence": 75}`)}
	ing.onMessage(nil, msg)
	ing.onMessage(nil, msg)
	ing.onMessage(nil, msg)

	assert.Len(t, ing.msgCh, 1)
	assert.Equal(t, float64(2), droppedCount(t, m))

	// Stop drains what was queued
	ing.startWorker(context.Background())
	ing.Stop()
	assert.Len(t, sink.snapshot(), 1)
}

func TestEnqueueAfterStop(t *testing.T) {
	ing := newTestIngestor(4, newRecordingSink(), metrics.New())
	ing.startWorker(context.Background())
	ing.Stop()

	assert.False(t, ing.enqueue(queuedEvent{deviceID: "pi-1"}))
	assert.False(t, ing.IsConnected())
}

func TestSubscriptionTopicAndBrokerURL(t *testing.T) {
	ing := newTestIngestor(4, newRecordingSink(), nil)
	assert.Equal(t, "babymonitor/+/cry-detection", ing.subscriptionTopic())
	assert.Equal(t, "tcp://localhost:1883", ing.brokerURL())

	ing.cfg.SharedGroup = "servers"
	ing.cfg.UseTLS = true
	ing.cfg.BrokerPort = 8883
	assert.Equal(t, "$share/servers/babymonitor/+/cry-detection", ing.subscriptionTopic())
	assert.Equal(t, "tcps://localhost:8883", ing.brokerURL())

	_, err := ing.tlsConfig("/does/not/exist.pem")
	assert.Error(t, err)
	cfg, err := ing.tlsConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
