package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
	err     error
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return p.err
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func TestLogCollector_DeduplicatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Topic:          "demandcast.logs",
		Publisher:      pub,
	})

	fields := map[string]interface{}{"product_id": uint64(1)}
	c.AddLog("error", "store write failed", fields, "a.go:1")
	c.AddLog("error", "store write failed", fields, "a.go:1")
	c.AddLog("error", "other", nil, "b.go:2")
	assert.Equal(t, 2, c.Pending())

	c.Close()
	c.Close()

	require.Equal(t, 1, pub.count())
	assert.Equal(t, "demandcast.logs", pub.topic)
	batch := pub.batches[0]
	require.Len(t, batch, 2)
	counts := map[string]int{}
	for _, e := range batch {
		counts[e.Message] = e.Count
	}
	assert.Equal(t, map[string]int{"store write failed": 2, "other": 1}, counts)
	assert.Equal(t, 0, c.Pending())
}

func TestLogCollector_ThresholdTriggersFlush(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 2,
		Publisher:      pub,
	})
	defer c.Close()

	c.AddLog("error", "one", nil, "x")
	c.AddLog("error", "two", nil, "x")

	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestLogger_ErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Publisher: pub})

	l.Error("archive append failed", String("table", "forecast_history"), Error(errors.New("boom")))
	l.Warn("slow call")
	l.Info("ignored")
	assert.Equal(t, 1, l.collector.Pending())

	l.RemoveCollector()
	require.Equal(t, 1, pub.count())
	entry := pub.batches[0][0]
	assert.Equal(t, "error", entry.Level)
	assert.Equal(t, "forecast_history", entry.Fields["table"])
	assert.Equal(t, "boom", entry.Fields["error"])
	assert.Contains(t, entry.Caller, "collector_test.go")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)

	l, err := New(&Config{Level: "info", Output: "stderr", Format: "json", Service: "demandcast"})
	require.NoError(t, err)
	l.With(String("component", "test")).Debug("hidden")
}
