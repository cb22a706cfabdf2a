package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// ReplayHandler receives every message of a topic, oldest first within a partition.
type ReplayHandler func(ctx context.Context, key, value []byte) error

// ReplayOption configures Replayer.
type ReplayOption func(*ReplayConfig)

// ReplayConfig holds replay configuration.
type ReplayConfig struct {
	Brokers     []string
	MinBytes    int
	MaxBytes    int
	DialTimeout time.Duration
}

// WithReplayBrokers sets Kafka brokers.
func WithReplayBrokers(brokers []string) ReplayOption {
	return func(c *ReplayConfig) {
		c.Brokers = brokers
	}
}

// WithReplayFetch sets fetch min/max bytes.
func WithReplayFetch(minBytes, maxBytes int) ReplayOption {
	return func(c *ReplayConfig) {
		c.MinBytes = minBytes
		c.MaxBytes = maxBytes
	}
}

// WithReplayDialTimeout bounds metadata and leader connections.
func WithReplayDialTimeout(d time.Duration) ReplayOption {
	return func(c *ReplayConfig) {
		c.DialTimeout = d
	}
}

// Replayer reads a topic from its first retained offset up to the high
// watermark observed when the replay starts, then stops. It uses no consumer
// group and commits nothing.
type Replayer struct {
	cfg ReplayConfig
}

// NewReplayer creates a Replayer.
func NewReplayer(opts ...ReplayOption) (*Replayer, error) {
	cfg := ReplayConfig{
		MinBytes:    1,
		MaxBytes:    10e6,
		DialTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka replay: no brokers")
	}

	initReplayMetrics()
	return &Replayer{cfg: cfg}, nil
}

// Replay feeds every retained message of topic to fn and returns how many
// were handled. Partitions are replayed one after another in ID order. A
// topic that does not exist yet replays zero messages.
func (r *Replayer) Replay(ctx context.Context, topic string, fn ReplayHandler) (int, error) {
	partitions, err := r.partitions(ctx, topic)
	if errors.Is(err, kafka.UnknownTopicOrPartition) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("kafka replay: read partitions: %w", err)
	}

	total := 0
	for _, p := range partitions {
		n, err := r.replayPartition(ctx, topic, p, fn)
		total += n
		if err != nil {
			return total, fmt.Errorf("kafka replay: partition %d: %w", p, err)
		}
	}
	return total, nil
}

func (r *Replayer) dialer() *kafka.Dialer {
	return &kafka.Dialer{Timeout: r.cfg.DialTimeout}
}

func (r *Replayer) partitions(ctx context.Context, topic string) ([]int, error) {
	conn, err := r.dialer().DialContext(ctx, "tcp", r.cfg.Brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	parts, err := conn.ReadPartitions(topic)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *Replayer) replayPartition(ctx context.Context, topic string, partition int, fn ReplayHandler) (int, error) {
	leader, err := r.dialer().DialLeader(ctx, "tcp", r.cfg.Brokers[0], topic, partition)
	if err != nil {
		return 0, err
	}
	first, last, err := leader.ReadOffsets()
	_ = leader.Close()
	if err != nil {
		return 0, err
	}
	if last <= first {
		return 0, nil
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   r.cfg.Brokers,
		Topic:     topic,
		Partition: partition,
		MinBytes:  r.cfg.MinBytes,
		MaxBytes:  r.cfg.MaxBytes,
		Dialer:    r.dialer(),
	})
	defer reader.Close()

	if err := reader.SetOffset(first); err != nil {
		return 0, err
	}

	n := 0
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return n, err
		}
		if err := fn(ctx, msg.Key, msg.Value); err != nil {
			replayMessagesTotal.WithLabelValues(topic, "error").Inc()
			return n, fmt.Errorf("offset %d: %w", msg.Offset, err)
		}
		replayMessagesTotal.WithLabelValues(topic, "ok").Inc()
		n++
		if msg.Offset >= last-1 {
			return n, nil
		}
	}
}

var (
	replayMessagesTotal *prometheus.CounterVec
	replayOnce          sync.Once
)

func initReplayMetrics() {
	replayOnce.Do(func() {
		replayMessagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demandcast_kafka_replay_messages_total",
				Help: "Messages handled during startup replay",
			},
			[]string{"topic", "result"},
		)
	})
}
