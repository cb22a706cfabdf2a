package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestNewProducer_AppliesOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithCompression("zstd"),
		WithHashByKey(true),
		WithAutoCreateTopic(true),
		WithMaxAttempts(5),
	)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, kafka.Zstd, p.writer.Compression)
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
	assert.True(t, p.writer.AllowAutoTopicCreation)
	assert.Equal(t, 5, p.writer.MaxAttempts)
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = encodeValue("text")
	require.NoError(t, err)
	assert.Equal(t, "text", string(b))

	b, err = encodeValue(map[string]int{"product_id": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":1}`, string(b))

	_, err = encodeValue(make(chan int))
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Lz4, parseCompression("lz4"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
	assert.Equal(t, kafka.Compression(0), parseCompression("none"))
}
