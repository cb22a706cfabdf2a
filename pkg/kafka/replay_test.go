package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReplayer(t *testing.T) {
	_, err := NewReplayer()
	assert.Error(t, err)

	r, err := NewReplayer(
		WithReplayBrokers([]string{"localhost:9092"}),
		WithReplayFetch(10, 1000),
		WithReplayDialTimeout(time.Second),
	)
	assert.NoError(t, err)
	assert.Equal(t, 1000, r.cfg.MaxBytes)
	assert.Equal(t, time.Second, r.cfg.DialTimeout)
}
