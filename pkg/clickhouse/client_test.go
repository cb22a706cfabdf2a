package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host:         "ch",
		Port:         9000,
		Database:     "demandcast",
		User:         "default",
		Password:     "secret",
		DialTimeout:  5 * time.Second,
		MaxExecTime:  30 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	})
	assert.Equal(t, "clickhouse://default:secret@ch:9000/demandcast?async_insert=1&dial_timeout=5s&max_execution_time=30&wait_for_async_insert=1", dsn)
}

func TestBuildDSN_HTTPWithoutCredentials(t *testing.T) {
	dsn := buildDSN(ClientConfig{Host: "ch", Port: 8123, Database: "default", UseHTTP: true})
	assert.Equal(t, "http://ch:8123/default", dsn)
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
