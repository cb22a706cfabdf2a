package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordCall(models.OpGenerateForecast, true)
	r.RecordCall(models.OpGenerateForecast, true)
	r.RecordCall(models.OpGenerateForecast, false)
	r.RecordError("ERR_INSUFFICIENT_DATA")
	r.RecordConfidence(87)
	r.RecordLatency(string(models.OpGenerateForecast), 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.calls.WithLabelValues("generate-forecast", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("generate-forecast", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("ERR_INSUFFICIENT_DATA")))

	n, err := testutil.GatherAndCount(reg, "demandcast_forecast_confidence", "demandcast_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewWithRegisterer_DuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegisterer(reg)
	assert.Panics(t, func() { NewWithRegisterer(reg) })
}
