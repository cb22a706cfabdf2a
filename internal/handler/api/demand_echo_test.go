package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/repository"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/service/ratelimit"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/services/forecast"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/services/patterns"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/usecase"
	pkgcache "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/cache"
	xlogger "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/logger"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/metrics"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type callResult struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *echo.Echo {
	t.Helper()
	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	store := repository.NewKVStateStore(mc)

	contract := usecase.NewDemandPrediction(
		forecast.New(),
		patterns.NewAccessor(store),
		store,
		repository.NopEventPublisher{},
		repository.NopArchive{},
		metrics.NewWithRegisterer(prometheus.NewRegistry()),
		usecase.NewBlockClock(0),
		xlogger.Nop(),
	)

	e := echo.New()
	NewDemandEchoHandler(xlogger.Nop(), contract, store, limiter).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func decodeCall(t *testing.T, env envelope) callResult {
	t.Helper()
	var res callResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res
}

const linearBody = `{"caller":"SP1","product_id":1,"period":100,"historical_data":[80,85,90,95,100,105,110,115,120,125,130,135]}`

func TestGenerateAndGetForecast(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodPost, "/api/forecasts", linearBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeCall(t, env)
	assert.True(t, res.Success)
	assert.JSONEq(t, `109`, string(res.Result))

	rec, env = do(t, e, http.MethodGet, "/api/forecasts/1/100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"predicted-demand": 109,
		"confidence-level": 87,
		"algorithm-used": "simple-trend",
		"created-at": 1,
		"factors": [107, 2, 0, 0, 0]
	}`, string(env.Data))
}

func TestGenerateForecast_InsufficientData(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodPost, "/api/forecasts",
		`{"caller":"SP1","product_id":1,"period":100,"historical_data":[100,110]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res := decodeCall(t, env)
	assert.False(t, res.Success)
	assert.Equal(t, "ERR_INSUFFICIENT_DATA", res.Error.Code)

	rec, env = do(t, e, http.MethodGet, "/api/forecasts/1/100", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ERR_NOT_FOUND", decodeCall(t, env).Error.Code)
}

func TestGenerateForecast_ValidationAndHorizon(t *testing.T) {
	e := newTestServer(t, nil)

	rec, _ := do(t, e, http.MethodPost, "/api/forecasts", `{"product_id":1,"period":1,"historical_data":[1,2,3,4]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := do(t, e, http.MethodPost, "/api/forecasts",
		`{"caller":"SP1","product_id":1,"period":1,"horizon":-1,"historical_data":[1,2,3,4]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ERR_INVALID_HORIZON", decodeCall(t, env).Error.Code)

	rec, env = do(t, e, http.MethodPost, "/api/forecasts",
		`{"caller":"SP1","product_id":1,"period":1,"historical_data":[1,-2,3,4]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ERR_INVALID_PARAMETER", decodeCall(t, env).Error.Code)
}

func TestSeasonalPatternEndpoints(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodPut, "/api/patterns/1/Winter", `{"demand_multiplier":120,"historical_average":100}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeCall(t, env).Success)

	rec, env = do(t, e, http.MethodGet, "/api/patterns/1/winter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"demand-multiplier":120,"historical-average":100,"volatility-score":0}`, string(env.Data))

	rec, env = do(t, e, http.MethodPost, "/api/forecasts",
		`{"caller":"SP1","product_id":1,"period":7,"season":"WINTER","historical_data":[100,100,100,100]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `120`, string(decodeCall(t, env).Result))

	rec, _ = do(t, e, http.MethodPut, "/api/patterns/1/winter", `{"demand_multiplier":120}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, e, http.MethodPut, "/api/patterns/1/monsoon", `{"demand_multiplier":120,"historical_average":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ERR_INVALID_PARAMETER", decodeCall(t, env).Error.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/patterns/2/summer", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForecastHistory_EmptyWithoutArchive(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodGet, "/api/forecasts/1/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rows":[],"total":0}`, string(env.Data))

	rec, _ = do(t, e, http.MethodGet, "/api/forecasts/1/history?limit=5000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateForecast_RateLimited(t *testing.T) {
	e := newTestServer(t, ratelimit.New(1, 0.001))

	rec, _ := do(t, e, http.MethodPost, "/api/forecasts", linearBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, e, http.MethodPost, "/api/forecasts", linearBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "ERR_RATE_LIMITED", decodeCall(t, env).Error.Code)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"store":"ok","height":0}`, string(env.Data))
}
