package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	domrepo "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	domsvc "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/service/ratelimit"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/usecase"
	xhttp "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/http"
	xlogger "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/logger"
)

// DemandEchoHandler exposes the demand-prediction contract over HTTP.
type DemandEchoHandler struct {
	logger   *xlogger.Logger
	contract *usecase.DemandPrediction
	state    domrepo.StateStore
	limiter  *ratelimit.Limiter // nil disables throttling
}

func NewDemandEchoHandler(logger *xlogger.Logger, contract *usecase.DemandPrediction, state domrepo.StateStore, limiter *ratelimit.Limiter) *DemandEchoHandler {
	return &DemandEchoHandler{logger: logger, contract: contract, state: state, limiter: limiter}
}

func (h *DemandEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/forecasts", h.GenerateForecast)
	g.GET("/forecasts/:product_id/history", h.ForecastHistory)
	g.GET("/forecasts/:product_id/:period", h.GetForecast)
	g.PUT("/patterns/:product_id/:season", h.UpdateSeasonalPattern)
	g.GET("/patterns/:product_id/:season", h.GetSeasonalPattern)
}

func (h *DemandEchoHandler) GenerateForecast(c echo.Context) error {
	req := &models.GenerateForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.limiter != nil && !h.limiter.Allow(req.Caller) {
		return failed(c, xhttp.TooManyRequestsError("too many forecasts for caller "+req.Caller))
	}

	predicted, err := h.contract.GenerateForecast(c.Request().Context(), models.GenerateForecastInput{
		Caller:    req.Caller,
		ProductID: req.ProductID,
		Period:    req.Period,
		Horizon:   req.Horizon,
		Season:    models.NormalizeSeason(req.Season),
		History:   req.HistoricalData,
	})
	if err != nil {
		return failed(c, contractError(err))
	}
	return xhttp.CreatedResponse(c, models.CallResult{Success: true, Result: predicted})
}

func (h *DemandEchoHandler) GetForecast(c echo.Context) error {
	req := &models.ForecastKeyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	f, found, err := h.contract.GetForecast(c.Request().Context(), req.ProductID, req.Period)
	if err != nil {
		h.logger.Error("get forecast failed", xlogger.Error(err))
		return failed(c, contractError(err))
	}
	if !found {
		return failed(c, xhttp.NotFoundErrorf("no forecast for product %d period %d", req.ProductID, req.Period))
	}
	return xhttp.SuccessResponse(c, f)
}

func (h *DemandEchoHandler) ForecastHistory(c echo.Context) error {
	req := &models.ForecastHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.contract.ForecastHistory(c.Request().Context(), req.ProductID, req.Limit)
	if err != nil {
		h.logger.Error("forecast history failed", xlogger.Error(err))
		return failed(c, contractError(err))
	}
	if rows == nil {
		rows = []models.ForecastHistoryEntry{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DemandEchoHandler) UpdateSeasonalPattern(c echo.Context) error {
	req := &models.UpdatePatternRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ok, err := h.contract.UpdateSeasonalPattern(
		c.Request().Context(),
		req.ProductID,
		models.NormalizeSeason(req.Season),
		*req.DemandMultiplier,
		*req.HistoricalAverage,
	)
	if err != nil {
		return failed(c, contractError(err))
	}
	return xhttp.SuccessResponse(c, models.CallResult{Success: ok, Result: ok})
}

func (h *DemandEchoHandler) GetSeasonalPattern(c echo.Context) error {
	req := &models.PatternKeyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, found, err := h.contract.GetSeasonalPattern(c.Request().Context(), req.ProductID, models.NormalizeSeason(req.Season))
	if err != nil {
		return failed(c, contractError(err))
	}
	if !found {
		return failed(c, xhttp.NotFoundErrorf("no pattern for product %d season %s", req.ProductID, req.Season))
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *DemandEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.state.Health(ctx); err != nil {
		h.logger.Warn("state store unhealthy", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]interface{}{"store": err.Error()})
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"store": "ok", "height": h.contract.Height()})
}

// contractError maps a contract failure onto an AppError carrying its reason code.
func contractError(err error) *xhttp.AppError {
	code := domsvc.Code(err)
	switch code {
	case domsvc.CodeInvalidParameter:
		return xhttp.NewAppError(code, "", err.Error(), http.StatusBadRequest).WithError(err)
	case domsvc.CodeNotFound:
		return xhttp.NewAppError(code, "", err.Error(), http.StatusNotFound).WithError(err)
	case domsvc.CodeInternal:
		return xhttp.InternalError("internal error").WithError(err)
	default:
		return xhttp.UnprocessableError(code, err.Error()).WithError(err)
	}
}

func failed(c echo.Context, appErr *xhttp.AppError) error {
	return xhttp.AppErrorResponse(c, appErr, func(e *xhttp.AppError) interface{} {
		return models.CallResult{Success: false, Error: e}
	})
}
