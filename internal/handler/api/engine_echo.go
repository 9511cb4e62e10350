package api

import (
	"github.com/labstack/echo/v4"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/montecarlo"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// EngineHandler serves the forecasting and risk endpoints.
type EngineHandler struct {
	logger   *xlogger.Logger
	bars     *usecase.BarsUseCase
	forecast *usecase.ForecastUseCase
	backtest *usecase.BacktestUseCase
	simulate *usecase.SimulationUseCase
	risk     *usecase.RiskUseCase
}

func NewEngineHandler(
	logger *xlogger.Logger,
	bars *usecase.BarsUseCase,
	forecast *usecase.ForecastUseCase,
	backtest *usecase.BacktestUseCase,
	simulate *usecase.SimulationUseCase,
	risk *usecase.RiskUseCase,
) *EngineHandler {
	return &EngineHandler{logger: logger, bars: bars, forecast: forecast, backtest: backtest, simulate: simulate, risk: risk}
}

func (h *EngineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/bars", h.Bars)
	g.GET("/forecast", h.Forecast)
	g.GET("/forecast/compare", h.Compare)
	g.GET("/backtest", h.Backtest)
	g.GET("/simulate", h.Simulate)
	g.GET("/var", h.VaR)
	g.GET("/risk", h.Risk)
	e.GET("/ws/simulate", h.SimulateStream)
}

func (h *EngineHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(op+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func (h *EngineHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.bars.History(c.Request().Context(), req.Symbol, req.Period)
	if err != nil {
		return h.fail(c, "bars", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, toBarsResponse(res))
}

func (h *EngineHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.forecast.Forecast(c.Request().Context(), usecase.ForecastParams{
		Symbol:  req.Symbol,
		Period:  req.Period,
		Variant: models.ForecastVariant(req.Variant),
		Horizon: req.Horizon,
		Seed:    req.Seed,
	})
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, toForecastResponse(res))
}

func (h *EngineHandler) Compare(c echo.Context) error {
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.forecast.Compare(c.Request().Context(), usecase.CompareParams{
		Symbol:  req.Symbol,
		Period:  req.Period,
		Horizon: req.Horizon,
		Seed:    req.Seed,
	})
	if err != nil {
		return h.fail(c, "compare", err)
	}
	return xhttp.SuccessResponse(c, toCompareResponse(res))
}

func (h *EngineHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.backtest.Run(c.Request().Context(), usecase.BacktestParams{
		Symbol:   req.Symbol,
		Period:   req.Period,
		Variant:  models.ForecastVariant(req.Variant),
		TestDays: req.TestDays,
		Seed:     req.Seed,
	})
	if err != nil {
		return h.fail(c, "backtest", err)
	}
	return xhttp.SuccessResponse(c, toBacktestResponse(res))
}

func (h *EngineHandler) Simulate(c echo.Context) error {
	req := &models.SimulateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.simulate.Simulate(c.Request().Context(), simulateParams(req), nil)
	if err != nil {
		return h.fail(c, "simulate", err)
	}
	return xhttp.SuccessResponse(c, toSimulateResponse(res))
}

func simulateParams(req *models.SimulateRequest) usecase.SimulateParams {
	return usecase.SimulateParams{
		Symbol:      req.Symbol,
		Period:      req.Period,
		Days:        req.Days,
		Simulations: req.Simulations,
		Visible:     req.Visible,
		Seed:        req.Seed,
		Shock:       montecarlo.ShockModel(req.Shock),
	}
}

func (h *EngineHandler) VaR(c echo.Context) error {
	req := &models.VarRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	levels, err := util.ParseFloatList(req.Levels)
	if err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{Code: "ERR_LEVELS", Field: "levels", Message: err.Error()}})
	}
	res, err := h.risk.VaR(c.Request().Context(), req.Symbol, req.Period, levels)
	if err != nil {
		return h.fail(c, "var", err)
	}
	return xhttp.SuccessResponse(c, toVarResponse(res))
}

func (h *EngineHandler) Risk(c echo.Context) error {
	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.risk.Profile(c.Request().Context(), req.Symbol, req.Period)
	if err != nil {
		return h.fail(c, "risk", err)
	}
	return xhttp.SuccessResponse(c, toRiskResponse(res))
}
