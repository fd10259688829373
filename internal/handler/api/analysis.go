package api

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"EquityPulse/internal/catalog"
	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	"EquityPulse/internal/usecase"
	xhttp "EquityPulse/pkg/http"
	xlogger "EquityPulse/pkg/logger"
)

// AnalysisHandler exposes the analysis service over HTTP.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	svc      *usecase.AnalysisService
	requests domrepo.RequestPublisher
}

// NewAnalysisHandler builds the handler. requests may be nil, in which case
// the async endpoint answers 503.
func NewAnalysisHandler(logger *xlogger.Logger, svc *usecase.AnalysisService, requests domrepo.RequestPublisher) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, svc: svc, requests: requests}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.POST("/analyze/batch", h.AnalyzeBatch)
	g.POST("/analyze/async", h.Enqueue)
	g.GET("/tickers", h.Tickers)
	g.GET("/reports/:ticker", h.Reports)
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Analyze(c.Request().Context(), usecase.AnalyzeParams{
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		Ticker:    req.Ticker,
		Start:     req.Start,
		End:       req.End,
		Benchmark: req.Benchmark,
		NoCache:   req.NoCache,
		Overrides: req.Overrides,
	})
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) AnalyzeBatch(c echo.Context) error {
	req := &models.BatchAnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	items, err := h.svc.AnalyzeBatch(c.Request().Context(), req.Tickers, req.Start, req.End, req.Benchmark)
	if err != nil {
		return h.fail(c, "analyze batch", err)
	}
	return xhttp.ListResponse(c, items, int64(len(items)))
}

// Enqueue accepts a request for the Kafka pipeline and returns its id.
func (h *AnalysisHandler) Enqueue(c echo.Context) error {
	if h.requests == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("asynchronous analysis is disabled"))
	}
	req := &models.AnalysisRequestMessage{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Ticker = catalog.Normalize(req.Ticker)
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if err := h.requests.Enqueue(c.Request().Context(), req); err != nil {
		h.logger.Error("enqueue analysis request error",
			xlogger.String("ticker", req.Ticker),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("analysis queue unavailable").WithError(err))
	}
	return xhttp.AcceptedResponse(c, map[string]string{
		"request_id": req.RequestID,
		"ticker":     req.Ticker,
	})
}

func (h *AnalysisHandler) Tickers(c echo.Context) error {
	all := catalog.All()
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.ListResponse(c, all, int64(len(all)))
}

func (h *AnalysisHandler) Reports(c echo.Context) error {
	req := &models.ReportsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.svc.ListReports(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		return h.fail(c, "list reports", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// fail maps domain errors onto HTTP statuses. Only server-side failures are
// logged at error level.
func (h *AnalysisHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(op+" usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrInput), errors.Is(err, models.ErrConfiguration):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrNotAvailable):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrStoreDisabled):
		return xhttp.UnavailableError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
