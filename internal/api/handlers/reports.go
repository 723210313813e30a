package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"floe/internal/core"
	"floe/internal/observability"
	"floe/internal/reports"
	"floe/internal/types"
)

// ReportSubmitter is the service contract for the report handler.
type ReportSubmitter interface {
	Submit(ctx context.Context, city, condition string) (*reports.SubmitOutcome, error)
}

// ReportHandler maps HTTP requests to the verification engine's report
// ingestion.
type ReportHandler struct {
	engine  ReportSubmitter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewReportHandler creates a new ReportHandler. metrics may be nil.
func NewReportHandler(engine ReportSubmitter, metrics *observability.Metrics, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		engine:  engine,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes mounts the report endpoint onto the mux.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/report", h.HandleSubmitReport)
}

// reportRequest is the request payload for POST /v1/report.
type reportRequest struct {
	City      string `json:"city"`
	Condition string `json:"condition"`
}

// reportResponse is the response payload for POST /v1/report. Message
// narrates vote progress: first reporter, progress toward the threshold, or
// confirmation.
type reportResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Verified  bool   `json:"verified"`
	VoteCount int    `json:"vote_count"`
	Threshold int    `json:"threshold"`
}

// HandleSubmitReport handles POST /v1/report.
//
// A store write failure returns 500: the reporter must never be told their
// vote was recorded when it was not. An unconfigured store still acknowledges
// the report (without counting) so minimal deployments keep a working endpoint.
func (h *ReportHandler) HandleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if strings.TrimSpace(req.City) == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"city is required",
			nil,
		))
		return
	}
	if strings.TrimSpace(req.Condition) == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"condition is required",
			nil,
		))
		return
	}

	outcome, err := h.engine.Submit(r.Context(), req.City, req.Condition)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ReportsSubmitted.Inc()
	}

	h.logger.InfoContext(r.Context(), "weather report received",
		"city", req.City,
		"condition", req.Condition,
		"vote_count", outcome.Result.VoteCount,
		"threshold", outcome.Threshold,
		"verified", outcome.Result.Verified,
	)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: reportResponse{
		Status:    "received",
		Message:   outcome.Message,
		Verified:  outcome.Result.Verified,
		VoteCount: outcome.Result.VoteCount,
		Threshold: outcome.Threshold,
	}})
}
