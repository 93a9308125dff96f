// Package httpapi is the thin HTTP layer over the compliance service and the
// audit ledger. Handlers delegate to services and never embed decision logic.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dErrors "attestra/pkg/domain-errors"
	"attestra/pkg/platform/httputil"
	"attestra/pkg/requestcontext"

	"attestra/internal/anchor"
	"attestra/internal/compliance"
	"attestra/internal/domain"
	"attestra/internal/ledger"
	"attestra/internal/platform/middleware"
)

// Service is the slice of the compliance service the handlers need.
type Service interface {
	RunCycle(ctx context.Context) (*compliance.Evaluation, error)
	EvaluateSnapshot(ctx context.Context, reserves domain.ReserveData, liabilities domain.LiabilityData) (*compliance.Evaluation, error)
	Latest() (domain.ComplianceResult, bool)
	History() []domain.ComplianceResult
	Policy() domain.PolicyConfig
	SetPolicy(p domain.PolicyConfig) error
}

// Auditor is the slice of the ledger the handlers need.
type Auditor interface {
	VerifyChain(ctx context.Context) (ledger.VerifyReport, error)
	ExportJSON(ctx context.Context) (ledger.Export, error)
}

// Handler wires compliance and audit endpoints to their services.
type Handler struct {
	service Service
	auditor Auditor
	auth    *middleware.AuditorAuth
	logger  *slog.Logger
}

// New constructs the handler with its dependencies.
func New(service Service, auditor Auditor, auth *middleware.AuditorAuth, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		auditor: auditor,
		auth:    auth,
		logger:  logger,
	}
}

// Router builds the public router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/compliance/evaluate", h.handleEvaluate)
		r.Get("/compliance/latest", h.handleLatest)
		r.Get("/compliance/history", h.handleHistory)
		r.Get("/compliance/policy", h.handlePolicyGet)
		r.Put("/compliance/policy", h.handlePolicyPut)
		r.Get("/anchor/latest", h.handleAnchorLatest)

		r.Get("/audit/verify", h.handleVerify)
		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)
			r.Get("/audit/export", h.handleExport)
		})
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvaluate runs one evaluation. A body with both snapshots evaluates
// caller-supplied data; an empty body triggers a full gather-and-evaluate
// cycle.
func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var evaluation *compliance.Evaluation
	var err error

	if r.ContentLength == 0 {
		evaluation, err = h.service.RunCycle(ctx)
	} else {
		req, ok := httputil.Decode[EvaluateRequest](w, r, h.logger)
		if !ok {
			return
		}
		if req.Reserves == nil || req.Liabilities == nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "both reserves and liabilities are required"))
			return
		}
		evaluation, err = h.service.EvaluateSnapshot(ctx, *req.Reserves, *req.Liabilities)
	}

	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "evaluation served",
		"request_id", requestcontext.RequestID(ctx),
		"evaluation_id", evaluation.EvaluationID,
		"overall_status", evaluation.Result.OverallStatus,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromEvaluation(evaluation))
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	result, ok := h.service.Latest()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no evaluation has completed yet"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	results := h.service.History()
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{Count: len(results), Results: results})
}

func (h *Handler) handlePolicyGet(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Policy())
}

func (h *Handler) handlePolicyPut(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[PolicyUpdateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.SetPolicy(req.Policy); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "policy updated",
		"request_id", requestcontext.RequestID(r.Context()),
		"policy_version", req.Policy.Version,
	)
	httputil.WriteJSON(w, http.StatusOK, h.service.Policy())
}

func (h *Handler) handleAnchorLatest(w http.ResponseWriter, r *http.Request) {
	result, ok := h.service.Latest()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no evaluation has completed yet"))
		return
	}
	payload, err := anchor.BuildPayload(result)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAnchor(payload))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.auditor.VerifyChain(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !report.Valid {
		h.logger.WarnContext(ctx, "audit chain verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"broken_at", report.BrokenAt,
			"reason", report.Reason,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
		VerifiedAt: requestcontext.Now(ctx),
		Report:     report,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	export, err := h.auditor.ExportJSON(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "audit export served",
		"request_id", requestcontext.RequestID(ctx),
		"auditor", requestcontext.AuditorSubject(ctx),
		"entries", len(export.Entries),
		"chain_valid", export.ChainValid,
	)
	httputil.WriteJSON(w, http.StatusOK, export)
}
