package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"verigate/internal/provider"
	"verigate/internal/verification/service"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
	"verigate/pkg/platform/httputil"
	"verigate/pkg/requestcontext"
)

// Service defines the admin operations exposed over HTTP.
type Service interface {
	Get(ctx context.Context, submissionID id.SubmissionID) (*service.SubmissionView, error)
	Approve(ctx context.Context, submissionID id.SubmissionID) (*service.ApprovalOutcome, error)
	Refresh(ctx context.Context, submissionID id.SubmissionID) (*service.ApprovalOutcome, error)
	Reject(ctx context.Context, submissionID id.SubmissionID, reason string) error
	RequestMoreInfo(ctx context.Context, submissionID id.SubmissionID, fields []string, message string) error
	ReviewDocument(ctx context.Context, submissionID id.SubmissionID, docType, decision, reason string) error
	ProviderWebhooks(ctx context.Context) ([]provider.WebhookRef, error)
}

// Handler wires admin verification endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin endpoints. Authentication is applied by the
// caller's router group.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin/submissions/{submissionID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Post("/approve", h.HandleApprove)
		r.Post("/refresh", h.HandleRefresh)
		r.Post("/reject", h.HandleReject)
		r.Post("/request-info", h.HandleRequestMoreInfo)
		r.Post("/documents/{docType}/review", h.HandleReviewDocument)
	})
	r.Get("/admin/provider/webhooks", h.HandleProviderWebhooks)
}

// HandleGet handles GET /admin/submissions/{submissionID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(ctx, submissionID)
	if err != nil {
		h.fail(ctx, w, "get submission failed", submissionID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

// HandleApprove handles POST /admin/submissions/{submissionID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Approve(ctx, submissionID)
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			h.logger.InfoContext(ctx, "approval blocked by validation",
				"request_id", requestcontext.RequestID(ctx),
				"submission_id", submissionID.String(),
				"missing_documents", len(verr.MissingDocuments),
				"missing_fields", len(verr.MissingFields),
			)
			httputil.WriteErrorWithDetails(w, err, FromValidationError(verr))
			return
		}
		h.fail(ctx, w, "approve failed", submissionID, err)
		return
	}

	h.logger.InfoContext(ctx, "submission approval processed",
		"request_id", requestcontext.RequestID(ctx),
		"submission_id", submissionID.String(),
		"status", string(outcome.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}

// HandleRefresh handles POST /admin/submissions/{submissionID}/refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Refresh(ctx, submissionID)
	if err != nil {
		h.fail(ctx, w, "refresh failed", submissionID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}

// HandleReject handles POST /admin/submissions/{submissionID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	var req RejectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Reject(ctx, submissionID, req.Reason); err != nil {
		h.fail(ctx, w, "reject failed", submissionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRequestMoreInfo handles POST /admin/submissions/{submissionID}/request-info.
func (h *Handler) HandleRequestMoreInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	var req RequestMoreInfoRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RequestMoreInfo(ctx, submissionID, req.Fields, req.Message); err != nil {
		h.fail(ctx, w, "request more info failed", submissionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReviewDocument handles POST /admin/submissions/{submissionID}/documents/{docType}/review.
func (h *Handler) HandleReviewDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	var req ReviewDocumentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	docType := chi.URLParam(r, "docType")
	if err := h.service.ReviewDocument(ctx, submissionID, docType, req.Decision, req.Reason); err != nil {
		h.fail(ctx, w, "document review failed", submissionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleProviderWebhooks handles GET /admin/provider/webhooks.
func (h *Handler) HandleProviderWebhooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hooks, err := h.service.ProviderWebhooks(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list provider webhooks failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WebhooksResponse{Webhooks: hooks})
}

func (h *Handler) submissionID(w http.ResponseWriter, r *http.Request) (id.SubmissionID, bool) {
	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return id.SubmissionID{}, false
	}
	return submissionID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, submissionID id.SubmissionID, err error) {
	level := slog.LevelWarn
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeBadGateway {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"submission_id", submissionID.String(),
		"error", err,
	)
	httputil.WriteError(w, err)
}
