// Package handler serves wallet screening over HTTP and records screening
// outcomes in the verification registry.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"walletreg/internal/registry/models"
	"walletreg/internal/screening/orchestrator"
	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	"walletreg/pkg/platform/httputil"
	"walletreg/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Screener,Registry

var errNotOwner = dErrors.New(dErrors.CodeForbidden, "caller is not the registry owner")

// Screener runs wallet screenings.
type Screener interface {
	Providers() []string
	Screen(ctx context.Context, address id.WalletAddress) (*orchestrator.Report, error)
	ScreenWith(ctx context.Context, providerID string, address id.WalletAddress) (*providers.Finding, error)
}

// Registry is the part of the verification registry a recorded screening
// writes to.
type Registry interface {
	Owner(ctx context.Context) (id.AccountID, error)
	VerifyWallet(ctx context.Context, req models.VerifyRequest) (*models.VerificationRecord, error)
}

type Handler struct {
	screener    Screener
	registry    Registry
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

func New(screener Screener, registry Registry, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		screener:    screener,
		registry:    registry,
		logger:      logger,
		requireAuth: requireAuth,
	}
}

// Register mounts the screening routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(authed chi.Router) {
		authed.Use(h.requireAuth)
		authed.Post("/screenings/record", h.handleRecord)
	})

	r.Get("/screenings/providers", h.handleProviders)
	r.Post("/screenings", h.handleScreen)
	r.Post("/screenings/{provider}", h.handleScreenWith)
}

type screenRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type providersResponse struct {
	Providers []string `json:"providers"`
}

type recordResponse struct {
	Screening    *orchestrator.Report `json:"screening"`
	Verification verificationResponse `json:"verification"`
}

type verificationResponse struct {
	WalletAddress string    `json:"wallet_address"`
	RiskScore     uint8     `json:"risk_score"`
	RiskLevel     string    `json:"risk_level"`
	VerifiedAt    time.Time `json:"verified_at"`
	VerifiedBy    string    `json:"verified_by"`
	IsSanctioned  bool      `json:"is_sanctioned"`
}

func (h *Handler) handleProviders(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, providersResponse{Providers: h.screener.Providers()})
}

func (h *Handler) handleScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, ok := h.decodeAddress(w, r)
	if !ok {
		return
	}

	report, err := h.screener.Screen(ctx, address)
	if err != nil {
		h.writeServiceError(ctx, w, "screen wallet", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleScreenWith(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, ok := h.decodeAddress(w, r)
	if !ok {
		return
	}

	finding, err := h.screener.ScreenWith(ctx, chi.URLParam(r, "provider"), address)
	if err != nil {
		h.writeServiceError(ctx, w, "screen wallet with provider", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, finding)
}

// handleRecord screens an address and stores the outcome as a verification.
// Ownership is checked first so non-owners never spend provider quota.
func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, ok := h.decodeAddress(w, r)
	if !ok {
		return
	}

	owner, err := h.registry.Owner(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "load registry owner", err)
		return
	}
	if caller, ok := requestcontext.Caller(ctx); !ok || caller != owner {
		httputil.WriteError(w, errNotOwner)
		return
	}

	report, err := h.screener.Screen(ctx, address)
	if err != nil {
		h.writeServiceError(ctx, w, "screen wallet", err)
		return
	}
	record, err := h.registry.VerifyWallet(ctx, report.VerifyRequest())
	if err != nil {
		h.writeServiceError(ctx, w, "record screening", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recordResponse{
		Screening: report,
		Verification: verificationResponse{
			WalletAddress: address.String(),
			RiskScore:     record.RiskScore,
			RiskLevel:     record.RiskLevel.String(),
			VerifiedAt:    record.VerifiedAt,
			VerifiedBy:    record.VerifiedBy.String(),
			IsSanctioned:  record.IsSanctioned,
		},
	})
}

func (h *Handler) decodeAddress(w http.ResponseWriter, r *http.Request) (id.WalletAddress, bool) {
	ctx := r.Context()
	var body screenRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeBadRequest(ctx, w, err)
		return id.WalletAddress{}, false
	}
	if body.WalletAddress == "" {
		h.writeBadRequest(ctx, w, dErrors.New(dErrors.CodeValidation, "wallet_address is required"))
		return id.WalletAddress{}, false
	}
	address, err := id.ParseWalletAddress(body.WalletAddress)
	if err != nil {
		h.writeBadRequest(ctx, w, err)
		return id.WalletAddress{}, false
	}
	return address, true
}

func (h *Handler) writeBadRequest(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.WarnContext(ctx, "invalid screening request",
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
	var coded *dErrors.Error
	if !errors.As(err, &coded) {
		err = dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	httputil.WriteError(w, err)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeInvariantViolation, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, "failed to "+op,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
