package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"walletreg/internal/registry/models"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	"walletreg/pkg/platform/httputil"
	strutil "walletreg/pkg/platform/strings"
	"walletreg/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the registry surface served over HTTP.
type Service interface {
	Construct(ctx context.Context) (*models.RegistryState, error)
	VerifyWallet(ctx context.Context, req models.VerifyRequest) (*models.VerificationRecord, error)
	VerifyWalletsBatch(ctx context.Context, entries []models.BatchEntry) (uint64, error)
	GetVerification(ctx context.Context, address id.WalletAddress) (*models.VerificationRecord, error)
	IsVerified(ctx context.Context, address id.WalletAddress) (bool, error)
	GetVerifications(ctx context.Context, addresses []id.WalletAddress) (map[id.WalletAddress]models.VerificationRecord, error)
	TotalVerifications(ctx context.Context) (uint64, error)
	Owner(ctx context.Context) (id.AccountID, error)
}

// Handler serves the registry routes.
type Handler struct {
	registry    Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// New creates a registry Handler. requireAuth guards the mutating routes and
// must put the caller on the request context.
func New(registry Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		registry:    registry,
		logger:      logger,
		requireAuth: requireAuth,
	}
}

// Register mounts the registry routes on r. Callers mount r under the API
// version prefix.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(authed chi.Router) {
		authed.Use(h.requireAuth)
		authed.Post("/registry", h.handleConstruct)
		authed.Post("/verifications", h.handleVerifyWallet)
		authed.Post("/verifications/batch", h.handleVerifyBatch)
	})

	r.Get("/registry/stats", h.handleStats)
	r.Get("/registry/owner", h.handleOwner)
	r.Get("/verifications/{address}", h.handleGetVerification)
	r.Get("/verifications/{address}/status", h.handleIsVerified)
	r.Post("/verifications/lookup", h.handleLookup)
}

func (h *Handler) handleConstruct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.registry.Construct(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "construct registry", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, state)
}

func (h *Handler) handleVerifyWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body verifyRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeBadRequest(ctx, w, err)
		return
	}
	req, err := body.toModel()
	if err != nil {
		h.writeBadRequest(ctx, w, err)
		return
	}

	record, err := h.registry.VerifyWallet(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "verify wallet", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerificationResponse(req.Address, *record))
}

func (h *Handler) handleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body batchRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeBadRequest(ctx, w, err)
		return
	}
	entries, err := body.toModel()
	if err != nil {
		h.writeBadRequest(ctx, w, err)
		return
	}

	applied, err := h.registry.VerifyWalletsBatch(ctx, entries)
	if err != nil {
		h.writeServiceError(ctx, w, "verify wallet batch", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, batchResponse{
		Submitted: len(entries),
		Applied:   applied,
	})
}

func (h *Handler) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, ok := h.addressParam(w, r)
	if !ok {
		return
	}

	record, err := h.registry.GetVerification(ctx, address)
	if err != nil {
		h.writeServiceError(ctx, w, "get verification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerificationResponse(address, *record))
}

func (h *Handler) handleIsVerified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, ok := h.addressParam(w, r)
	if !ok {
		return
	}

	verified, err := h.registry.IsVerified(ctx, address)
	if err != nil {
		h.writeServiceError(ctx, w, "check verification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		WalletAddress: address.String(),
		Verified:      verified,
	})
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body lookupRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeBadRequest(ctx, w, err)
		return
	}
	raw := strutil.FoldUnique(body.WalletAddresses)
	if len(raw) == 0 {
		h.writeBadRequest(ctx, w, dErrors.New(dErrors.CodeValidation, "wallet_addresses is required"))
		return
	}
	if len(raw) > models.MaxLookupAddresses {
		h.writeBadRequest(ctx, w, dErrors.New(dErrors.CodeValidation, "too many wallet addresses"))
		return
	}
	addresses := make([]id.WalletAddress, 0, len(raw))
	for _, s := range raw {
		address, err := id.ParseWalletAddress(s)
		if err != nil {
			h.writeBadRequest(ctx, w, err)
			return
		}
		addresses = append(addresses, address)
	}

	records, err := h.registry.GetVerifications(ctx, addresses)
	if err != nil {
		h.writeServiceError(ctx, w, "lookup verifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLookupResponse(addresses, records))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := h.registry.TotalVerifications(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "load registry stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statsResponse{TotalVerifications: total})
}

func (h *Handler) handleOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := h.registry.Owner(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "load registry owner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ownerResponse{Owner: owner.String()})
}

func (h *Handler) addressParam(w http.ResponseWriter, r *http.Request) (id.WalletAddress, bool) {
	address, err := id.ParseWalletAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.writeBadRequest(r.Context(), w, err)
		return id.WalletAddress{}, false
	}
	return address, true
}

func (h *Handler) writeBadRequest(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.WarnContext(ctx, "invalid registry request",
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
