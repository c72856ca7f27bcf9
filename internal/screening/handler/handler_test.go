package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"walletreg/internal/registry/models"
	"walletreg/internal/screening/handler/mocks"
	"walletreg/internal/screening/orchestrator"
	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	authmw "walletreg/pkg/platform/middleware/auth"
	"walletreg/pkg/testutil"
)

const (
	ownerToken    = "owner-token"
	strangerToken = "stranger-token"
)

var (
	ownerID    = id.MustAccountID("0x" + strings.Repeat("0", 62) + "a1")
	strangerID = id.MustAccountID("0x" + strings.Repeat("0", 62) + "b2")
	walletHex  = "0x" + strings.Repeat("0", 38) + "01"
	wallet     = id.MustWalletAddress(walletHex)
	checkedAt  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*authmw.JWTClaims, error) {
	switch token {
	case ownerToken:
		return &authmw.JWTClaims{Caller: ownerID, JTI: "jti-1"}, nil
	case strangerToken:
		return &authmw.JWTClaims{Caller: strangerID, JTI: "jti-2"}, nil
	}
	return nil, errors.New("invalid token")
}

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	screener *mocks.MockScreener
	registry *mocks.MockRegistry
	router   chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.screener = mocks.NewMockScreener(s.ctrl)
	s.registry = mocks.NewMockRegistry(s.ctrl)

	logger := slog.New(slog.DiscardHandler)
	h := New(s.screener, s.registry, logger, authmw.RequireAuth(stubValidator{}, logger))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(req *http.Request) *testResponse {
	return &testResponse{t: s.T(), ResponseRecorder: testutil.DoRequest(s.router, req)}
}

func sampleReport(sanctioned bool) *orchestrator.Report {
	report := &orchestrator.Report{
		Address:   wallet,
		RiskScore: 32,
		RiskLevel: models.RiskLevelLow,
		Findings: []providers.Finding{
			{ProviderID: "ofac", Kind: providers.KindSanctions, CheckedAt: checkedAt},
			{ProviderID: "alchemy", Kind: providers.KindAnalytics, RiskScore: 32, CheckedAt: checkedAt},
		},
		CheckedAt: checkedAt,
	}
	if sanctioned {
		report.Sanctioned = true
		report.RiskScore = models.MaxRiskScore
		report.RiskLevel = models.RiskLevelHigh
	}
	return report
}

func (s *HandlerSuite) TestProviders() {
	s.screener.EXPECT().Providers().Return([]string{"ofac", "alchemy"})

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/screenings/providers"))

	rr.status(http.StatusOK)
	resp := testutil.UnmarshalResponse[providersResponse](s.T(), rr.ResponseRecorder)
	s.Equal([]string{"ofac", "alchemy"}, resp.Providers)
}

func (s *HandlerSuite) TestScreen() {
	body := map[string]any{"wallet_address": walletHex}

	s.Run("returns the combined report", func() {
		s.screener.EXPECT().Screen(gomock.Any(), wallet).Return(sampleReport(false), nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings", body))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr.ResponseRecorder)
		s.Equal(walletHex, (*resp)["wallet_address"])
		s.Equal(float64(32), (*resp)["risk_score"])
		s.Equal("low", (*resp)["risk_level"])
		s.Equal(false, (*resp)["sanctioned"])
		s.Len((*resp)["findings"], 2)
	})

	s.Run("screening failure", func() {
		s.screener.EXPECT().Screen(gomock.Any(), wallet).
			Return(nil, dErrors.Wrap(providers.ErrAllProvidersFailed, dErrors.CodeInternal, "all screening providers failed"))

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings", body))
		rr.error(http.StatusInternalServerError, string(dErrors.CodeInternal))
	})

	s.Run("missing address never reaches the screener", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings", map[string]any{}))
		rr.error(http.StatusBadRequest, string(dErrors.CodeValidation))
		s.Equal("wallet_address is required", rr.description())
	})

	s.Run("malformed address", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings", map[string]any{"wallet_address": "0x12"}))
		rr.error(http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})
}

func (s *HandlerSuite) TestScreenWith() {
	body := map[string]any{"wallet_address": walletHex}

	s.Run("returns the provider finding", func() {
		s.screener.EXPECT().ScreenWith(gomock.Any(), "ofac", wallet).Return(&providers.Finding{
			ProviderID: "ofac",
			Kind:       providers.KindSanctions,
			Sanctioned: true,
			RiskScore:  100,
			RiskLevel:  models.RiskLevelHigh,
			Matches:    []providers.Match{{ListName: "OFAC SDN", Entity: "Tornado Cash", Score: 1}},
			CheckedAt:  checkedAt,
		}, nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/ofac", body))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr.ResponseRecorder)
		s.Equal("ofac", (*resp)["provider"])
		s.Equal(true, (*resp)["sanctioned"])
		s.Equal("high", (*resp)["risk_level"])
	})

	s.Run("unknown provider", func() {
		s.screener.EXPECT().ScreenWith(gomock.Any(), "elliptic", wallet).Return(nil, orchestrator.ErrUnknownProvider)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/elliptic", body))
		rr.error(http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("rate limited upstream", func() {
		s.screener.EXPECT().ScreenWith(gomock.Any(), "alchemy", wallet).
			Return(nil, dErrors.New(dErrors.CodeRateLimited, "screening provider is rate limited"))

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/alchemy", body))
		rr.error(http.StatusTooManyRequests, string(dErrors.CodeRateLimited))
	})
}

func (s *HandlerSuite) TestRecord() {
	body := map[string]any{"wallet_address": walletHex}

	s.Run("screens then records the verification", func() {
		gomock.InOrder(
			s.registry.EXPECT().Owner(gomock.Any()).Return(ownerID, nil),
			s.screener.EXPECT().Screen(gomock.Any(), wallet).Return(sampleReport(true), nil),
			s.registry.EXPECT().VerifyWallet(gomock.Any(), models.VerifyRequest{
				Address:      wallet,
				RiskScore:    100,
				RiskLevel:    models.RiskLevelHigh,
				IsSanctioned: true,
			}).Return(&models.VerificationRecord{
				RiskScore:    100,
				RiskLevel:    models.RiskLevelHigh,
				VerifiedAt:   checkedAt,
				VerifiedBy:   ownerID,
				IsSanctioned: true,
			}, nil),
		)

		rr := s.do(testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/record", body), ownerToken))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[recordResponse](s.T(), rr.ResponseRecorder)
		s.Equal(walletHex, resp.Verification.WalletAddress)
		s.Equal(uint8(100), resp.Verification.RiskScore)
		s.Equal("high", resp.Verification.RiskLevel)
		s.True(resp.Verification.IsSanctioned)
		s.Equal(ownerID.String(), resp.Verification.VerifiedBy)
		s.True(checkedAt.Equal(resp.Verification.VerifiedAt))
		s.Require().NotNil(resp.Screening)
		s.True(resp.Screening.Sanctioned)
	})

	s.Run("non-owner is refused before any provider is called", func() {
		s.registry.EXPECT().Owner(gomock.Any()).Return(ownerID, nil)

		rr := s.do(testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/record", body), strangerToken))
		rr.error(http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("unconstructed registry", func() {
		s.registry.EXPECT().Owner(gomock.Any()).
			Return(id.AccountID{}, dErrors.New(dErrors.CodeNotFound, "registry has not been constructed"))

		rr := s.do(testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/record", body), ownerToken))
		rr.error(http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("failed screening records nothing", func() {
		s.registry.EXPECT().Owner(gomock.Any()).Return(ownerID, nil)
		s.screener.EXPECT().Screen(gomock.Any(), wallet).
			Return(nil, dErrors.Wrap(providers.ErrAllProvidersFailed, dErrors.CodeInternal, "all screening providers failed"))

		rr := s.do(testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/record", body), ownerToken))
		rr.error(http.StatusInternalServerError, string(dErrors.CodeInternal))
	})

	s.Run("requires a bearer token", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/screenings/record", body))
		rr.error(http.StatusUnauthorized, "unauthorized")
	})
}

type testResponse struct {
	*httptest.ResponseRecorder
	t       *testing.T
	decoded testutil.ErrorResponse
}

func (r *testResponse) status(expected int) {
	r.t.Helper()
	require.Equal(r.t, expected, r.Code, "body: %s", r.Body.String())
}

func (r *testResponse) error(expectedStatus int, expectedCode string) {
	r.t.Helper()
	r.status(expectedStatus)
	r.decoded = testutil.UnmarshalErrorResponse(r.t, r.ResponseRecorder)
	assert.Equal(r.t, expectedCode, r.decoded.Error)
}

func (r *testResponse) description() string {
	return r.decoded.ErrorDescription
}

