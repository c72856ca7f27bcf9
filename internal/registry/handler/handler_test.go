package handler

import (
	"context"
	"errors"
	"fmt"
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

	"walletreg/internal/registry/handler/mocks"
	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	authmw "walletreg/pkg/platform/middleware/auth"
	"walletreg/pkg/requestcontext"
	"walletreg/pkg/testutil"
)

const (
	ownerToken    = "owner-token"
	strangerToken = "stranger-token"
)

var (
	ownerHex   = "0x" + strings.Repeat("0", 62) + "a1"
	ownerID    = id.MustAccountID(ownerHex)
	strangerID = id.MustAccountID("0x" + strings.Repeat("0", 62) + "b2")
	walletAHex = "0x" + strings.Repeat("0", 38) + "01"
	walletBHex = "0x" + strings.Repeat("0", 38) + "02"
	walletA    = id.MustWalletAddress(walletAHex)
	walletB    = id.MustWalletAddress(walletBHex)
	verifiedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

// stubValidator accepts the owner's and a stranger's token.
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
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)

	logger := slog.New(slog.DiscardHandler)
	h := New(s.service, logger, authmw.RequireAuth(stubValidator{}, logger))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(req *http.Request) *testResponse {
	return &testResponse{t: s.T(), ResponseRecorder: testutil.DoRequest(s.router, req)}
}

func (s *HandlerSuite) authed(req *http.Request) *http.Request {
	return testutil.WithBearer(req, ownerToken)
}

func sampleRecord() models.VerificationRecord {
	return models.VerificationRecord{
		RiskScore:    40,
		RiskLevel:    models.RiskLevelMedium,
		VerifiedAt:   verifiedAt,
		VerifiedBy:   ownerID,
		IsSanctioned: false,
	}
}

func (s *HandlerSuite) TestConstruct() {
	s.Run("creates registry owned by caller", func() {
		s.service.EXPECT().Construct(gomock.Any()).
			Return(&models.RegistryState{Owner: ownerID}, nil)

		rr := s.do(s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/registry")))

		rr.status(http.StatusCreated)
		state := testutil.UnmarshalResponse[map[string]any](s.T(), rr.ResponseRecorder)
		s.Equal(ownerHex, (*state)["owner"])
		s.Equal(float64(0), (*state)["total_verifications"])
	})

	s.Run("rejects a second owner", func() {
		s.service.EXPECT().Construct(gomock.Any()).Return(nil, service.ErrAlreadyConstructed)

		rr := s.do(s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/registry")))

		rr.error(http.StatusConflict, string(dErrors.CodeConflict))
	})

	s.Run("requires a bearer token", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/registry"))
		rr.error(http.StatusUnauthorized, "unauthorized")
	})
}

func (s *HandlerSuite) TestVerifyWallet() {
	body := map[string]any{
		"wallet_address": walletAHex,
		"risk_score":     40,
		"risk_level":     "medium",
		"is_sanctioned":  false,
	}

	s.Run("records verification", func() {
		s.service.EXPECT().VerifyWallet(gomock.Any(), models.VerifyRequest{
			Address:   walletA,
			RiskScore: 40,
			RiskLevel: models.RiskLevelMedium,
		}).DoAndReturn(func(_ context.Context, _ models.VerifyRequest) (*models.VerificationRecord, error) {
			record := sampleRecord()
			return &record, nil
		})

		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body)))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[verificationResponse](s.T(), rr.ResponseRecorder)
		s.Equal(walletAHex, resp.WalletAddress)
		s.Equal(uint8(40), resp.RiskScore)
		s.Equal("medium", resp.RiskLevel)
		s.Equal(ownerHex, resp.VerifiedBy)
		s.True(verifiedAt.Equal(resp.VerifiedAt))
	})

	s.Run("caller is taken from the token", func() {
		s.service.EXPECT().VerifyWallet(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ models.VerifyRequest) (*models.VerificationRecord, error) {
				caller, ok := requestcontext.Caller(ctx)
				s.True(ok)
				s.Equal(ownerID, caller)
				record := sampleRecord()
				return &record, nil
			})

		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body)))
		rr.status(http.StatusOK)
	})

	s.Run("non-owner is forbidden", func() {
		s.service.EXPECT().VerifyWallet(gomock.Any(), gomock.Any()).Return(nil, service.ErrNotAuthorized)

		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body)))
		rr.error(http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("out of range score", func() {
		s.service.EXPECT().VerifyWallet(gomock.Any(), gomock.Any()).Return(nil, service.ErrInvalidRiskScore)

		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", map[string]any{
			"wallet_address": walletAHex,
			"risk_score":     101,
			"risk_level":     "high",
		})))
		rr.error(http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("missing risk level never reaches the service", func() {
		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", map[string]any{
			"wallet_address": walletAHex,
			"risk_score":     10,
		})))
		rr.error(http.StatusBadRequest, string(dErrors.CodeValidation))
		s.Equal("risk_level is required", rr.description())
	})

	s.Run("a stranger's malformed body is a bad request, not forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", map[string]any{
			"wallet_address": walletAHex,
			"risk_score":     10,
		})
		rr := s.do(testutil.WithBearer(req, strangerToken))
		rr.error(http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("a stranger's valid body is forbidden", func() {
		s.service.EXPECT().VerifyWallet(gomock.Any(), gomock.Any()).Return(nil, service.ErrNotAuthorized)

		rr := s.do(testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body), strangerToken))
		rr.error(http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("malformed wallet address", func() {
		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", map[string]any{
			"wallet_address": "0x1234",
			"risk_score":     10,
			"risk_level":     "low",
		})))
		rr.error(http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("unknown fields are rejected", func() {
		rr := s.do(s.authed(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/verifications",
			`{"wallet_address":"`+walletAHex+`","risk_score":1,"risk_level":"low","note":"x"}`)))
		rr.error(http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("store failure hides details", func() {
		s.service.EXPECT().VerifyWallet(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("connection refused"), dErrors.CodeInternal, "failed to verify wallet"))

		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications", body)))
		rr.error(http.StatusInternalServerError, string(dErrors.CodeInternal))
		s.Empty(rr.description())
	})
}

func (s *HandlerSuite) TestVerifyBatch() {
	s.Run("reports submitted and applied counts", func() {
		s.service.EXPECT().VerifyWalletsBatch(gomock.Any(), []models.BatchEntry{
			{Address: walletA, RiskScore: 10, RiskLevel: models.RiskLevelLow},
			{Address: walletB, RiskScore: 150, RiskLevel: models.RiskLevelHigh, IsSanctioned: true},
		}).Return(uint64(1), nil)

		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications/batch", map[string]any{
			"entries": []map[string]any{
				{"wallet_address": walletAHex, "risk_score": 10, "risk_level": "low"},
				{"wallet_address": walletBHex, "risk_score": 150, "risk_level": "high", "is_sanctioned": true},
			},
		})))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[batchResponse](s.T(), rr.ResponseRecorder)
		s.Equal(batchResponse{Submitted: 2, Applied: 1}, *resp)
	})

	s.Run("malformed entry rejects the whole batch", func() {
		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications/batch", map[string]any{
			"entries": []map[string]any{
				{"wallet_address": walletAHex, "risk_score": 10, "risk_level": "low"},
				{"wallet_address": walletBHex, "risk_level": "low"},
			},
		})))

		rr.error(http.StatusBadRequest, string(dErrors.CodeValidation))
		s.Equal("entries[1]: risk_score is required", rr.description())
	})

	s.Run("empty batch still reaches the service", func() {
		s.service.EXPECT().VerifyWalletsBatch(gomock.Any(), []models.BatchEntry{}).Return(uint64(0), nil)

		rr := s.do(s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications/batch",
			map[string]any{"entries": []any{}})))

		rr.status(http.StatusOK)
	})
}

func (s *HandlerSuite) TestGetVerification() {
	s.Run("found", func() {
		record := sampleRecord()
		s.service.EXPECT().GetVerification(gomock.Any(), walletA).Return(&record, nil)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/verifications/"+walletAHex))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[verificationResponse](s.T(), rr.ResponseRecorder)
		s.Equal(walletAHex, resp.WalletAddress)
	})

	s.Run("upper case hex is accepted", func() {
		record := sampleRecord()
		s.service.EXPECT().GetVerification(gomock.Any(), walletA).Return(&record, nil)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/verifications/0X"+strings.Repeat("0", 38)+"01"))
		rr.status(http.StatusOK)
	})

	s.Run("unknown wallet", func() {
		s.service.EXPECT().GetVerification(gomock.Any(), walletB).Return(nil, service.ErrWalletNotVerified)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/verifications/"+walletBHex))
		rr.error(http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("malformed address", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/verifications/not-an-address"))
		rr.error(http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})
}

func (s *HandlerSuite) TestIsVerified() {
	s.service.EXPECT().IsVerified(gomock.Any(), walletB).Return(false, nil)

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/verifications/"+walletBHex+"/status"))

	rr.status(http.StatusOK)
	resp := testutil.UnmarshalResponse[statusResponse](s.T(), rr.ResponseRecorder)
	s.Equal(statusResponse{WalletAddress: walletBHex, Verified: false}, *resp)
}

func (s *HandlerSuite) TestLookup() {
	s.Run("lists present and missing", func() {
		s.service.EXPECT().GetVerifications(gomock.Any(), []id.WalletAddress{walletA, walletB}).
			Return(map[id.WalletAddress]models.VerificationRecord{walletA: sampleRecord()}, nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications/lookup", map[string]any{
			"wallet_addresses": []string{walletAHex, " " + walletBHex, "0X" + strings.Repeat("0", 38) + "01"},
		}))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[lookupResponse](s.T(), rr.ResponseRecorder)
		s.Len(resp.Verifications, 1)
		s.Contains(resp.Verifications, walletAHex)
		s.Equal([]string{walletBHex}, resp.Missing)
	})

	s.Run("bounded", func() {
		addresses := make([]string, models.MaxLookupAddresses+1)
		for i := range addresses {
			addresses[i] = fmt.Sprintf("0x%040x", i+1)
		}

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications/lookup",
			map[string]any{"wallet_addresses": addresses}))

		rr.error(http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("requires at least one address", func() {
		for _, body := range []map[string]any{
			{},
			{"wallet_addresses": []string{}},
			{"wallet_addresses": nil},
		} {
			rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/verifications/lookup", body))

			rr.error(http.StatusBadRequest, string(dErrors.CodeValidation))
		}
	})
}

func (s *HandlerSuite) TestStatsAndOwner() {
	s.Run("stats", func() {
		s.service.EXPECT().TotalVerifications(gomock.Any()).Return(uint64(12), nil)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/registry/stats"))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[statsResponse](s.T(), rr.ResponseRecorder)
		s.Equal(uint64(12), resp.TotalVerifications)
	})

	s.Run("owner", func() {
		s.service.EXPECT().Owner(gomock.Any()).Return(ownerID, nil)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/registry/owner"))

		rr.status(http.StatusOK)
		resp := testutil.UnmarshalResponse[ownerResponse](s.T(), rr.ResponseRecorder)
		s.Equal(ownerHex, resp.Owner)
	})

	s.Run("before construction", func() {
		s.service.EXPECT().Owner(gomock.Any()).Return(id.AccountID{}, service.ErrNotConstructed)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/registry/owner"))
		rr.error(http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

// testResponse keeps body reads to one per response.
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
