package handler

import (
	"fmt"
	"time"

	"walletreg/internal/registry/models"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
)

// verifyRequest is the wire form of a verification. Pointer fields tell a
// missing value from a zero one.
type verifyRequest struct {
	WalletAddress *id.WalletAddress `json:"wallet_address"`
	RiskScore     *int              `json:"risk_score"`
	RiskLevel     *models.RiskLevel `json:"risk_level"`
	IsSanctioned  bool              `json:"is_sanctioned"`
}

func (r verifyRequest) toModel() (models.VerifyRequest, error) {
	switch {
	case r.WalletAddress == nil:
		return models.VerifyRequest{}, dErrors.New(dErrors.CodeValidation, "wallet_address is required")
	case r.RiskScore == nil:
		return models.VerifyRequest{}, dErrors.New(dErrors.CodeValidation, "risk_score is required")
	case r.RiskLevel == nil:
		return models.VerifyRequest{}, dErrors.New(dErrors.CodeValidation, "risk_level is required")
	}
	return models.VerifyRequest{
		Address:      *r.WalletAddress,
		RiskScore:    *r.RiskScore,
		RiskLevel:    *r.RiskLevel,
		IsSanctioned: r.IsSanctioned,
	}, nil
}

type batchRequest struct {
	Entries []verifyRequest `json:"entries"`
}

func (r batchRequest) toModel() ([]models.BatchEntry, error) {
	entries := make([]models.BatchEntry, 0, len(r.Entries))
	for i, e := range r.Entries {
		entry, err := e.toModel()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("entries[%d]: %s", i, err.Error()))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type lookupRequest struct {
	WalletAddresses []string `json:"wallet_addresses"`
}

type verificationResponse struct {
	WalletAddress string    `json:"wallet_address"`
	RiskScore     uint8     `json:"risk_score"`
	RiskLevel     string    `json:"risk_level"`
	VerifiedAt    time.Time `json:"verified_at"`
	VerifiedBy    string    `json:"verified_by"`
	IsSanctioned  bool      `json:"is_sanctioned"`
}

func toVerificationResponse(address id.WalletAddress, record models.VerificationRecord) verificationResponse {
	return verificationResponse{
		WalletAddress: address.String(),
		RiskScore:     record.RiskScore,
		RiskLevel:     record.RiskLevel.String(),
		VerifiedAt:    record.VerifiedAt,
		VerifiedBy:    record.VerifiedBy.String(),
		IsSanctioned:  record.IsSanctioned,
	}
}

type batchResponse struct {
	Submitted int    `json:"submitted"`
	Applied   uint64 `json:"applied"`
}

type statusResponse struct {
	WalletAddress string `json:"wallet_address"`
	Verified      bool   `json:"verified"`
}

type lookupResponse struct {
	Verifications map[string]verificationResponse `json:"verifications"`
	Missing       []string                        `json:"missing"`
}

// toLookupResponse lists missing wallets in request order.
func toLookupResponse(requested []id.WalletAddress, records map[id.WalletAddress]models.VerificationRecord) lookupResponse {
	resp := lookupResponse{
		Verifications: make(map[string]verificationResponse, len(records)),
		Missing:       []string{},
	}
	for _, address := range requested {
		record, ok := records[address]
		if !ok {
			resp.Missing = append(resp.Missing, address.String())
			continue
		}
		resp.Verifications[address.String()] = toVerificationResponse(address, record)
	}
	return resp
}

type statsResponse struct {
	TotalVerifications uint64 `json:"total_verifications"`
}

type ownerResponse struct {
	Owner string `json:"owner"`
}
