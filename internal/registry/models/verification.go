package models

import (
	"time"

	id "walletreg/pkg/domain"
)

// VerificationRecord is the durable outcome of verifying one wallet.
//
// Invariants:
//   - RiskScore is in [0, MaxRiskScore]
//   - VerifiedBy is the registry owner at the time of the write
//   - VerifiedAt never precedes the VerifiedAt of an earlier write
type VerificationRecord struct {
	RiskScore    uint8        `json:"risk_score"`
	RiskLevel    RiskLevel    `json:"risk_level"`
	VerifiedAt   time.Time    `json:"verified_at"`
	VerifiedBy   id.AccountID `json:"verified_by"`
	IsSanctioned bool         `json:"is_sanctioned"`
}

// NewVerificationRecord stamps a record for a write performed by verifier at now.
// Callers validate the score first; it is narrowed here without further checks.
func NewVerificationRecord(score int, level RiskLevel, sanctioned bool, verifier id.AccountID, now time.Time) VerificationRecord {
	return VerificationRecord{
		RiskScore:    uint8(score),
		RiskLevel:    level,
		VerifiedAt:   now,
		VerifiedBy:   verifier,
		IsSanctioned: sanctioned,
	}
}

// RegistryState is the owner, the running write counter and the latest
// VerifiedAt handed out. Writers clamp new stamps to LastVerifiedAt so the
// ordering holds across processes sharing one store.
type RegistryState struct {
	Owner              id.AccountID `json:"owner"`
	TotalVerifications uint64       `json:"total_verifications"`
	LastVerifiedAt     time.Time    `json:"last_verified_at,omitzero"`
}
