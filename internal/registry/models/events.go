package models

import (
	"time"

	"github.com/google/uuid"

	id "walletreg/pkg/domain"
)

// EventWalletVerified is the event type recorded for every applied write.
const EventWalletVerified = "wallet_verified"

// WalletVerified is the notification emitted once per applied write, in the
// same call that performs the write.
type WalletVerified struct {
	ID            uuid.UUID        `json:"id"`
	WalletAddress id.WalletAddress `json:"wallet_address"`
	RiskScore     uint8            `json:"risk_score"`
	RiskLevel     RiskLevel        `json:"risk_level"`
	VerifiedBy    id.AccountID     `json:"verified_by"`
	VerifiedAt    time.Time        `json:"verified_at"`
}

// NewWalletVerified builds the notification for a stored record.
func NewWalletVerified(address id.WalletAddress, record VerificationRecord) WalletVerified {
	return WalletVerified{
		ID:            uuid.New(),
		WalletAddress: address,
		RiskScore:     record.RiskScore,
		RiskLevel:     record.RiskLevel,
		VerifiedBy:    record.VerifiedBy,
		VerifiedAt:    record.VerifiedAt,
	}
}
