package models

import (
	id "walletreg/pkg/domain"
)

// VerifyRequest is one verification to record.
// RiskScore is an int so out-of-range input reaches validation intact.
type VerifyRequest struct {
	Address      id.WalletAddress `json:"wallet_address"`
	RiskScore    int              `json:"risk_score"`
	RiskLevel    RiskLevel        `json:"risk_level"`
	IsSanctioned bool             `json:"is_sanctioned"`
}

// BatchEntry is one element of a batch verification, processed in input order.
type BatchEntry = VerifyRequest

// MaxLookupAddresses bounds a bulk read.
const MaxLookupAddresses = 100
