package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "walletreg/pkg/domain"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		input string
		want  RiskLevel
	}{
		{"low", RiskLevelLow},
		{"Medium", RiskLevelMedium},
		{"HIGH", RiskLevelHigh},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRiskLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRiskLevel("critical")
	require.Error(t, err)
}

func TestRiskLevel_JSON(t *testing.T) {
	var level RiskLevel
	require.NoError(t, json.Unmarshal([]byte(`"medium"`), &level))
	assert.Equal(t, RiskLevelMedium, level)

	require.Error(t, json.Unmarshal([]byte(`"severe"`), &level))

	_, err := json.Marshal(RiskLevel(9))
	require.Error(t, err, "out-of-range levels must not serialize")
}

func TestValidRiskScore(t *testing.T) {
	assert.True(t, ValidRiskScore(0))
	assert.True(t, ValidRiskScore(100))
	assert.False(t, ValidRiskScore(101))
	assert.False(t, ValidRiskScore(999))
	assert.False(t, ValidRiskScore(-1))
}

func TestNewWalletVerified_CopiesRecordFields(t *testing.T) {
	verifier := id.MustAccountID("0x0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a")
	addr := id.MustWalletAddress("0x0101010101010101010101010101010101010101")
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	record := NewVerificationRecord(85, RiskLevelHigh, true, verifier, now)
	event := NewWalletVerified(addr, record)

	assert.NotEqual(t, event.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, addr, event.WalletAddress)
	assert.Equal(t, uint8(85), event.RiskScore)
	assert.Equal(t, RiskLevelHigh, event.RiskLevel)
	assert.Equal(t, verifier, event.VerifiedBy)
	assert.Equal(t, now, event.VerifiedAt)
}
