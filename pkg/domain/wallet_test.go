package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "walletreg/pkg/domain-errors"
)

const (
	sampleAddress = "0x7ff9cfad3877f21d41da833e2f775db0569ee3d9"
	sampleAccount = "0x0101010101010101010101010101010101010101010101010101010101010101"
)

func TestParseWalletAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"lower-case hex", sampleAddress, false},
		{"checksummed hex", "0x7FF9cFAd3877F21d41Da833E2F775dB0569eE3D9", false},
		{"upper-case prefix", "0X7ff9cfad3877f21d41da833e2f775db0569ee3d9", false},
		{"zero address", "0x0000000000000000000000000000000000000000", false},

		{"empty", "", true},
		{"missing prefix", "7ff9cfad3877f21d41da833e2f775db0569ee3d9", true},
		{"prefix only", "0x", true},
		{"too short", "0x7ff9cfad", true},
		{"too long", sampleAddress + "00", true},
		{"odd length", sampleAddress[:41], true},
		{"non hex", "0xzzf9cfad3877f21d41da833e2f775db0569ee3d9", true},
		{"oversized input", "0x" + strings.Repeat("a", 1000), true},
		{"surrounding whitespace", " " + sampleAddress + " ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWalletAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestWalletAddress_StringIsLowerCase(t *testing.T) {
	addr := MustWalletAddress("0x7FF9cFAd3877F21d41Da833E2F775dB0569eE3D9")
	assert.Equal(t, sampleAddress, addr.String())
}

func TestWalletAddress_BytesRoundTrip(t *testing.T) {
	addr := MustWalletAddress(sampleAddress)
	restored, err := WalletAddressFromBytes(addr.Bytes())
	require.NoError(t, err)
	assert.Equal(t, addr, restored)

	_, err = WalletAddressFromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestWalletAddress_JSON(t *testing.T) {
	type payload struct {
		Address WalletAddress `json:"address"`
	}
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"address":"`+sampleAddress+`"}`), &p))
	assert.Equal(t, MustWalletAddress(sampleAddress), p.Address)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"`+sampleAddress+`"}`, string(out))

	err = json.Unmarshal([]byte(`{"address":"nope"}`), &p)
	require.Error(t, err)
}

func TestParseAccountID(t *testing.T) {
	t.Run("accepts 32-byte hex", func(t *testing.T) {
		id, err := ParseAccountID(sampleAccount)
		require.NoError(t, err)
		assert.False(t, id.IsNil())
		assert.Equal(t, sampleAccount, id.String())
	})

	t.Run("rejects zero account", func(t *testing.T) {
		_, err := ParseAccountID("0x" + strings.Repeat("0", 64))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects wallet-sized input", func(t *testing.T) {
		_, err := ParseAccountID(sampleAddress)
		require.Error(t, err)
	})

	t.Run("bytes round trip", func(t *testing.T) {
		id := MustAccountID(sampleAccount)
		restored, err := AccountIDFromBytes(id.Bytes())
		require.NoError(t, err)
		assert.Equal(t, id, restored)
	})
}

// TestAccountID_ZeroValueIsNil documents that an unset caller is detectable.
func TestAccountID_ZeroValueIsNil(t *testing.T) {
	var id AccountID
	assert.True(t, id.IsNil())
}
