package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	dErrors "walletreg/pkg/domain-errors"
)

// maxHexInputLength bounds parser input before any decoding work happens.
const maxHexInputLength = 128

// WalletAddress is the 20-byte identifier of an assessed external account.
// The registry treats it as an opaque lookup key.
type WalletAddress common.Address

// AccountID identifies a caller of the registry (the host's 32-byte account id).
// The zero value means "no caller".
type AccountID common.Hash

// ParseWalletAddress parses 0x-prefixed hex into a WalletAddress.
// Mixed-case input is accepted; the EIP-55 checksum is not enforced.
func ParseWalletAddress(s string) (WalletAddress, error) {
	b, err := decodeHex(s, common.AddressLength, "wallet address")
	if err != nil {
		return WalletAddress{}, err
	}
	return WalletAddress(common.BytesToAddress(b)), nil
}

// MustWalletAddress panics on invalid input. Intended for tests and constants.
func MustWalletAddress(s string) WalletAddress {
	a, err := ParseWalletAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// WalletAddressFromBytes builds a WalletAddress from its persisted form.
func WalletAddressFromBytes(b []byte) (WalletAddress, error) {
	if len(b) != common.AddressLength {
		return WalletAddress{}, dErrors.New(dErrors.CodeInvalidInput, "wallet address must be 20 bytes")
	}
	return WalletAddress(common.BytesToAddress(b)), nil
}

// String renders the address as lower-case 0x hex.
func (a WalletAddress) String() string {
	return hexutil.Encode(a[:])
}

// Bytes returns a copy of the 20 raw bytes.
func (a WalletAddress) Bytes() []byte {
	return common.Address(a).Bytes()
}

func (a WalletAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *WalletAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseWalletAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAccountID parses 0x-prefixed 64-digit hex into an AccountID.
// The all-zero account is rejected because it denotes an absent caller.
func ParseAccountID(s string) (AccountID, error) {
	b, err := decodeHex(s, common.HashLength, "account id")
	if err != nil {
		return AccountID{}, err
	}
	id := AccountID(common.BytesToHash(b))
	if id.IsNil() {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account id must not be zero")
	}
	return id, nil
}

// MustAccountID panics on invalid input. Intended for tests and constants.
func MustAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// AccountIDFromBytes builds an AccountID from its persisted form.
func AccountIDFromBytes(b []byte) (AccountID, error) {
	if len(b) != common.HashLength {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account id must be 32 bytes")
	}
	return AccountID(common.BytesToHash(b)), nil
}

func (id AccountID) IsNil() bool {
	return id == AccountID{}
}

func (id AccountID) String() string {
	return hexutil.Encode(id[:])
}

func (id AccountID) Bytes() []byte {
	return common.Hash(id).Bytes()
}

func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func decodeHex(s string, size int, what string) ([]byte, error) {
	if s == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	if len(s) > maxHexInputLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, what+" is too long")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, what+" must be 0x-prefixed hex")
	}
	b, err := hexutil.Decode("0x" + s[2:])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+what)
	}
	if len(b) != size {
		return nil, dErrors.New(dErrors.CodeInvalidInput, what+" has wrong length")
	}
	return b, nil
}
