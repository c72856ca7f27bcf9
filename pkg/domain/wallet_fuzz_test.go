//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseWalletAddress checks that parsing never panics and that every
// accepted input round-trips through its canonical form.
func FuzzParseWalletAddress(f *testing.F) {
	f.Add("")
	f.Add(sampleAddress)
	f.Add("0x0000000000000000000000000000000000000000")
	f.Add("0x")
	f.Add("'; DROP TABLE wallet_verifications;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add(sampleAddress + "\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		addr, err := ParseWalletAddress(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseWalletAddress(addr.String())
		if err != nil {
			t.Errorf("canonical form failed to parse: %v", err)
		}
		if roundTrip != addr {
			t.Error("round trip changed address value")
		}
	})
}

func FuzzParseAccountID(f *testing.F) {
	f.Add("")
	f.Add(sampleAccount)
	f.Add("0x")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseAccountID(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Error("zero account accepted")
		}
		roundTrip, err := ParseAccountID(id.String())
		if err != nil || roundTrip != id {
			t.Error("round trip changed account value")
		}
	})
}
