package eth

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func signPersonal(t *testing.T, message string) (address, signature string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Error generating key: %v", err)
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		t.Fatalf("Error signing message: %v", err)
	}
	// Wallets encode V as 27/28.
	sig[crypto.RecoveryIDOffset] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestVerifyRegistration(t *testing.T) {
	verifier := NewVerifier()
	address, signature := signPersonal(t, RegisterMessage)

	if err := verifier.VerifyRegistration(address, signature); err != nil {
		t.Errorf("valid signature should verify: %v", err)
	}
	// Address comparison is case-insensitive.
	if err := verifier.VerifyRegistration(strings.ToLower(address), signature); err != nil {
		t.Errorf("lowercased address should verify: %v", err)
	}
}

func TestVerifyRejectsWrongFlow(t *testing.T) {
	verifier := NewVerifier()
	address, signature := signPersonal(t, RegisterMessage)

	// A registration signature must never validate the submission flow.
	if err := verifier.VerifySubmission(address, signature); err == nil {
		t.Errorf("registration signature should not verify as a submission")
	}
}

func TestVerifyRejectsBadInputs(t *testing.T) {
	verifier := NewVerifier()
	address, signature := signPersonal(t, RegisterMessage)
	otherAddress, _ := signPersonal(t, RegisterMessage)

	tests := map[string]struct {
		address   string
		signature string
	}{
		"Malformed address":              {address: "not-an-address", signature: signature},
		"Empty address":                  {address: "", signature: signature},
		"Empty signature":                {address: address, signature: "   "},
		"Truncated signature":            {address: address, signature: signature[:40]},
		"Signature from a different key": {address: otherAddress, signature: signature},
		"Garbage signature":              {address: address, signature: "0xdeadbeef"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if err := verifier.VerifyRegistration(test.address, test.signature); err == nil {
				t.Errorf("should have been rejected")
			}
		})
	}
}
