package services

import (
	"context"
	"testing"

	"github.com/linkedpost/go-rewards/common/loggers"
	"github.com/linkedpost/go-rewards/models"
)

func TestRegister(t *testing.T) {
	logger := loggers.NewTestLogger()

	tests := map[string]struct {
		verifier      *FakeVerifier
		ledger        *FakeLedger
		request       *RegistrationRequest
		expectError   bool
		expectedCalls int
	}{
		"Will register a user with a valid signature": {
			verifier:      &FakeVerifier{},
			ledger:        &FakeLedger{},
			request:       &RegistrationRequest{WalletAddress: "0xABC0000000000000000000000000000000000001", SignedMessage: "0xsig", Username: "alice"},
			expectError:   false,
			expectedCalls: 1,
		},
		"Will not call the ledger if the signature check fails": {
			verifier:      &FakeVerifier{failWith: models.NewValidationError("invalid signed message")},
			ledger:        &FakeLedger{},
			request:       &RegistrationRequest{WalletAddress: "0xABC0000000000000000000000000000000000001", SignedMessage: "0xbad", Username: "alice"},
			expectError:   true,
			expectedCalls: 0,
		},
		"Will reject an empty username before verifying anything": {
			verifier:      &FakeVerifier{},
			ledger:        &FakeLedger{},
			request:       &RegistrationRequest{WalletAddress: "0xABC0000000000000000000000000000000000001", SignedMessage: "0xsig", Username: "   "},
			expectError:   true,
			expectedCalls: 0,
		},
		"Will propagate a ledger write failure": {
			verifier:      &FakeVerifier{},
			ledger:        &FakeLedger{writeErr: models.NewUpstreamError("broadcast failed", nil)},
			request:       &RegistrationRequest{WalletAddress: "0xABC0000000000000000000000000000000000001", SignedMessage: "0xsig", Username: "alice"},
			expectError:   true,
			expectedCalls: 0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			registrationService := NewRegistrationService(test.verifier, test.ledger, logger, &FakeMetricService{})
			result, err := registrationService.Register(context.Background(), test.request)
			if err != nil && !test.expectError {
				t.Fatalf("Unexpected error received: %v", err)
			} else if err == nil && test.expectError {
				t.Fatalf("Should have received error")
			}
			if len(test.ledger.registers) != test.expectedCalls {
				t.Errorf("incorrect number of register calls: expected %d, got %d", test.expectedCalls, len(test.ledger.registers))
			}
			if !test.expectError {
				if result.TxHash == "" {
					t.Errorf("expected a transaction hash")
				}
				if result.Address != test.request.WalletAddress {
					t.Errorf("incorrect address: expected %s, got %s", test.request.WalletAddress, result.Address)
				}
				registered := test.ledger.registers[0]
				if registered.address != test.request.WalletAddress || registered.username != test.request.Username {
					t.Errorf("incorrect register call: %v", registered)
				}
			}
		})
	}
}
