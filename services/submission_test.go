package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/linkedpost/go-rewards/common/loggers"
	"github.com/linkedpost/go-rewards/models"
)

const testAddress = "0xABC0000000000000000000000000000000000001"
const testImageBase64 = "aW1hZ2UgYnl0ZXM=" // "image bytes"

func registeredLedger() *FakeLedger {
	return &FakeLedger{
		usernames: map[string]string{testAddress: "alice"},
		submitted: map[string]bool{},
	}
}

func validRequest() *SubmissionRequest {
	return &SubmissionRequest{
		UserAddress:   testAddress,
		PostContent:   "I shipped something today",
		PostBase64:    testImageBase64,
		SignedMessage: "0xsig",
	}
}

func TestSubmit(t *testing.T) {
	logger := loggers.NewTestLogger()
	passingVerdict := &models.Verdict{IsLinkedInPost: true, IsOwnPost: true, MatchRatio: 0.95}

	tests := map[string]struct {
		verifier        *FakeVerifier
		ledger          *FakeLedger
		oracle          *FakeOracle
		store           *FakeBlobStore
		request         *SubmissionRequest
		expectedReason  string
		expectChecked   bool
		expectPublished bool
		expectCommitted bool
	}{
		"Will accept a valid submission": {
			verifier:        &FakeVerifier{},
			ledger:          registeredLedger(),
			oracle:          &FakeOracle{verdict: passingVerdict},
			store:           &FakeBlobStore{},
			request:         validRequest(),
			expectChecked:   true,
			expectPublished: true,
			expectCommitted: true,
		},
		"Will reject a bad signature before reading the ledger": {
			verifier:       &FakeVerifier{failWith: models.NewValidationError("invalid signed message")},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdict: passingVerdict},
			store:          &FakeBlobStore{},
			request:        validRequest(),
			expectedReason: "invalid signed message",
		},
		"Will reject an unregistered address before calling the oracle": {
			verifier:       &FakeVerifier{},
			ledger:         &FakeLedger{usernames: map[string]string{}, submitted: map[string]bool{}},
			oracle:         &FakeOracle{verdict: passingVerdict},
			store:          &FakeBlobStore{},
			request:        validRequest(),
			expectedReason: "user is not registered",
		},
		"Will reject a duplicate submission before calling the oracle": {
			verifier: &FakeVerifier{},
			ledger: &FakeLedger{
				usernames: map[string]string{testAddress: "alice"},
				submitted: map[string]bool{testAddress: true},
			},
			oracle:         &FakeOracle{verdict: passingVerdict},
			store:          &FakeBlobStore{},
			request:        validRequest(),
			expectedReason: "post already submitted",
		},
		"Will reject a screenshot that is not a linkedin post": {
			verifier:       &FakeVerifier{},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdict: &models.Verdict{IsLinkedInPost: false, IsOwnPost: false, MatchRatio: 0}},
			store:          &FakeBlobStore{},
			request:        validRequest(),
			expectedReason: "provided image is not a linkedin post",
			expectChecked:  true,
		},
		"Will reject a post that belongs to someone else": {
			verifier:       &FakeVerifier{},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdict: &models.Verdict{IsLinkedInPost: true, IsOwnPost: false, MatchRatio: 0.95}},
			store:          &FakeBlobStore{},
			request:        validRequest(),
			expectedReason: "provided image is not your linkedin post",
			expectChecked:  true,
		},
		"Will reject content just below the match threshold": {
			verifier:       &FakeVerifier{},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdict: &models.Verdict{IsLinkedInPost: true, IsOwnPost: true, MatchRatio: 0.7999}},
			store:          &FakeBlobStore{},
			request:        validRequest(),
			expectedReason: "post content does not match the screenshot",
			expectChecked:  true,
		},
		"Will accept content exactly at the match threshold": {
			verifier:        &FakeVerifier{},
			ledger:          registeredLedger(),
			oracle:          &FakeOracle{verdict: &models.Verdict{IsLinkedInPost: true, IsOwnPost: true, MatchRatio: 0.80}},
			store:           &FakeBlobStore{},
			request:         validRequest(),
			expectChecked:   true,
			expectPublished: true,
			expectCommitted: true,
		},
		"Will reject empty post content": {
			verifier:       &FakeVerifier{},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdict: passingVerdict},
			store:          &FakeBlobStore{},
			request:        &SubmissionRequest{UserAddress: testAddress, PostContent: "  ", PostBase64: testImageBase64, SignedMessage: "0xsig"},
			expectedReason: "post content can't be empty",
		},
		"Will reject an empty image": {
			verifier:       &FakeVerifier{},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdict: passingVerdict},
			store:          &FakeBlobStore{},
			request:        &SubmissionRequest{UserAddress: testAddress, PostContent: "content", PostBase64: "", SignedMessage: "0xsig"},
			expectedReason: "image can't be empty",
		},
		"Will reject an image that is not valid base64": {
			verifier:       &FakeVerifier{},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdict: passingVerdict},
			store:          &FakeBlobStore{},
			request:        &SubmissionRequest{UserAddress: testAddress, PostContent: "content", PostBase64: "not-base64!!", SignedMessage: "0xsig"},
			expectedReason: "image is not valid base64",
		},
		"Will not commit on-chain if the blob publish fails": {
			verifier:        &FakeVerifier{},
			ledger:          registeredLedger(),
			oracle:          &FakeOracle{verdict: passingVerdict},
			store:           &FakeBlobStore{publishErr: errors.New("ipfs down")},
			request:         validRequest(),
			expectedReason:  "ipfs down",
			expectChecked:   true,
			expectPublished: true,
		},
		"Will fail if the oracle errors": {
			verifier:       &FakeVerifier{},
			ledger:         registeredLedger(),
			oracle:         &FakeOracle{verdictErr: models.NewOracleError("oracle returned malformed verdict", nil)},
			store:          &FakeBlobStore{},
			request:        validRequest(),
			expectedReason: "oracle returned malformed verdict",
			expectChecked:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			submissionService := NewSubmissionService(test.verifier, test.ledger, test.oracle, test.store, logger, &FakeMetricService{})
			result, err := submissionService.Submit(context.Background(), test.request)

			if len(test.expectedReason) > 0 {
				if err == nil {
					t.Fatalf("Should have received error")
				}
				if !strings.Contains(err.Error(), test.expectedReason) {
					t.Errorf("incorrect error: expected %q, got %q", test.expectedReason, err.Error())
				}
			} else if err != nil {
				t.Fatalf("Unexpected error received: %v", err)
			}

			if test.expectChecked != (test.oracle.checkCalls > 0) {
				t.Errorf("incorrect oracle usage: expected checked=%v, got %d calls", test.expectChecked, test.oracle.checkCalls)
			}
			if test.expectPublished != (test.store.publishCalls > 0) {
				t.Errorf("incorrect store usage: expected published=%v, got %d calls", test.expectPublished, test.store.publishCalls)
			}
			if test.expectCommitted != (len(test.ledger.submittedCids) > 0) {
				t.Errorf("incorrect ledger usage: expected committed=%v, got %d calls", test.expectCommitted, len(test.ledger.submittedCids))
			}
			if test.expectCommitted {
				if result.Username != "alice" {
					t.Errorf("incorrect username: %s", result.Username)
				}
				if result.TxHash == "" || result.Cid == "" {
					t.Errorf("incomplete result: %v", result)
				}
				committed := test.ledger.submittedCids[0]
				if committed.Address != testAddress || committed.Cid != result.Cid {
					t.Errorf("incorrect cid commit: %v", committed)
				}
			}
		})
	}
}

func TestSubmitRoundTrip(t *testing.T) {
	logger := loggers.NewTestLogger()
	store := &FakeBlobStore{}
	ledger := registeredLedger()
	oracle := &FakeOracle{verdict: &models.Verdict{IsLinkedInPost: true, IsOwnPost: true, MatchRatio: 1}}

	submissionService := NewSubmissionService(&FakeVerifier{}, ledger, oracle, store, logger, &FakeMetricService{})
	result, err := submissionService.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Unexpected error received: %v", err)
	}

	record, err := store.FetchPost(context.Background(), result.Cid)
	if err != nil {
		t.Fatalf("Error reading record back: %v", err)
	}
	if record.PostContent != "I shipped something today" {
		t.Errorf("incorrect content after round trip: %s", record.PostContent)
	}
	if record.LinkedInUsername != "alice" {
		t.Errorf("incorrect username after round trip: %s", record.LinkedInUsername)
	}
}
