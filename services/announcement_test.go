package services

import (
	"context"
	"errors"
	"testing"

	"github.com/linkedpost/go-rewards/common/loggers"
	"github.com/linkedpost/go-rewards/models"
)

func storeWith(records map[string]*models.PostRecord) *FakeBlobStore {
	return &FakeBlobStore{records: records}
}

func TestAnnounce(t *testing.T) {
	logger := loggers.NewTestLogger()

	addr1 := "0xAAA0000000000000000000000000000000000001"
	addr2 := "0xBBB0000000000000000000000000000000000002"
	addr3 := "0xCCC0000000000000000000000000000000000003"

	threeSubmissions := []models.Submission{
		{Address: addr1, Cid: "cid1"},
		{Address: addr2, Cid: "cid2"},
		{Address: addr3, Cid: "cid3"},
	}
	threeRecords := map[string]*models.PostRecord{
		"cid1": {PostContent: "post one", LinkedInUsername: "u1", UploadDate: "2026-08-01"},
		"cid2": {PostContent: "post two", LinkedInUsername: "u2", UploadDate: "2026-08-02"},
		"cid3": {PostContent: "post three", LinkedInUsername: "u3", UploadDate: "2026-08-03"},
	}

	tests := map[string]struct {
		ledger         *FakeLedger
		store          *FakeBlobStore
		oracle         *FakeOracle
		expectError    bool
		expectNotFound bool
		expectedWinner string
		expectedScore  int
	}{
		"Will pick the highest scoring submission": {
			ledger:         &FakeLedger{submissions: threeSubmissions},
			store:          storeWith(threeRecords),
			oracle:         &FakeOracle{ratings: map[string]int{"post one": 40, "post two": 85, "post three": 60}},
			expectedWinner: addr2,
			expectedScore:  85,
		},
		"Will break ties in favor of the first submission encountered": {
			ledger:         &FakeLedger{submissions: threeSubmissions},
			store:          storeWith(threeRecords),
			oracle:         &FakeOracle{ratings: map[string]int{"post one": 55, "post two": 90, "post three": 90}},
			expectedWinner: addr2,
			expectedScore:  90,
		},
		"Will return not-found when nothing has been submitted": {
			ledger:         &FakeLedger{},
			store:          storeWith(nil),
			oracle:         &FakeOracle{},
			expectError:    true,
			expectNotFound: true,
		},
		"Will fail the whole run if any record cannot be fetched": {
			ledger:      &FakeLedger{submissions: threeSubmissions},
			store:       &FakeBlobStore{fetchErr: errors.New("ipfs down")},
			oracle:      &FakeOracle{ratings: map[string]int{"post one": 40, "post two": 85, "post three": 60}},
			expectError: true,
		},
		"Will fail the whole run if any rating fails": {
			ledger:      &FakeLedger{submissions: threeSubmissions},
			store:       storeWith(threeRecords),
			oracle:      &FakeOracle{ratingErr: models.NewOracleError("oracle returned malformed rating", nil)},
			expectError: true,
		},
		"Will fail if the winner commit fails": {
			ledger:      &FakeLedger{submissions: threeSubmissions, writeErr: errors.New("broadcast failed")},
			store:       storeWith(threeRecords),
			oracle:      &FakeOracle{ratings: map[string]int{"post one": 40, "post two": 85, "post three": 60}},
			expectError: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			notifier := &FakeNotifier{}
			announcementService := NewAnnouncementService(test.ledger, test.store, test.oracle, notifier, logger, &FakeMetricService{})
			result, err := announcementService.Announce(context.Background())

			if test.expectError {
				if err == nil {
					t.Fatalf("Should have received error")
				}
				if test.expectNotFound {
					reqErr := models.AsRequestError(err)
					if reqErr.Kind != models.ErrorKind_NotFound {
						t.Errorf("expected not-found error, got %v", err)
					}
				}
				if len(test.ledger.announced) != 0 {
					t.Errorf("winner should not have been announced: %v", test.ledger.announced)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error received: %v", err)
			}
			if result.Address != test.expectedWinner {
				t.Errorf("incorrect winner: expected %s, got %s", test.expectedWinner, result.Address)
			}
			if result.Rating != test.expectedScore {
				t.Errorf("incorrect score: expected %d, got %d", test.expectedScore, result.Rating)
			}
			if result.TxHash == "" {
				t.Errorf("expected a transaction hash")
			}
			if len(test.ledger.announced) != 1 || test.ledger.announced[0] != test.expectedWinner {
				t.Errorf("incorrect announce call: %v", test.ledger.announced)
			}
			if len(notifier.announcements) != 1 {
				t.Errorf("expected one announcement notification, got %d", len(notifier.announcements))
			}
		})
	}
}

func TestSubmissionPoolMonitor(t *testing.T) {
	submissions := []models.Submission{
		{Address: "0xAAA0000000000000000000000000000000000001", Cid: "cid1"},
		{Address: "0xBBB0000000000000000000000000000000000002", Cid: "cid2"},
	}
	monitor := NewSubmissionPoolMonitor(&FakeLedger{submissions: submissions})
	value, err := monitor.GetValue(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error received: %v", err)
	}
	if value != len(submissions) {
		t.Errorf("incorrect pool size: expected %d, got %d", len(submissions), value)
	}

	monitor = NewSubmissionPoolMonitor(&FakeLedger{readErr: errors.New("rpc down")})
	if _, err = monitor.GetValue(context.Background()); err == nil {
		t.Errorf("Should have received error")
	}
}
