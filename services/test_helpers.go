package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/linkedpost/go-rewards/models"
)

type FakeVerifier struct {
	failWith          error
	registrationCalls int
	submissionCalls   int
}

func (f *FakeVerifier) VerifyRegistration(claimedAddress, signature string) error {
	f.registrationCalls++
	return f.failWith
}

func (f *FakeVerifier) VerifySubmission(claimedAddress, signature string) error {
	f.submissionCalls++
	return f.failWith
}

type registerCall struct {
	address  string
	username string
}

type FakeLedger struct {
	usernames     map[string]string
	submitted     map[string]bool
	submissions   []models.Submission
	readErr       error
	writeErr      error
	registers     []registerCall
	submittedCids []models.Submission
	announced     []string
}

func (f *FakeLedger) GetUsername(ctx context.Context, address string) (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.usernames[address], nil
}

func (f *FakeLedger) IsSubmitted(ctx context.Context, address string) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	return f.submitted[address], nil
}

func (f *FakeLedger) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.submissions, nil
}

func (f *FakeLedger) Register(ctx context.Context, address, username string) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.registers = append(f.registers, registerCall{address, username})
	return "0xregistertx", nil
}

func (f *FakeLedger) SubmitCid(ctx context.Context, address, cid string) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.submittedCids = append(f.submittedCids, models.Submission{Address: address, Cid: cid})
	return "0xsubmittx", nil
}

func (f *FakeLedger) AnnounceWinner(ctx context.Context, address string) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.announced = append(f.announced, address)
	return "0xannouncetx", nil
}

type FakeOracle struct {
	verdict    *models.Verdict
	verdictErr error
	ratings    map[string]int
	ratingErr  error
	checkCalls int
	rateCalls  int
}

func (f *FakeOracle) CheckPost(ctx context.Context, postContent string, image []byte) (*models.Verdict, error) {
	f.checkCalls++
	if f.verdictErr != nil {
		return nil, f.verdictErr
	}
	return f.verdict, nil
}

func (f *FakeOracle) RatePost(ctx context.Context, postContent string) (int, error) {
	f.rateCalls++
	if f.ratingErr != nil {
		return 0, f.ratingErr
	}
	if score, found := f.ratings[postContent]; found {
		return score, nil
	}
	return 0, errors.New("no rating configured for content")
}

type FakeBlobStore struct {
	records      map[string]*models.PostRecord
	publishErr   error
	fetchErr     error
	publishCalls int
}

func (f *FakeBlobStore) PublishPost(ctx context.Context, record *models.PostRecord) (string, error) {
	f.publishCalls++
	if f.publishErr != nil {
		return "", f.publishErr
	}
	cid := fmt.Sprintf("bafy-%s", record.StorageKey())
	if f.records == nil {
		f.records = make(map[string]*models.PostRecord)
	}
	f.records[cid] = record
	return cid, nil
}

func (f *FakeBlobStore) FetchPost(ctx context.Context, cid string) (*models.PostRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	record, found := f.records[cid]
	if !found {
		return nil, models.NewUpstreamError(fmt.Sprintf("unknown cid %s", cid), nil)
	}
	return record, nil
}

type FakeNotifier struct {
	alerts        []string
	announcements []string
}

func (f *FakeNotifier) SendAlert(title, desc, content string) error {
	f.alerts = append(f.alerts, title)
	return nil
}

func (f *FakeNotifier) SendAnnouncement(title, desc string) error {
	f.announcements = append(f.announcements, desc)
	return nil
}

type FakeMetricService struct {
	countsMu sync.Mutex
	counts   map[models.MetricName]int
}

func (f *FakeMetricService) Count(ctx context.Context, name models.MetricName, val int) error {
	f.countsMu.Lock()
	defer f.countsMu.Unlock()
	if f.counts == nil {
		f.counts = make(map[models.MetricName]int)
	}
	f.counts[name] += val
	return nil
}

func (f *FakeMetricService) Gauge(ctx context.Context, name models.MetricName, monitor models.ResourceMonitor) error {
	return nil
}

func (f *FakeMetricService) Distribution(ctx context.Context, name models.MetricName, val int) error {
	return nil
}

func (f *FakeMetricService) Shutdown(ctx context.Context) {}
