package services

import (
	"context"
	"fmt"

	"github.com/linkedpost/go-rewards/models"
)

// AnnouncementService rates every submitted post and commits the winner
// on-chain. A store read failure for any single submission fails the whole
// run: silently skipping an entry could disqualify a would-be winner.
//
// The flow is not idempotent. Running it twice announces a winner twice
// unless the contract itself refuses the second call.
type AnnouncementService struct {
	ledger        models.Ledger
	store         models.BlobStore
	oracle        models.ScoringOracle
	notifier      models.Notifier
	logger        models.Logger
	metricService models.MetricService
}

func NewAnnouncementService(ledger models.Ledger, store models.BlobStore, oracle models.ScoringOracle, notifier models.Notifier, logger models.Logger, metricService models.MetricService) *AnnouncementService {
	return &AnnouncementService{ledger, store, oracle, notifier, logger, metricService}
}

// SubmissionPoolMonitor reports how many submissions are waiting on the next
// announcement run. Registered as a gauge at startup.
type SubmissionPoolMonitor struct {
	ledger models.Ledger
}

func NewSubmissionPoolMonitor(ledger models.Ledger) *SubmissionPoolMonitor {
	return &SubmissionPoolMonitor{ledger}
}

func (m *SubmissionPoolMonitor) GetValue(ctx context.Context) (int, error) {
	submissions, err := m.ledger.ListSubmissions(ctx)
	if err != nil {
		return 0, err
	}
	return len(submissions), nil
}

func (a AnnouncementService) Announce(ctx context.Context) (*models.AnnouncementResult, error) {
	a.metricService.Count(ctx, models.MetricName_AnnouncementRun, 1)

	submissions, err := a.ledger.ListSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	if len(submissions) == 0 {
		return nil, models.NewNotFoundError("no posts have been submitted yet")
	}

	// Highest score wins; ties go to the earliest submission in ledger
	// order, so a rerun over the same chain state picks the same winner.
	var winner *models.Submission
	winningScore := 0
	for idx := range submissions {
		submission := submissions[idx]
		record, err := a.store.FetchPost(ctx, submission.Cid)
		if err != nil {
			return nil, err
		}
		score, err := a.oracle.RatePost(ctx, record.PostContent)
		if err != nil {
			return nil, err
		}
		a.logger.Debugf("announce: %s (%s) scored %d", submission.Address, record.LinkedInUsername, score)
		a.metricService.Distribution(ctx, models.MetricName_PostRating, score)
		if score > winningScore {
			winningScore = score
			winner = &submissions[idx]
		}
	}

	txHash, err := a.ledger.AnnounceWinner(ctx, winner.Address)
	if err != nil {
		return nil, err
	}
	a.logger.Infof("announce: winner %s with score %d, tx %s", winner.Address, winningScore, txHash)
	a.metricService.Count(ctx, models.MetricName_WinnerAnnounced, 1)

	// Best-effort notification; the announcement already succeeded.
	if err = a.notifier.SendAnnouncement(
		"Reward Winner Announced",
		fmt.Sprintf("Winner: %s\nScore: %d\nTx: %s", winner.Address, winningScore, txHash),
	); err != nil {
		a.logger.Warnf("announce: failed to send notification: %v", err)
	}

	return &models.AnnouncementResult{Address: winner.Address, Rating: winningScore, TxHash: txHash}, nil
}
