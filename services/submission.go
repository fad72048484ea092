package services

import (
	"context"
	"encoding/base64"
	"os"
	"strconv"
	"strings"
	"time"

	rewards "github.com/linkedpost/go-rewards"
	"github.com/linkedpost/go-rewards/models"
)

// SubmissionService runs the submission pipeline: signature, registration
// lookup, duplicate check, authenticity gates, blob publish, on-chain commit.
// Each step gates the next and the first failure aborts the flow. The
// duplicate check deliberately runs before the oracle call so a repeat
// submitter never costs an oracle invocation.
//
// Steps 2-6 share no transaction boundary. A crash after publish but before
// the on-chain commit leaves an orphaned blob, which is harmless; there is no
// compensating rollback.
type SubmissionService struct {
	verifier            models.SignatureVerifier
	ledger              models.Ledger
	oracle              models.ScoringOracle
	store               models.BlobStore
	logger              models.Logger
	metricService       models.MetricService
	matchRatioThreshold float64
}

func NewSubmissionService(verifier models.SignatureVerifier, ledger models.Ledger, oracle models.ScoringOracle, store models.BlobStore, logger models.Logger, metricService models.MetricService) *SubmissionService {
	matchRatioThreshold := models.DefaultMatchRatioThreshold
	if configThreshold, found := os.LookupEnv(rewards.Env_MatchRatioThreshold); found {
		if parsedThreshold, err := strconv.ParseFloat(configThreshold, 64); err == nil {
			matchRatioThreshold = parsedThreshold
		}
	}
	return &SubmissionService{verifier, ledger, oracle, store, logger, metricService, matchRatioThreshold}
}

type SubmissionRequest struct {
	UserAddress   string `json:"userAddress"`
	PostContent   string `json:"postContent"`
	PostBase64    string `json:"postBase64"`
	SignedMessage string `json:"signedMessage"`
}

func (s SubmissionService) Submit(ctx context.Context, req *SubmissionRequest) (*models.SubmissionResult, error) {
	image, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	// Step 1: the wallet must prove control of the submitting address.
	if err = s.verifier.VerifySubmission(req.UserAddress, req.SignedMessage); err != nil {
		return nil, err
	}

	// Step 2: the address must be registered. The ledger is the only source
	// of truth for the address -> username mapping; nothing is cached.
	username, err := s.ledger.GetUsername(ctx, req.UserAddress)
	if err != nil {
		return nil, err
	}
	if len(username) == 0 {
		return nil, s.reject(ctx, "user is not registered")
	}

	// Step 3: one accepted submission per address.
	submitted, err := s.ledger.IsSubmitted(ctx, req.UserAddress)
	if err != nil {
		return nil, err
	}
	if submitted {
		return nil, s.reject(ctx, "post already submitted")
	}

	// Step 4: authenticity gates, each with its own user-facing reason.
	verdict, err := s.oracle.CheckPost(ctx, req.PostContent, image)
	if err != nil {
		return nil, err
	}
	if !verdict.IsLinkedInPost {
		return nil, s.reject(ctx, "provided image is not a linkedin post")
	}
	if !verdict.IsOwnPost {
		return nil, s.reject(ctx, "provided image is not your linkedin post")
	}
	if verdict.MatchRatio < s.matchRatioThreshold {
		return nil, s.reject(ctx, "post content does not match the screenshot")
	}

	// Step 5: publish the record, keyed per user per calendar day.
	record := &models.PostRecord{
		PostContent:      req.PostContent,
		UploadDate:       time.Now().UTC().Format(models.UploadDateFormat),
		LinkedInUsername: username,
	}
	cid, err := s.store.PublishPost(ctx, record)
	if err != nil {
		return nil, err
	}

	// Step 6: commit the CID on-chain.
	txHash, err := s.ledger.SubmitCid(ctx, req.UserAddress, cid)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("submit: accepted post from %s (%s), cid %s, tx %s", req.UserAddress, username, cid, txHash)
	s.metricService.Count(ctx, models.MetricName_SubmissionAccepted, 1)
	return &models.SubmissionResult{Cid: cid, Username: username, TxHash: txHash}, nil
}

func (s SubmissionService) validate(req *SubmissionRequest) ([]byte, error) {
	if len(strings.TrimSpace(req.PostContent)) == 0 {
		return nil, models.NewValidationError("post content can't be empty")
	}
	if len(strings.TrimSpace(req.PostBase64)) == 0 {
		return nil, models.NewValidationError("image can't be empty")
	}
	image, err := base64.StdEncoding.DecodeString(req.PostBase64)
	if err != nil {
		return nil, models.NewValidationError("image is not valid base64")
	}
	return image, nil
}

func (s SubmissionService) reject(ctx context.Context, reason string) error {
	s.metricService.Count(ctx, models.MetricName_SubmissionRejected, 1)
	s.logger.Infof("submit: rejected: %s", reason)
	return models.NewPolicyError(reason)
}
