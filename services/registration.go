package services

import (
	"context"
	"strings"

	"github.com/linkedpost/go-rewards/models"
)

// RegistrationService binds a wallet address to a LinkedIn username on the
// ledger. Whether the address is already registered is enforced by the
// contract, not here.
type RegistrationService struct {
	verifier      models.SignatureVerifier
	ledger        models.Ledger
	logger        models.Logger
	metricService models.MetricService
}

func NewRegistrationService(verifier models.SignatureVerifier, ledger models.Ledger, logger models.Logger, metricService models.MetricService) *RegistrationService {
	return &RegistrationService{verifier, ledger, logger, metricService}
}

type RegistrationRequest struct {
	WalletAddress string `json:"walletAddress"`
	SignedMessage string `json:"signedMessage"`
	Username      string `json:"username"`
}

func (r RegistrationService) Register(ctx context.Context, req *RegistrationRequest) (*models.RegistrationResult, error) {
	if len(strings.TrimSpace(req.Username)) == 0 {
		return nil, models.NewValidationError("username cannot be empty")
	}
	if err := r.verifier.VerifyRegistration(req.WalletAddress, req.SignedMessage); err != nil {
		return nil, err
	}
	txHash, err := r.ledger.Register(ctx, req.WalletAddress, req.Username)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("register: %s registered as %q, tx %s", req.WalletAddress, req.Username, txHash)
	r.metricService.Count(ctx, models.MetricName_UserRegistered, 1)
	return &models.RegistrationResult{Address: req.WalletAddress, TxHash: txHash}, nil
}
