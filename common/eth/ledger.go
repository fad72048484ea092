package eth

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/linkedpost/go-rewards/models"
)

type LedgerOpts struct {
	RpcUrl          string
	ContractAddress string
	OwnerPrivateKey string
	ChainId         int64
	// WaitForReceipt makes every write block until the transaction is mined.
	// When false (the default), writes return right after broadcast and a
	// read immediately after a write can observe stale state.
	WaitForReceipt bool
}

// LedgerClient talks to the deployed reward contract. Reads can run
// concurrently; writes are serialized through writeMu because they share the
// custodial key's account nonce.
type LedgerClient struct {
	client        *ethclient.Client
	contractAddr  ethcommon.Address
	abi           abi.ABI
	ownerKey      *ecdsa.PrivateKey
	ownerAddr     ethcommon.Address
	chainId       *big.Int
	waitForTx     bool
	writeMu       sync.Mutex
	logger        models.Logger
	metricService models.MetricService
}

func NewLedgerClient(logger models.Logger, metricService models.MetricService, opts LedgerOpts) (*LedgerClient, error) {
	if !ethcommon.IsHexAddress(opts.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address: %s", opts.ContractAddress)
	}
	client, err := ethclient.Dial(opts.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("connecting to chain rpc: %w", err)
	}
	ownerKey, err := crypto.HexToECDSA(strings.TrimPrefix(opts.OwnerPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid owner private key: %w", err)
	}
	contractAbi, err := abi.JSON(strings.NewReader(RewardContractABI))
	if err != nil {
		return nil, fmt.Errorf("parsing contract abi: %w", err)
	}
	return &LedgerClient{
		client:        client,
		contractAddr:  ethcommon.HexToAddress(opts.ContractAddress),
		abi:           contractAbi,
		ownerKey:      ownerKey,
		ownerAddr:     crypto.PubkeyToAddress(ownerKey.PublicKey),
		chainId:       big.NewInt(opts.ChainId),
		waitForTx:     opts.WaitForReceipt,
		logger:        logger,
		metricService: metricService,
	}, nil
}

func (l *LedgerClient) GetUsername(ctx context.Context, address string) (string, error) {
	out, err := l.call(ctx, "userToName", ethcommon.HexToAddress(address))
	if err != nil {
		return "", err
	}
	username, ok := out[0].(string)
	if !ok {
		return "", models.NewUpstreamError("unexpected userToName result", nil)
	}
	return username, nil
}

func (l *LedgerClient) IsSubmitted(ctx context.Context, address string) (bool, error) {
	out, err := l.call(ctx, "isPostSubmitted", ethcommon.HexToAddress(address))
	if err != nil {
		return false, err
	}
	submitted, ok := out[0].(bool)
	if !ok {
		return false, models.NewUpstreamError("unexpected isPostSubmitted result", nil)
	}
	return submitted, nil
}

// ListSubmissions returns every submitted (address, cid) pair in contract
// storage order. The order is stable for a given chain state, which the
// announcement flow relies on when breaking ties.
func (l *LedgerClient) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	out, err := l.call(ctx, "getSubmittedCids")
	if err != nil {
		return nil, err
	}
	users, usersOk := out[0].([]ethcommon.Address)
	cids, cidsOk := out[1].([]string)
	if !usersOk || !cidsOk || len(users) != len(cids) {
		return nil, models.NewUpstreamError("unexpected getSubmittedCids result", nil)
	}
	submissions := make([]models.Submission, len(users))
	for idx, user := range users {
		submissions[idx] = models.Submission{Address: user.Hex(), Cid: cids[idx]}
	}
	return submissions, nil
}

func (l *LedgerClient) Register(ctx context.Context, address, username string) (string, error) {
	return l.write(ctx, "register_user", "contract execution failed", ethcommon.HexToAddress(address), username)
}

func (l *LedgerClient) SubmitCid(ctx context.Context, address, cid string) (string, error) {
	return l.write(ctx, "submit_cid", "unable to submit post", ethcommon.HexToAddress(address), cid)
}

func (l *LedgerClient) AnnounceWinner(ctx context.Context, address string) (string, error) {
	return l.write(ctx, "announce_winner", "unable to announce winner", ethcommon.HexToAddress(address))
}

func (l *LedgerClient) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := l.abi.Pack(method, args...)
	if err != nil {
		return nil, models.NewUpstreamError("encoding contract call", err)
	}
	rpcCtx, cancel := context.WithTimeout(ctx, models.DefaultLedgerWaitTime)
	defer cancel()

	result, err := l.client.CallContract(rpcCtx, ethereum.CallMsg{To: &l.contractAddr, Data: data}, nil)
	if err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("calling %s", method), err)
	}
	out, err := l.abi.Unpack(method, result)
	if err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("decoding %s result", method), err)
	}
	return out, nil
}

// write builds, signs and broadcasts a state-changing transaction with the
// custodial key. rejectReason is surfaced when the contract itself refuses
// the call (gas estimation reverts), which is a caller error, not an outage.
func (l *LedgerClient) write(ctx context.Context, method, rejectReason string, args ...interface{}) (string, error) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	data, err := l.abi.Pack(method, args...)
	if err != nil {
		return "", models.NewUpstreamError("encoding contract call", err)
	}

	rpcCtx, cancel := context.WithTimeout(ctx, models.DefaultLedgerWaitTime)
	defer cancel()

	// Gas estimation doubles as a pre-flight execution check. A revert here
	// means the contract rejected the call (e.g. user already registered).
	gasLimit, err := l.client.EstimateGas(rpcCtx, ethereum.CallMsg{
		From: l.ownerAddr,
		To:   &l.contractAddr,
		Data: data,
	})
	if err != nil {
		if isExecutionRevert(err) {
			l.metricService.Count(ctx, models.MetricName_LedgerRejected, 1)
			l.logger.Infof("ledger: %s rejected by contract: %v", method, err)
			return "", models.NewPolicyError(rejectReason)
		}
		return "", models.NewUpstreamError(fmt.Sprintf("estimating gas for %s", method), err)
	}

	// Nonce is fetched right before signing, inside the write lock.
	nonce, err := l.client.PendingNonceAt(rpcCtx, l.ownerAddr)
	if err != nil {
		return "", models.NewUpstreamError("fetching account nonce", err)
	}
	gasPrice, err := l.client.SuggestGasPrice(rpcCtx)
	if err != nil {
		return "", models.NewUpstreamError("fetching gas price", err)
	}

	tx := types.NewTransaction(nonce, l.contractAddr, big.NewInt(0), gasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(l.chainId), l.ownerKey)
	if err != nil {
		return "", models.NewUpstreamError("signing transaction", err)
	}
	if err = l.client.SendTransaction(rpcCtx, signedTx); err != nil {
		return "", models.NewUpstreamError(fmt.Sprintf("broadcasting %s", method), err)
	}
	txHash := signedTx.Hash().Hex()
	l.logger.Infof("ledger: broadcast %s tx %s (nonce %d)", method, txHash, nonce)
	l.metricService.Count(ctx, models.MetricName_LedgerWrite, 1)

	if l.waitForTx {
		// Mining can outlast the broadcast timeout; bound the wait by the
		// caller's context instead.
		receipt, err := bind.WaitMined(ctx, l.client, signedTx)
		if err != nil {
			return "", models.NewUpstreamError(fmt.Sprintf("waiting for %s receipt", method), err)
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			l.metricService.Count(ctx, models.MetricName_LedgerRejected, 1)
			return "", models.NewPolicyError(rejectReason)
		}
	}
	return txHash, nil
}

func isExecutionRevert(err error) bool {
	return err != nil && strings.Contains(err.Error(), "execution reverted")
}

func (l *LedgerClient) Close() {
	l.client.Close()
}
