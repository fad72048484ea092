package eth

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/linkedpost/go-rewards/models"
)

// Canonical messages wallets must sign to prove address control. One per
// flow; a signature over one message never validates against the other.
const RegisterMessage = "You are registering to LinkedInPost Reward Dapp !!  You agree with our terms and conditions."
const PostSubmitMessage = "You are submiting your linkedin post screenshot and post content to LinkedInPost Reward Dapp !!"

// Verifier checks personal_sign signatures over canonical messages. Pure
// computation, no network calls.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

func (v *Verifier) VerifyRegistration(claimedAddress, signature string) error {
	return v.verify(claimedAddress, signature, RegisterMessage)
}

func (v *Verifier) VerifySubmission(claimedAddress, signature string) error {
	return v.verify(claimedAddress, signature, PostSubmitMessage)
}

func (v *Verifier) verify(claimedAddress, signature, message string) error {
	if !ethcommon.IsHexAddress(claimedAddress) {
		return models.NewValidationError("invalid wallet address")
	}
	if len(strings.TrimSpace(signature)) == 0 {
		return models.NewValidationError("signed message can't be empty")
	}
	signer, err := recoverSigner(message, signature)
	if err != nil {
		return models.NewValidationError("invalid signed message")
	}
	if !strings.EqualFold(signer.Hex(), claimedAddress) {
		return models.NewValidationError("signed message does not match wallet address")
	}
	return nil
}

// recoverSigner recovers the signing address from an EIP-191 personal_sign
// signature over message.
func recoverSigner(message, signature string) (ethcommon.Address, error) {
	sigBytes, err := hexutil.Decode(signature)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("decoding signature: %w", err)
	}
	if len(sigBytes) != crypto.SignatureLength {
		return ethcommon.Address{}, fmt.Errorf("unexpected signature length %d", len(sigBytes))
	}
	// Wallets return V as 27/28, crypto.SigToPub expects 0/1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, sigBytes)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	msgHash := accounts.TextHash([]byte(message))
	pubKey, err := crypto.SigToPub(msgHash, sig)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("recovering public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
