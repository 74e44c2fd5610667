package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Sender sends signed transactions to the ledger. It is implemented by
// *rpc.Client.
type Sender interface {
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
}

// KeypairPrm groups parameters of NewKeypairSigner.
type KeypairPrm struct {
	// Writes submitted transactions into the log.
	Logger *zap.Logger

	// Key of the user (must be valid).
	Key solana.PrivateKey

	// Sender delivers transactions to the ledger.
	Sender Sender

	// Options of every sent transaction.
	Options rpc.TransactionOpts
}

// KeypairSigner is a WalletSigner backed by a private key in memory.
type KeypairSigner struct {
	log    *zap.Logger
	key    solana.PrivateKey
	pub    solana.PublicKey
	sender Sender
	opts   rpc.TransactionOpts
}

// NewKeypairSigner returns a signer for the given key.
func NewKeypairSigner(prm KeypairPrm) *KeypairSigner {
	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &KeypairSigner{
		log:    log,
		key:    prm.Key,
		pub:    prm.Key.PublicKey(),
		sender: prm.Sender,
		opts:   prm.Options,
	}
}

// PublicKey implements WalletSigner.
func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.pub
}

// SignAndSubmit implements WalletSigner. Transactions requiring signatures
// of other keys are rejected.
func (s *KeypairSigner) SignAndSubmit(ctx context.Context, req SubmitRequest) (solana.Signature, error) {
	tx, err := solana.NewTransaction([]solana.Instruction{req.Instruction}, req.Blockhash, solana.TransactionPayer(s.pub))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("compose transaction: %w", err)
	}

	_, err = tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(s.pub) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	sig, err := s.sender.SendTransactionWithOpts(ctx, tx, s.opts)
	if err != nil {
		return sig, fmt.Errorf("send transaction: %w", err)
	}

	s.log.Debug("transaction sent",
		zap.Stringer("signature", sig),
		zap.Stringer("blockhash", req.Blockhash))

	return sig, nil
}
