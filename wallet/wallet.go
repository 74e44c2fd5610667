// Package wallet provides signers acting on behalf of the user.
package wallet

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrRejected is returned when the wallet refuses to sign a transaction.
	ErrRejected = errors.New("signing rejected")
	// ErrNoProvider is returned by Select when no wallet could be connected.
	ErrNoProvider = errors.New("no wallet provider available")
)

// SubmitRequest is a single-instruction transaction to sign and submit.
type SubmitRequest struct {
	// Instruction to execute.
	Instruction solana.Instruction
	// Blockhash the transaction is anchored to. It should be fresh: ledgers
	// reject transactions with expired blockhashes.
	Blockhash solana.Hash
}

// WalletSigner holds the user identity and signs transactions paid by it.
type WalletSigner interface {
	// PublicKey returns the user identity. It is the fee payer of all
	// transactions sent by SignAndSubmit.
	PublicKey() solana.PublicKey

	// SignAndSubmit composes a transaction from req, signs it and sends it to
	// the ledger. It returns the transaction signature once the ledger accepts
	// the transaction.
	//
	// SignAndSubmit returns ErrRejected (possibly wrapped) if the user or the
	// key holder refuses to sign. Ledger rejections are returned as is.
	SignAndSubmit(ctx context.Context, req SubmitRequest) (solana.Signature, error)
}
