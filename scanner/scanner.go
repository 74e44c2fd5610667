// Package scanner finds empty token accounts of a user.
package scanner

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/zera-labs/janitor/internal/ledger"
	"github.com/zera-labs/janitor/settlement"
	"go.uber.org/zap"
)

// Lister lists token accounts by their owner. It is implemented by
// *rpc.Client.
type Lister interface {
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
}

// Prm groups parameters of the Scanner.
type Prm struct {
	// Writes skipped accounts into the log.
	Logger *zap.Logger

	// Lister of token accounts.
	Lister Lister

	// Commitment of the listed state. Defaults to confirmed.
	Commitment rpc.CommitmentType
}

// Scanner finds closable token accounts.
type Scanner struct {
	log        *zap.Logger
	lister     Lister
	commitment rpc.CommitmentType
}

// New returns a Scanner for the given parameters.
func New(prm Prm) *Scanner {
	s := &Scanner{
		log:        prm.Logger,
		lister:     prm.Lister,
		commitment: prm.Commitment,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.commitment == "" {
		s.commitment = rpc.CommitmentConfirmed
	}
	return s
}

// Scan returns token accounts of the owner holding no tokens, in the order
// the ledger lists them. Accounts that can not be decoded are skipped.
func (s *Scanner) Scan(ctx context.Context, owner solana.PublicKey) ([]settlement.CandidateAccount, error) {
	res, err := s.lister.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{Commitment: s.commitment, Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return nil, fmt.Errorf("list token accounts of %s: %w", owner, err)
	}

	var cs []settlement.CandidateAccount

	for _, ta := range res.Value {
		if ta == nil || ta.Account.Data == nil {
			continue
		}

		acc, err := ledger.DecodeTokenAccount(ta.Account.Data.GetBinary())
		if err != nil {
			s.log.Warn("skipping undecodable token account",
				zap.Stringer("account", ta.Pubkey), zap.Error(err))
			continue
		}

		if acc.Amount != 0 {
			continue
		}

		cs = append(cs, settlement.CandidateAccount{
			Address:   ta.Pubkey,
			Mint:      acc.Mint,
			Amount:    acc.Amount,
			HeldValue: ta.Account.Lamports,
		})
	}

	s.log.Debug("token accounts scanned",
		zap.Stringer("owner", owner),
		zap.Int("total", len(res.Value)),
		zap.Int("empty", len(cs)))

	return cs, nil
}
