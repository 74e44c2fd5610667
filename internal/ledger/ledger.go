package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// MaxBlockhashAge is the number of slots a blockhash stays valid for.
const MaxBlockhashAge = 150

type recentBlockhash struct {
	hash solana.Hash
	slot uint64
}

// Ledger is an in-process ledger. It is safe for concurrent use, transactions
// are executed one at a time.
type Ledger struct {
	log *zap.Logger

	mu        sync.Mutex
	slot      uint64
	accounts  map[solana.PublicKey]*Account
	programs  map[solana.PublicKey]Program
	recent    []recentBlockhash
	processed map[solana.Signature]struct{}
}

// New returns an empty ledger with the token program installed.
func New(log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}

	l := &Ledger{
		log:       log,
		accounts:  make(map[solana.PublicKey]*Account),
		programs:  make(map[solana.PublicKey]Program),
		processed: make(map[solana.Signature]struct{}),
	}
	l.RegisterProgram(solana.TokenProgramID, TokenProgram{})

	return l
}

// RegisterProgram deploys p at the given address.
func (l *Ledger) RegisterProgram(id solana.PublicKey, p Program) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.programs[id] = p
	l.accounts[id] = &Account{
		Lamports:   1,
		Owner:      solana.BPFLoaderUpgradeableProgramID,
		Executable: true,
	}
}

// SetAccount stores acc under key, replacing the previous state. An account
// without lamports is removed.
func (l *Ledger) SetAccount(key solana.PublicKey, acc Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc.Lamports == 0 && !acc.Executable {
		delete(l.accounts, key)
		return
	}
	l.accounts[key] = acc.clone()
}

// GetAccount returns a copy of the account stored under key.
func (l *Ledger) GetAccount(key solana.PublicKey) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[key]
	if !ok {
		return Account{}, false
	}
	return *acc.clone(), true
}

// Lamports returns the balance of the account, zero for unknown accounts.
func (l *Ledger) Lamports(key solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[key]; ok {
		return acc.Lamports
	}
	return 0
}

// Slot returns the current slot.
func (l *Ledger) Slot() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.slot
}

// Advance moves the ledger n slots forward.
func (l *Ledger) Advance(n uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.slot += n
}

// GetLatestBlockhash produces a new slot and returns its blockhash. The
// commitment is accepted for compatibility, the ledger has a single fork.
func (l *Ledger) GetLatestBlockhash(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.slot++

	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], l.slot)
	h := sha256.Sum256(append([]byte("ledger-slot"), seed[:]...))

	hash := solana.HashFromBytes(h[:])
	l.recent = append(l.recent, recentBlockhash{hash: hash, slot: l.slot})
	l.pruneBlockhashes()

	return &rpc.GetLatestBlockhashResult{
		RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: l.slot}},
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            hash,
			LastValidBlockHeight: l.slot + MaxBlockhashAge,
		},
	}, nil
}

func (l *Ledger) pruneBlockhashes() {
	i := 0
	for i < len(l.recent) && l.recent[i].slot+MaxBlockhashAge < l.slot {
		i++
	}
	l.recent = l.recent[i:]
}

func (l *Ledger) isRecent(h solana.Hash) bool {
	l.pruneBlockhashes()
	return slices.ContainsFunc(l.recent, func(r recentBlockhash) bool {
		return r.hash.Equals(h)
	})
}

// SendTransactionWithOpts executes tx and commits its effects. Either every
// instruction of tx succeeds or the ledger is left unchanged. Instruction
// failures are returned as *InstructionError. Options are accepted for
// compatibility, the ledger always executes transactions synchronously.
func (l *Ledger) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	if len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("%w: transaction is not signed", ErrSignatureFailure)
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrSignatureFailure, err)
	}
	sig := tx.Signatures[0]

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.processed[sig]; ok {
		return sig, ErrAlreadyProcessed
	}
	if !l.isRecent(tx.Message.RecentBlockhash) {
		return sig, ErrBlockhashNotFound
	}

	txc := newTxContext(l)

	for i, ci := range tx.Message.Instructions {
		programID, err := tx.Message.Program(ci.ProgramIDIndex)
		if err != nil {
			return sig, &InstructionError{Index: i, Err: fmt.Errorf("%w: %w", ErrProgramNotFound, err)}
		}

		metas, err := ci.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return sig, &InstructionError{Index: i, Err: fmt.Errorf("%w: %w", ErrNotEnoughAccountKeys, err)}
		}

		if err := txc.execute(programID, metas, ci.Data, 1); err != nil {
			l.log.Debug("transaction failed",
				zap.Stringer("signature", sig),
				zap.Int("instruction", i),
				zap.Error(err))
			return sig, &InstructionError{Index: i, Err: err}
		}
	}

	txc.commit()
	l.processed[sig] = struct{}{}

	l.log.Debug("transaction committed",
		zap.Stringer("signature", sig),
		zap.Uint64("slot", l.slot),
		zap.Int("instructions", len(tx.Message.Instructions)))

	return sig, nil
}

// IsProcessed reports whether a transaction with the given signature is
// committed.
func (l *Ledger) IsProcessed(sig solana.Signature) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.processed[sig]
	return ok
}

// GetBalance returns the balance of the account.
func (l *Ledger) GetBalance(_ context.Context, key solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lamports uint64
	if acc, ok := l.accounts[key]; ok {
		lamports = acc.Lamports
	}

	return &rpc.GetBalanceResult{
		RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: l.slot}},
		Value:      lamports,
	}, nil
}

// GetTokenAccountsByOwner lists token accounts whose token owner is owner.
// Accounts are returned in the order of their addresses. Only binary
// encodings are supported.
func (l *Ledger) GetTokenAccountsByOwner(
	_ context.Context,
	owner solana.PublicKey,
	conf *rpc.GetTokenAccountsConfig,
	opts *rpc.GetTokenAccountsOpts,
) (*rpc.GetTokenAccountsResult, error) {
	if conf == nil || (conf.Mint == nil && conf.ProgramId == nil) {
		return nil, errors.New("either mint or program id filter must be set")
	}
	if opts != nil && opts.Encoding == solana.EncodingJSONParsed {
		return nil, fmt.Errorf("unsupported encoding %q", opts.Encoding)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]solana.PublicKey, 0, len(l.accounts))
	for key := range l.accounts {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b solana.PublicKey) int {
		return bytes.Compare(a[:], b[:])
	})

	res := &rpc.GetTokenAccountsResult{
		RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: l.slot}},
		Value:      []*rpc.TokenAccount{},
	}

	for _, key := range keys {
		acc := l.accounts[key]
		if !acc.Owner.Equals(solana.TokenProgramID) {
			continue
		}
		if conf.ProgramId != nil && !conf.ProgramId.Equals(acc.Owner) {
			continue
		}

		state, err := DecodeTokenAccount(acc.Data)
		if err != nil || !state.Owner.Equals(owner) {
			continue
		}
		if conf.Mint != nil && !conf.Mint.Equals(state.Mint) {
			continue
		}

		res.Value = append(res.Value, &rpc.TokenAccount{
			Pubkey: key,
			Account: rpc.Account{
				Lamports: acc.Lamports,
				Owner:    acc.Owner,
				Data:     rpc.DataBytesOrJSONFromBytes(slices.Clone(acc.Data)),
			},
		})
	}

	return res, nil
}
