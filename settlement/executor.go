package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/zera-labs/janitor/internal/ledger"
	"github.com/zera-labs/janitor/rpc/janitor"
	"github.com/zera-labs/janitor/wallet"
	"go.uber.org/zap"
)

// ConfirmationSource issues recent blockhashes transactions are anchored to.
// It is implemented by *rpc.Client.
type ConfirmationSource interface {
	// GetLatestBlockhash returns the latest blockhash of the ledger with the
	// requested commitment. Each transaction of a run gets its own one,
	// since blockhashes expire.
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

// AccountChecker looks up account balances. It is implemented by
// *rpc.Client. An account with zero balance is considered closed.
type AccountChecker interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
}

// Prm groups parameters of the Executor.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Source of blockhashes.
	Blockhashes ConfirmationSource

	// Wallet of the user. Accounts to close must belong to it.
	Signer wallet.WalletSigner

	// Address of the Janitor program.
	Program solana.PublicKey

	// Treasury receiving the service fee.
	Treasury solana.PublicKey

	// Commitment of requested blockhashes. Defaults to finalized.
	Commitment rpc.CommitmentType

	// Optional checker consulted after the run. When set, only accounts it
	// reports closed are removed from the candidates. Otherwise all
	// selected accounts are removed regardless of outcomes.
	Reverify AccountChecker
}

// Executor state machine states and events.
const (
	StateIdle       = "idle"
	StateRunning    = "running"
	StateSubmitting = "submitting"
	StateRecorded   = "recorded"
	StateCancelling = "cancelling"

	eventStart  = "start"
	eventSubmit = "submit"
	eventRecord = "record"
	eventCancel = "cancel"
	eventFinish = "finish"
)

// Executor settles sessions. Executor runs one settlement at a time.
type Executor struct {
	log         *zap.Logger
	blockhashes ConfirmationSource
	signer      wallet.WalletSigner
	program     solana.PublicKey
	treasury    solana.PublicKey
	commitment  rpc.CommitmentType
	reverify    AccountChecker

	fsm *fsm.FSM
}

// NewExecutor returns an Executor for the given parameters.
func NewExecutor(prm Prm) (*Executor, error) {
	switch {
	case prm.Blockhashes == nil:
		return nil, errors.New("missing blockhash source")
	case prm.Signer == nil:
		return nil, errors.New("missing signer")
	case prm.Program.IsZero():
		return nil, errors.New("missing program address")
	case prm.Treasury.IsZero():
		return nil, errors.New("missing treasury address")
	}

	initPrometheusMetrics()

	e := &Executor{
		log:         prm.Logger,
		blockhashes: prm.Blockhashes,
		signer:      prm.Signer,
		program:     prm.Program,
		treasury:    prm.Treasury,
		commitment:  prm.Commitment,
		reverify:    prm.Reverify,
		fsm:         newStateMachine(),
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.commitment == "" {
		e.commitment = rpc.CommitmentFinalized
	}

	return e, nil
}

func newStateMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle}, Dst: StateRunning},
			{Name: eventSubmit, Src: []string{StateRunning, StateRecorded}, Dst: StateSubmitting},
			{Name: eventRecord, Src: []string{StateSubmitting}, Dst: StateRecorded},
			{Name: eventCancel, Src: []string{StateRunning, StateRecorded}, Dst: StateCancelling},
			{Name: eventFinish, Src: []string{StateRunning, StateRecorded, StateCancelling}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
}

// State returns the current state of the executor.
func (e *Executor) State() string {
	return e.fsm.Current()
}

func (e *Executor) event(name string) {
	err := e.fsm.Event(context.Background(), name)
	if err != nil && !errors.As(err, new(fsm.NoTransitionError)) {
		// Events are fired in a fixed order, so this means a broken state
		// machine definition.
		e.log.Error("invalid executor state transition",
			zap.String("event", name), zap.String("state", e.fsm.Current()), zap.Error(err))
	}
}

// Run settles the current selection of the session. The selection is split
// into chunks (see Plan) which are submitted sequentially, each with a fresh
// blockhash. An outcome is appended to the session for every chunk whatever
// happens to it. After all chunks the selection is cleared and the selected
// accounts are removed from the candidates (see Prm.Reverify).
//
// Run returns ErrNothingSelected without touching the ledger for an empty
// selection and ErrRunInProgress if the session or the executor are busy.
//
// Cancelling ctx stops submission before the next chunk. A chunk being
// submitted is never interrupted.
func (e *Executor) Run(ctx context.Context, s *Session) (Report, error) {
	selected, err := s.beginRun()
	if err != nil {
		return Report{}, err
	}

	if err := e.fsm.Event(context.Background(), eventStart); err != nil {
		s.abortRun()
		return Report{}, ErrRunInProgress
	}

	rep := Report{
		RunID:   uuid.New(),
		Started: time.Now(),
	}

	chunks := Plan(selected)
	rep.Chunks = len(chunks)

	log := e.log.With(zap.Stringer("run", rep.RunID))
	log.Info("settlement started",
		zap.Int("accounts", len(selected)),
		zap.Int("transactions", len(chunks)))

	// Submissions outlive cancellation of ctx.
	callCtx := context.WithoutCancel(ctx)

	for i, ch := range chunks {
		var o Outcome

		if err := ctx.Err(); err != nil {
			if e.fsm.Current() != StateCancelling {
				e.event(eventCancel)
				log.Info("settlement cancelled", zap.Int("remaining", len(chunks)-i))
			}
			o = errored(ch, ReasonCancelled, err)
		} else {
			e.event(eventSubmit)
			o = e.settle(callCtx, ch)
			e.event(eventRecord)
		}

		s.appendOutcome(o)
		rep.Outcomes = append(rep.Outcomes, o)
		observeOutcome(o)

		if o.Status == StatusConfirmed {
			rep.Confirmed++
			log.Info("transaction confirmed",
				zap.Int("chunk", i),
				zap.String("signature", o.Reference),
				zap.Int("accounts", len(ch)))
		} else {
			rep.Errored++
			log.Warn("transaction failed",
				zap.Int("chunk", i),
				zap.Stringer("reason", o.Reason),
				zap.String("error", o.Reference),
				zap.Int("accounts", len(ch)))
		}
	}

	rep.Removed = s.endRun(e.closedAccounts(callCtx, log, selected))
	e.event(eventFinish)

	rep.Finished = time.Now()
	prometheusSettlementRunDuration.Observe(rep.Finished.Sub(rep.Started).Seconds())

	log.Info("settlement finished",
		zap.Int("confirmed", rep.Confirmed),
		zap.Int("errored", rep.Errored),
		zap.Int("removed", rep.Removed))

	return rep, nil
}

// settle submits a single chunk.
func (e *Executor) settle(ctx context.Context, ch Chunk) Outcome {
	rent, err := ch.Rent()
	if err != nil {
		return errored(ch, ReasonBuild, fmt.Errorf("sum chunk rent: %w", err))
	}

	bh, err := e.blockhashes.GetLatestBlockhash(ctx, e.commitment)
	if err != nil {
		return errored(ch, ReasonBlockhash, fmt.Errorf("get latest blockhash: %w", err))
	}
	if bh == nil || bh.Value == nil {
		return errored(ch, ReasonBlockhash, errors.New("get latest blockhash: empty response"))
	}

	ix, err := janitor.NewBatchCleanInstruction(janitor.BatchCleanPrm{
		Program:  e.program,
		User:     e.signer.PublicKey(),
		Treasury: e.treasury,
		Accounts: ch.Addresses(),
	})
	if err != nil {
		return errored(ch, ReasonBuild, fmt.Errorf("build instruction: %w", err))
	}

	e.log.Debug("submitting transaction",
		zap.Int("accounts", len(ch)),
		zap.String("data", janitor.DataString(ix)),
		zap.Stringer("blockhash", bh.Value.Blockhash))

	sig, err := e.signer.SignAndSubmit(ctx, wallet.SubmitRequest{
		Instruction: ix,
		Blockhash:   bh.Value.Blockhash,
	})
	if err != nil {
		return errored(ch, classify(err), err)
	}

	return Outcome{
		Reference: sig.String(),
		Status:    StatusConfirmed,
		Accounts:  ch.Addresses(),
		Rent:      rent,
	}
}

// closedAccounts returns the accounts to remove from the candidates.
func (e *Executor) closedAccounts(ctx context.Context, log *zap.Logger, selected []CandidateAccount) map[solana.PublicKey]struct{} {
	res := make(map[solana.PublicKey]struct{}, len(selected))

	for _, c := range selected {
		if e.reverify != nil {
			bal, err := e.reverify.GetBalance(ctx, c.Address, e.commitment)
			if err != nil {
				log.Warn("failed to check account, keeping it",
					zap.Stringer("account", c.Address), zap.Error(err))
				continue
			}
			if bal.Value != 0 {
				continue
			}
		}
		res[c.Address] = struct{}{}
	}

	return res
}

func classify(err error) Reason {
	var ie *ledger.InstructionError

	switch {
	case errors.Is(err, wallet.ErrRejected):
		return ReasonRejected
	case errors.As(err, &ie):
		return ReasonProgram
	default:
		return ReasonSubmission
	}
}

// errored returns the outcome of the failed chunk. Rent is left zero if the
// chunk total overflows.
func errored(ch Chunk, reason Reason, err error) Outcome {
	o := Outcome{
		Reference: err.Error(),
		Status:    StatusErrored,
		Reason:    reason,
		Accounts:  ch.Addresses(),
	}
	o.Rent, _ = ch.Rent()
	if code, ok := ledger.CustomCode(err); ok {
		o.Code = &code
	}
	return o
}
