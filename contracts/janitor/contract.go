package janitor

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/zera-labs/janitor/common"
	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
	"github.com/zera-labs/janitor/internal/ledger"
	"go.uber.org/zap"
)

// Processor executes Janitor instructions. It implements ledger.Program.
type Processor struct{}

// Process decodes the instruction and executes it.
func (Processor) Process(ic *ledger.InvokeContext, accounts []*ledger.AccountInfo, data []byte) error {
	ins, err := Decode(data)
	if err != nil {
		return err
	}

	switch ins := ins.(type) {
	case BatchClean:
		return batchClean(ic, accounts, ins.Count)
	default:
		return fmt.Errorf("%w: unsupported instruction %d", ledger.ErrInvalidInstructionData, ins.Tag())
	}
}

// batchClean closes count token accounts into the vault and splits the
// collected rent between the treasury and the user. Any failure aborts the
// whole instruction.
func batchClean(ic *ledger.InvokeContext, accounts []*ledger.AccountInfo, count uint8) error {
	if len(accounts) < janitorconst.FirstCloseRole {
		return ledger.ErrNotEnoughAccountKeys
	}

	var (
		user         = accounts[janitorconst.RoleUser]
		vault        = accounts[janitorconst.RoleVault]
		treasury     = accounts[janitorconst.RoleTreasury]
		tokenProgram = accounts[janitorconst.RoleTokenProgram]
		log          = ic.Logger()
	)

	if err := common.CheckWitness(user); err != nil {
		return MissingSigner
	}

	expected, bump, err := FindVault(ic.ProgramID())
	if err != nil || !vault.Key.Equals(expected) {
		return InvalidVaultPda
	}
	// The fee would stay in the vault otherwise.
	if treasury.Key.Equals(vault.Key) {
		return InvalidVaultPda
	}

	if !tokenProgram.Key.Equals(solana.TokenProgramID) {
		return ledger.ErrIncorrectProgramID
	}

	before := vault.Lamports()

	for i := range int(count) {
		idx := janitorconst.FirstCloseRole + i
		if idx >= len(accounts) {
			return ledger.ErrNotEnoughAccountKeys
		}
		acc := accounts[idx]

		if err := checkEmpty(acc); err != nil {
			return err
		}

		ix, err := token.NewCloseAccountInstruction(acc.Key, vault.Key, user.Key, nil).ValidateAndBuild()
		if err != nil {
			return fmt.Errorf("build close instruction: %w", err)
		}

		if err := ic.InvokeSigned(ix, vaultSignerSeeds(bump)); err != nil {
			return err
		}
	}

	collected, err := common.CheckedSub(vault.Lamports(), before)
	if err != nil {
		return Overflow
	}
	log.Info("rent collected", zap.Uint64("lamports", collected))

	fee, payout, err := common.SplitFee(collected)
	if err != nil {
		return Overflow
	}
	log.Info("rent split", zap.Uint64("fee", fee), zap.Uint64("payout", payout))

	// Balances are updated one by one, so aliased roles still add up.
	total, err := common.CheckedAdd(fee, payout)
	if err != nil {
		return Overflow
	}
	if err := debit(vault, total); err != nil {
		return err
	}
	if err := credit(treasury, fee); err != nil {
		return err
	}
	if err := credit(user, payout); err != nil {
		return err
	}

	log.Info("accounts closed", zap.Uint8("count", count))

	return nil
}

// checkEmpty rejects token accounts holding tokens. Accounts which are not
// token accounts are left for the token program to reject.
func checkEmpty(acc *ledger.AccountInfo) error {
	if !acc.Owner().Equals(solana.TokenProgramID) {
		return nil
	}

	state, err := ledger.DecodeTokenAccount(acc.Data())
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAccountData) {
			return nil
		}
		return err
	}

	if state.Amount != 0 {
		return NonZeroBalance
	}
	return nil
}

func debit(acc *ledger.AccountInfo, v uint64) error {
	res, err := common.CheckedSub(acc.Lamports(), v)
	if err != nil {
		return Overflow
	}
	acc.SetLamports(res)
	return nil
}

func credit(acc *ledger.AccountInfo, v uint64) error {
	res, err := common.CheckedAdd(acc.Lamports(), v)
	if err != nil {
		return Overflow
	}
	acc.SetLamports(res)
	return nil
}
