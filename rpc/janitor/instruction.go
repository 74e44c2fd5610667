// Package janitor contains client-side bindings of the Janitor program.
package janitor

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	contract "github.com/zera-labs/janitor/contracts/janitor"
	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
)

var (
	// ErrNoAccounts is returned when BatchClean is requested for no accounts.
	ErrNoAccounts = errors.New("no accounts to close")
	// ErrTooManyAccounts is returned when more than
	// janitorconst.MaxAccountsPerCall accounts are requested in a single call.
	ErrTooManyAccounts = errors.New("too many accounts for a single call")
)

// BatchCleanPrm groups parameters of NewBatchCleanInstruction.
type BatchCleanPrm struct {
	// Program is the address of the deployed Janitor program.
	Program solana.PublicKey
	// User owns the accounts and receives the payout. User signs the
	// transaction.
	User solana.PublicKey
	// Treasury receives the service fee.
	Treasury solana.PublicKey
	// Accounts to close, in order.
	Accounts []solana.PublicKey
}

// VaultAddress returns the vault address of the Janitor program deployed at
// the given address.
func VaultAddress(program solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := contract.FindVault(program)
	return addr, err
}

// Roles returns the BatchClean account list: user, vault, treasury, token
// program and then the accounts to close.
func Roles(user, vault, treasury solana.PublicKey, accounts []solana.PublicKey) solana.AccountMetaSlice {
	res := make(solana.AccountMetaSlice, 0, janitorconst.FirstCloseRole+len(accounts))

	res = append(res,
		solana.NewAccountMeta(user, true, true),
		solana.NewAccountMeta(vault, true, false),
		solana.NewAccountMeta(treasury, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	)
	for _, acc := range accounts {
		res = append(res, solana.NewAccountMeta(acc, true, false))
	}

	return res
}

// NewBatchCleanInstruction builds a BatchClean instruction closing all
// prm.Accounts. The number of accounts must be in [1, MaxAccountsPerCall].
func NewBatchCleanInstruction(prm BatchCleanPrm) (solana.Instruction, error) {
	n := len(prm.Accounts)
	if n == 0 {
		return nil, ErrNoAccounts
	}
	if n > janitorconst.MaxAccountsPerCall {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyAccounts, n, janitorconst.MaxAccountsPerCall)
	}

	vault, err := VaultAddress(prm.Program)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(
		prm.Program,
		Roles(prm.User, vault, prm.Treasury, prm.Accounts),
		contract.Encode(uint8(n)),
	), nil
}

// DataString returns base58 encoded instruction data, as shown by explorers.
func DataString(ix solana.Instruction) string {
	data, err := ix.Data()
	if err != nil {
		return ""
	}
	return base58.Encode(data)
}
