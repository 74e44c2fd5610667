package janitor

import (
	"github.com/gagliardetto/solana-go"
	"github.com/zera-labs/janitor/internal/ledger"
)

// VaultRent is the balance a new vault is created with.
const VaultRent = 890_880

// Install deploys the program to l at the given address and creates the
// program-owned vault. It returns the vault address.
func Install(l *ledger.Ledger, program solana.PublicKey) (solana.PublicKey, error) {
	vault, _, err := FindVault(program)
	if err != nil {
		return solana.PublicKey{}, err
	}

	l.RegisterProgram(program, Processor{})
	l.SetAccount(vault, ledger.Account{
		Lamports: VaultRent,
		Owner:    program,
	})

	return vault, nil
}
