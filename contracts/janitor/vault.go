package janitor

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
)

// FindVault returns the vault address of the program and its bump seed. The
// result depends on the program address only.
func FindVault(program solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(janitorconst.VaultSeed)}, program)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive vault address: %w", err)
	}
	return addr, bump, nil
}

// vaultSignerSeeds returns seeds the vault signs cross-program calls with.
func vaultSignerSeeds(bump uint8) [][]byte {
	return [][]byte{[]byte(janitorconst.VaultSeed), {bump}}
}
