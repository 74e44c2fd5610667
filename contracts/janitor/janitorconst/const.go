// Package janitorconst holds build-time constants shared by the Janitor
// program and its clients. Both sides import this package, so the values
// can not drift apart.
package janitorconst

const (
	// VaultSeed is the only seed of the vault derived address.
	VaultSeed = "zera-vault"

	// FeeBPS is the service fee rate in basis points (5%).
	FeeBPS = 500
	// BPSDenominator is the number of basis points in a whole.
	BPSDenominator = 10_000

	// MaxAccountsPerCall is the number of token accounts closed by a single
	// BatchClean call. It is bounded by the account slots a transaction can
	// address alongside the four fixed roles.
	MaxAccountsPerCall = 25

	// BatchCleanTag is the instruction tag of BatchClean.
	BatchCleanTag = 0
)

// Positional roles of the BatchClean account list.
const (
	RoleUser = iota
	RoleVault
	RoleTreasury
	RoleTokenProgram

	// FirstCloseRole is the index of the first account to close.
	FirstCloseRole
)
