package common

import (
	"errors"
	"fmt"

	"github.com/zera-labs/janitor/internal/ledger"
)

// ErrWitnessFailed appears when the account must sign the transaction
// but did not.
var ErrWitnessFailed = errors.New("witness check failed")

// CheckWitness checks that the given account signed the transaction being
// processed.
func CheckWitness(acc *ledger.AccountInfo) error {
	if !acc.IsSigner {
		return fmt.Errorf("%w: %s", ErrWitnessFailed, acc.Key)
	}
	return nil
}
