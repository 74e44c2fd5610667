package settlement

import (
	"fmt"

	"github.com/zera-labs/janitor/common"
	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
)

// Estimate is the expected result of settling a set of accounts.
type Estimate struct {
	Accounts     int
	Transactions int
	// Rent to be collected, in lamports.
	Rent uint64
	// Fee kept by the treasury, in lamports.
	Fee uint64
	// Payout received by the user, in lamports.
	Payout uint64
}

// EstimateOf returns the estimate for the given accounts.
func EstimateOf(accounts []CandidateAccount) (Estimate, error) {
	var (
		res = Estimate{
			Accounts:     len(accounts),
			Transactions: (len(accounts) + janitorconst.MaxAccountsPerCall - 1) / janitorconst.MaxAccountsPerCall,
		}
		err error
	)

	for _, a := range accounts {
		res.Rent, err = common.CheckedAdd(res.Rent, a.HeldValue)
		if err != nil {
			return Estimate{}, fmt.Errorf("sum rent: %w", err)
		}
	}

	res.Fee, res.Payout, err = common.SplitFee(res.Rent)
	if err != nil {
		return Estimate{}, fmt.Errorf("split fee: %w", err)
	}

	return res, nil
}

// Estimate returns the estimate for the current selection.
func (s *Session) Estimate() (Estimate, error) {
	return EstimateOf(s.Selected())
}
