package common

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

var lamportsPerSOL = decimal.NewFromInt(LamportsPerSOL)

// LamportsToSOL converts raw lamports into SOL without precision loss.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0).Div(lamportsPerSOL)
}

// FormatSOL returns lamports as a SOL amount with 9 decimal places.
func FormatSOL(lamports uint64) string {
	return LamportsToSOL(lamports).StringFixed(9)
}
