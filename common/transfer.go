package common

import (
	"errors"
	"math/bits"

	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
)

// ErrOverflow is returned by the checked arithmetic helpers when the result
// does not fit into uint64.
var ErrOverflow = errors.New("arithmetic overflow")

// SplitFee divides the collected rent into the treasury fee and the user
// payout. fee is floor(collected*FeeBPS/BPSDenominator) and fee+payout always
// equals collected.
func SplitFee(collected uint64) (fee, payout uint64, err error) {
	scaled, err := CheckedMul(collected, janitorconst.FeeBPS)
	if err != nil {
		return 0, 0, err
	}

	fee, err = CheckedDiv(scaled, janitorconst.BPSDenominator)
	if err != nil {
		return 0, 0, err
	}

	payout, err = CheckedSub(collected, fee)
	if err != nil {
		return 0, 0, err
	}

	return fee, payout, nil
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrOverflow if b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

// CheckedMul returns a*b or ErrOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// CheckedDiv returns a/b or ErrOverflow on division by zero.
func CheckedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrOverflow
	}
	return a / b, nil
}
