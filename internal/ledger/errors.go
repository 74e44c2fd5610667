package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockhashNotFound is returned for transactions anchored to an unknown
	// or expired blockhash.
	ErrBlockhashNotFound = errors.New("blockhash not found")
	// ErrAlreadyProcessed is returned when a transaction with the same
	// signature has already been committed.
	ErrAlreadyProcessed = errors.New("transaction already processed")
	// ErrSignatureFailure is returned when transaction signatures do not verify.
	ErrSignatureFailure = errors.New("transaction signature verification failure")

	// ErrProgramNotFound is returned when an instruction targets an unknown
	// program.
	ErrProgramNotFound = errors.New("program not found")
	// ErrNotEnoughAccountKeys is returned by programs when the instruction
	// carries fewer accounts than required.
	ErrNotEnoughAccountKeys = errors.New("not enough account keys")
	// ErrInvalidInstructionData is returned by programs for undecodable data.
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	// ErrInvalidAccountData is returned by programs for undecodable accounts.
	ErrInvalidAccountData = errors.New("invalid account data")
	// ErrIncorrectProgramID is returned when an account is owned by an
	// unexpected program.
	ErrIncorrectProgramID = errors.New("incorrect program id")
	// ErrMissingRequiredSignature is returned when an account required to sign
	// an instruction has not signed it.
	ErrMissingRequiredSignature = errors.New("missing required signature")
	// ErrPrivilegeEscalation is returned when a cross-program call asks for a
	// privilege the caller does not hold.
	ErrPrivilegeEscalation = errors.New("cross-program invocation with unauthorized signer or writable account")
	// ErrInvalidSeeds is returned when derivation seeds do not produce a valid
	// program address.
	ErrInvalidSeeds = errors.New("invalid seeds")
	// ErrCallDepth is returned when cross-program calls nest too deep.
	ErrCallDepth = errors.New("cross-program invocation call depth too deep")

	// ErrUnbalancedInstruction is returned when an instruction changes the sum
	// of lamports over its accounts.
	ErrUnbalancedInstruction = errors.New("sum of account balances before and after instruction do not match")
	// ErrExternalAccountLamportSpend is returned when a program debits an
	// account it does not own.
	ErrExternalAccountLamportSpend = errors.New("instruction spent from the balance of an account it does not own")
	// ErrExternalAccountDataModified is returned when a program modifies data
	// of an account it does not own.
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	// ErrReadonlyLamportChange is returned when the balance of a read-only
	// account changes.
	ErrReadonlyLamportChange = errors.New("instruction changed the balance of a read-only account")
	// ErrArithmeticOverflow is returned by balance helpers on overflow.
	ErrArithmeticOverflow = errors.New("arithmetic overflowed")
	// ErrInsufficientFunds is returned when an account can not be debited.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// CustomError is a program-specific error code. Programs return values
// implementing it to surface their own error taxonomy.
type CustomError interface {
	error
	Code() uint32
}

// InstructionError describes the failure of a transaction instruction.
type InstructionError struct {
	// Index of the failed top-level instruction.
	Index int
	// Err is the error returned by the program or the runtime.
	Err error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("error processing instruction %d: %v", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

// CustomCode returns the program error code carried by err, if any.
func CustomCode(err error) (uint32, bool) {
	var ce CustomError
	if errors.As(err, &ce) {
		return ce.Code(), true
	}
	return 0, false
}
