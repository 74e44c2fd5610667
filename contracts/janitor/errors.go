package janitor

import "fmt"

// Error is an error code of the Janitor program.
type Error uint32

// Program errors.
const (
	InvalidVaultPda Error = iota
	MissingSigner
	NonZeroBalance
	Overflow
)

func (e Error) Error() string {
	switch e {
	case InvalidVaultPda:
		return "janitor: invalid vault address"
	case MissingSigner:
		return "janitor: missing required signer"
	case NonZeroBalance:
		return "janitor: account has non-zero token balance"
	case Overflow:
		return "janitor: arithmetic overflow"
	default:
		return fmt.Sprintf("janitor: unknown error %d", uint32(e))
	}
}

// Code returns the custom program error code.
func (e Error) Code() uint32 {
	return uint32(e)
}
