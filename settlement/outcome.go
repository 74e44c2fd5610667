package settlement

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// Status is the result of a single transaction submission.
type Status uint8

// Submission statuses.
const (
	StatusConfirmed Status = iota
	StatusErrored
)

var statusNames = map[Status]string{
	StatusConfirmed: "confirmed",
	StatusErrored:   "error",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for k, v := range statusNames {
		if v == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Reason explains an errored outcome.
type Reason uint8

// Failure reasons.
const (
	ReasonNone Reason = iota
	// ReasonBlockhash means a fresh blockhash could not be obtained.
	ReasonBlockhash
	// ReasonBuild means the instruction could not be composed.
	ReasonBuild
	// ReasonRejected means the wallet refused to sign.
	ReasonRejected
	// ReasonProgram means the ledger executed and rejected the transaction.
	ReasonProgram
	// ReasonSubmission means the transaction did not reach the ledger or was
	// refused before execution.
	ReasonSubmission
	// ReasonCancelled means the run was cancelled before submission.
	ReasonCancelled
)

var reasonNames = map[Reason]string{
	ReasonNone:       "",
	ReasonBlockhash:  "blockhash",
	ReasonBuild:      "build",
	ReasonRejected:   "rejected",
	ReasonProgram:    "program",
	ReasonSubmission: "submission",
	ReasonCancelled:  "cancelled",
}

func (r Reason) String() string {
	if n, ok := reasonNames[r]; ok {
		return n
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	for k, v := range reasonNames {
		if v == string(text) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", text)
}

// Outcome is the record of one submitted (or skipped) transaction.
type Outcome struct {
	// Reference is the transaction signature for confirmed outcomes and the
	// error description otherwise.
	Reference string `json:"reference"`
	Status    Status `json:"status"`
	Reason    Reason `json:"reason,omitempty"`
	// Code is the custom program error code if the ledger reported one.
	Code *uint32 `json:"code,omitempty"`

	// Accounts of the transaction.
	Accounts []solana.PublicKey `json:"accounts"`
	// Rent held by Accounts, in lamports.
	Rent uint64 `json:"rent"`
}

// Report summarizes a settlement run.
type Report struct {
	RunID     uuid.UUID
	Started   time.Time
	Finished  time.Time
	Chunks    int
	Outcomes  []Outcome
	Confirmed int
	Errored   int
	// Removed is the number of candidates removed from the session.
	Removed int
}
