package settlement

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrRunInProgress is returned when the session is being settled.
	ErrRunInProgress = errors.New("settlement run in progress")
	// ErrNothingSelected is returned by Executor.Run for an empty selection.
	ErrNothingSelected = errors.New("no accounts selected")
	// ErrNonEmptyAccount is returned by SetCandidates for accounts holding
	// tokens.
	ErrNonEmptyAccount = errors.New("account holds tokens")
	// ErrIndexOutOfRange is returned by Toggle for unknown candidates.
	ErrIndexOutOfRange = errors.New("candidate index out of range")
)

// CandidateAccount is an empty token account eligible for closing.
type CandidateAccount struct {
	// Address of the token account.
	Address solana.PublicKey `json:"address"`
	// Mint of the tokens the account holds.
	Mint solana.PublicKey `json:"mint"`
	// Amount of tokens, always zero for candidates.
	Amount uint64 `json:"amount"`
	// HeldValue is the rent deposit of the account in lamports.
	HeldValue uint64 `json:"held_value"`
}

// Session is the client state of a connected user. It is safe for
// concurrent use.
type Session struct {
	mu         sync.Mutex
	candidates []CandidateAccount
	selection  []int
	outcomes   []Outcome
	running    bool
}

// NewSession returns an empty session.
func NewSession() *Session {
	return new(Session)
}

// SetCandidates replaces the candidate list and clears the selection. All
// accounts must be empty.
func (s *Session) SetCandidates(cs []CandidateAccount) error {
	for _, c := range cs {
		if c.Amount != 0 {
			return fmt.Errorf("%w: %s", ErrNonEmptyAccount, c.Address)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrRunInProgress
	}

	s.candidates = slices.Clone(cs)
	s.selection = nil
	return nil
}

// Candidates returns a copy of the candidate list.
func (s *Session) Candidates() []CandidateAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.candidates)
}

// Toggle selects the candidate with index i or deselects it if it is
// already selected. Newly selected candidates go to the end of the selection.
func (s *Session) Toggle(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.candidates) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.candidates))
	}

	if j := slices.Index(s.selection, i); j >= 0 {
		s.selection = slices.Delete(s.selection, j, j+1)
		return nil
	}

	s.selection = append(s.selection, i)
	return nil
}

// SelectAll selects every candidate in list order.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = make([]int, len(s.candidates))
	for i := range s.selection {
		s.selection[i] = i
	}
}

// ClearSelection deselects all candidates.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = nil
}

// Selection returns indices of the selected candidates in selection order.
func (s *Session) Selection() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.selection)
}

// Selected returns the selected candidates in selection order.
func (s *Session) Selected() []CandidateAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected()
}

func (s *Session) selected() []CandidateAccount {
	res := make([]CandidateAccount, len(s.selection))
	for i, idx := range s.selection {
		res[i] = s.candidates[idx]
	}
	return res
}

// Outcomes returns a copy of the outcome log.
func (s *Session) Outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.outcomes)
}

// Disconnect forgets everything known about the user.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrRunInProgress
	}

	s.candidates = nil
	s.selection = nil
	s.outcomes = nil
	return nil
}

// beginRun marks the session as being settled and returns the selection
// snapshot.
func (s *Session) beginRun() ([]CandidateAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrRunInProgress
	}
	if len(s.selection) == 0 {
		return nil, ErrNothingSelected
	}

	s.running = true
	return s.selected(), nil
}

// abortRun releases the session without changes.
func (s *Session) abortRun() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
}

func (s *Session) appendOutcome(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcomes = append(s.outcomes, o)
}

// endRun clears the selection, drops the given accounts from the candidates
// and returns the number of dropped ones.
func (s *Session) endRun(remove map[solana.PublicKey]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.candidates)
	s.candidates = slices.DeleteFunc(s.candidates, func(c CandidateAccount) bool {
		_, ok := remove[c.Address]
		return ok
	})
	s.selection = nil
	s.running = false

	return n - len(s.candidates)
}
