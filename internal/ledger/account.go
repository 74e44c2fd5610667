package ledger

import (
	"bytes"
	"math/bits"
	"slices"

	"github.com/gagliardetto/solana-go"
)

// Account is a unit of ledger state.
type Account struct {
	// Lamports held by the account.
	Lamports uint64
	// Owner is the program allowed to debit the account and modify its data.
	Owner solana.PublicKey
	// Data is the program-defined account state.
	Data []byte
	// Executable marks program accounts.
	Executable bool
}

func (a *Account) clone() *Account {
	res := *a
	res.Data = slices.Clone(a.Data)
	return &res
}

// AccountInfo is the view of an account passed to a program for a single
// instruction. Several AccountInfo values may share the same underlying
// account when the instruction references it more than once.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool

	acc *Account
}

// Lamports returns the current balance of the account.
func (a *AccountInfo) Lamports() uint64 {
	return a.acc.Lamports
}

// Owner returns the program owning the account.
func (a *AccountInfo) Owner() solana.PublicKey {
	return a.acc.Owner
}

// Data returns account data. The slice must not be modified, use SetData.
func (a *AccountInfo) Data() []byte {
	return a.acc.Data
}

// SetLamports sets the balance of the account. Ownership and conservation
// rules are checked by the runtime when the instruction returns.
func (a *AccountInfo) SetLamports(v uint64) {
	a.acc.Lamports = v
}

// SetData replaces account data.
func (a *AccountInfo) SetData(data []byte) {
	a.acc.Data = slices.Clone(data)
}

// Assign changes the owner program of the account.
func (a *AccountInfo) Assign(owner solana.PublicKey) {
	a.acc.Owner = owner
}

// snapshot is the state of an account taken before an instruction.
type snapshot struct {
	lamports uint64
	owner    solana.PublicKey
	data     []byte
	writable bool
}

func takeSnapshots(infos []*AccountInfo) map[solana.PublicKey]snapshot {
	res := make(map[solana.PublicKey]snapshot, len(infos))

	for _, info := range infos {
		s, ok := res[info.Key]
		if ok {
			s.writable = s.writable || info.IsWritable
			res[info.Key] = s
			continue
		}

		res[info.Key] = snapshot{
			lamports: info.acc.Lamports,
			owner:    info.acc.Owner,
			data:     slices.Clone(info.acc.Data),
			writable: info.IsWritable,
		}
	}

	return res
}

// verifyInstruction checks the account rules of the runtime for the
// instruction executed by program over the given accounts.
func verifyInstruction(program solana.PublicKey, pre map[solana.PublicKey]snapshot, infos []*AccountInfo) error {
	var (
		before, after uint64
		seen          = make(map[solana.PublicKey]struct{}, len(pre))
	)

	for _, info := range infos {
		if _, ok := seen[info.Key]; ok {
			continue
		}
		seen[info.Key] = struct{}{}

		s := pre[info.Key]
		cur := info.acc

		if s.lamports != cur.Lamports && !s.writable {
			return ErrReadonlyLamportChange
		}

		if cur.Lamports < s.lamports && !s.owner.Equals(program) {
			return ErrExternalAccountLamportSpend
		}

		if (!bytes.Equal(s.data, cur.Data) || !s.owner.Equals(cur.Owner)) && !s.owner.Equals(program) {
			return ErrExternalAccountDataModified
		}

		var carry uint64
		before, carry = bits.Add64(before, s.lamports, 0)
		if carry != 0 {
			return ErrArithmeticOverflow
		}
		after, carry = bits.Add64(after, cur.Lamports, 0)
		if carry != 0 {
			return ErrArithmeticOverflow
		}
	}

	if before != after {
		return ErrUnbalancedInstruction
	}

	return nil
}
