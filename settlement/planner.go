package settlement

import (
	"github.com/gagliardetto/solana-go"
	"github.com/zera-labs/janitor/common"
	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
)

// Chunk is a group of accounts closed by a single transaction.
type Chunk []CandidateAccount

// Addresses returns account addresses of the chunk in order.
func (c Chunk) Addresses() []solana.PublicKey {
	res := make([]solana.PublicKey, len(c))
	for i := range c {
		res[i] = c[i].Address
	}
	return res
}

// Rent returns the total rent held by the chunk accounts or
// common.ErrOverflow if it does not fit into uint64.
func (c Chunk) Rent() (uint64, error) {
	var (
		res uint64
		err error
	)
	for i := range c {
		res, err = common.CheckedAdd(res, c[i].HeldValue)
		if err != nil {
			return 0, err
		}
	}
	return res, nil
}

// Plan splits the selection into chunks of janitorconst.MaxAccountsPerCall
// accounts preserving the order. Only the last chunk may be shorter.
func Plan(selection []CandidateAccount) []Chunk {
	const size = janitorconst.MaxAccountsPerCall

	res := make([]Chunk, 0, (len(selection)+size-1)/size)
	for len(selection) > 0 {
		n := min(size, len(selection))
		res = append(res, Chunk(selection[:n:n]))
		selection = selection[n:]
	}
	return res
}
