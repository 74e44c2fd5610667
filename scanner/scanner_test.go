package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"github.com/zera-labs/janitor/internal/ledger"
	"go.uber.org/zap/zaptest"
)

func randomKey(t *testing.T) solana.PublicKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k.PublicKey()
}

type testLister struct {
	res *rpc.GetTokenAccountsResult
	err error
}

func (l testLister) GetTokenAccountsByOwner(context.Context, solana.PublicKey, *rpc.GetTokenAccountsConfig, *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	return l.res, l.err
}

func TestScanLedger(t *testing.T) {
	l := ledger.New(zaptest.NewLogger(t))
	owner := randomKey(t)
	mint := randomKey(t)

	empty := map[solana.PublicKey]struct{}{}
	for i := range 6 {
		key := randomKey(t)
		amount := uint64(i % 2)
		require.NoError(t, l.CreateTokenAccount(key, mint, owner, amount, ledger.TokenAccountRent))
		if amount == 0 {
			empty[key] = struct{}{}
		}
	}
	require.NoError(t, l.CreateTokenAccount(randomKey(t), mint, randomKey(t), 0, ledger.TokenAccountRent))

	s := New(Prm{Logger: zaptest.NewLogger(t), Lister: l})

	cs, err := s.Scan(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, cs, len(empty))

	for _, c := range cs {
		require.Contains(t, empty, c.Address)
		require.Equal(t, mint, c.Mint)
		require.Zero(t, c.Amount)
		require.EqualValues(t, ledger.TokenAccountRent, c.HeldValue)
	}
}

func TestScan(t *testing.T) {
	t.Run("failure", func(t *testing.T) {
		s := New(Prm{Lister: testLister{err: errors.New("timeout")}})
		_, err := s.Scan(context.Background(), randomKey(t))
		require.ErrorContains(t, err, "timeout")
	})

	t.Run("order and garbage", func(t *testing.T) {
		var (
			res  = new(rpc.GetTokenAccountsResult)
			keys []solana.PublicKey
		)

		for range 3 {
			data, err := ledger.EncodeTokenAccount(token.Account{
				Mint:  randomKey(t),
				Owner: randomKey(t),
				State: token.Initialized,
			})
			require.NoError(t, err)

			key := randomKey(t)
			keys = append(keys, key)
			res.Value = append(res.Value,
				&rpc.TokenAccount{
					Pubkey:  key,
					Account: rpc.Account{Lamports: 1, Data: rpc.DataBytesOrJSONFromBytes(data)},
				},
				&rpc.TokenAccount{
					Pubkey:  randomKey(t),
					Account: rpc.Account{Lamports: 1, Data: rpc.DataBytesOrJSONFromBytes([]byte{1, 2, 3})},
				},
			)
		}

		s := New(Prm{Logger: zaptest.NewLogger(t), Lister: testLister{res: res}})
		cs, err := s.Scan(context.Background(), randomKey(t))
		require.NoError(t, err)
		require.Len(t, cs, 3)
		for i := range cs {
			require.Equal(t, keys[i], cs[i].Address)
		}
	})
}
