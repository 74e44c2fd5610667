package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"github.com/zera-labs/janitor/internal/ledger"
	"go.uber.org/zap/zaptest"
)

func newKey(t *testing.T) solana.PrivateKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

type testSigner struct {
	pub solana.PublicKey
}

func (s testSigner) PublicKey() solana.PublicKey {
	return s.pub
}

func (testSigner) SignAndSubmit(context.Context, SubmitRequest) (solana.Signature, error) {
	return solana.Signature{}, ErrRejected
}

func TestKeypairSigner(t *testing.T) {
	l := ledger.New(zaptest.NewLogger(t))
	user := newKey(t)
	acc := newKey(t).PublicKey()
	require.NoError(t, l.CreateTokenAccount(acc, newKey(t).PublicKey(), user.PublicKey(), 0, ledger.TokenAccountRent))

	s := NewKeypairSigner(KeypairPrm{
		Logger: zaptest.NewLogger(t),
		Key:    user,
		Sender: l,
	})
	require.Equal(t, user.PublicKey(), s.PublicKey())

	bh, err := l.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
	require.NoError(t, err)

	t.Run("foreign signer", func(t *testing.T) {
		other := newKey(t).PublicKey()
		ix, err := token.NewCloseAccountInstruction(acc, user.PublicKey(), other, nil).ValidateAndBuild()
		require.NoError(t, err)

		_, err = s.SignAndSubmit(context.Background(), SubmitRequest{Instruction: ix, Blockhash: bh.Value.Blockhash})
		require.ErrorIs(t, err, ErrRejected)
	})

	t.Run("ledger rejection", func(t *testing.T) {
		_, err := s.SignAndSubmit(context.Background(), SubmitRequest{
			Instruction: solana.NewInstruction(newKey(t).PublicKey(), nil, nil),
			Blockhash:   bh.Value.Blockhash,
		})
		require.ErrorIs(t, err, ledger.ErrProgramNotFound)
		require.NotErrorIs(t, err, ErrRejected)
	})

	t.Run("submit", func(t *testing.T) {
		ix, err := token.NewCloseAccountInstruction(acc, user.PublicKey(), user.PublicKey(), nil).ValidateAndBuild()
		require.NoError(t, err)

		sig, err := s.SignAndSubmit(context.Background(), SubmitRequest{Instruction: ix, Blockhash: bh.Value.Blockhash})
		require.NoError(t, err)
		require.True(t, l.IsProcessed(sig))
		require.EqualValues(t, ledger.TokenAccountRent, l.Lamports(user.PublicKey()))
	})
}

func TestSelect(t *testing.T) {
	log := zaptest.NewLogger(t)

	var calls []string
	provider := func(name string, err error) Provider {
		return Provider{
			Name: name,
			Connect: func(context.Context) (WalletSigner, error) {
				calls = append(calls, name)
				if err != nil {
					return nil, err
				}
				return testSigner{pub: solana.SystemProgramID}, nil
			},
		}
	}

	t.Run("fallback", func(t *testing.T) {
		calls = nil

		s, err := Select(context.Background(), log,
			provider("first", errors.New("not installed")),
			provider("second", nil),
			provider("third", nil))
		require.NoError(t, err)
		require.Equal(t, solana.SystemProgramID, s.PublicKey())
		require.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("none", func(t *testing.T) {
		calls = nil

		_, err := Select(context.Background(), log)
		require.ErrorIs(t, err, ErrNoProvider)

		_, err = Select(context.Background(), log,
			provider("first", errors.New("not installed")),
			provider("second", errors.New("locked")))
		require.ErrorIs(t, err, ErrNoProvider)
		require.ErrorContains(t, err, "locked")
		require.Equal(t, []string{"first", "second"}, calls)
	})
}

func TestKeygenFile(t *testing.T) {
	key := newKey(t)

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	content, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	s, err := Select(context.Background(), zaptest.NewLogger(t),
		KeygenFile(filepath.Join(t.TempDir(), "missing.json"), KeypairPrm{}),
		Keypair(KeypairPrm{}),
		KeygenFile(path, KeypairPrm{}))
	require.NoError(t, err)
	require.Equal(t, key.PublicKey(), s.PublicKey())
}
