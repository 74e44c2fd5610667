package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newKey(t *testing.T) solana.PrivateKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func send(t *testing.T, l *Ledger, payer solana.PrivateKey, ixs ...solana.Instruction) (solana.Signature, error) {
	bh, err := l.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
	require.NoError(t, err)

	return sendWithBlockhash(t, l, payer, bh.Value.Blockhash, ixs...)
}

func sendWithBlockhash(t *testing.T, l *Ledger, payer solana.PrivateKey, bh solana.Hash, ixs ...solana.Instruction) (solana.Signature, error) {
	tx, err := solana.NewTransaction(ixs, bh, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)

	_, err = tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	require.NoError(t, err)

	return l.SendTransactionWithOpts(context.Background(), tx, rpc.TransactionOpts{})
}

func closeIx(t *testing.T, account, dest, owner solana.PublicKey) solana.Instruction {
	ix, err := token.NewCloseAccountInstruction(account, dest, owner, nil).ValidateAndBuild()
	require.NoError(t, err)
	return ix
}

func TestTokenClose(t *testing.T) {
	l := New(zaptest.NewLogger(t))
	user := newKey(t)
	mint := newKey(t).PublicKey()

	empty := newKey(t).PublicKey()
	full := newKey(t).PublicKey()
	require.NoError(t, l.CreateTokenAccount(empty, mint, user.PublicKey(), 0, TokenAccountRent))
	require.NoError(t, l.CreateTokenAccount(full, mint, user.PublicKey(), 7, TokenAccountRent))

	t.Run("non-empty", func(t *testing.T) {
		_, err := send(t, l, user, closeIx(t, full, user.PublicKey(), user.PublicKey()))

		var ie *InstructionError
		require.ErrorAs(t, err, &ie)
		require.Equal(t, 0, ie.Index)
		require.ErrorIs(t, err, ErrNonNativeHasBalance)

		code, ok := CustomCode(err)
		require.True(t, ok)
		require.EqualValues(t, 11, code)

		require.EqualValues(t, TokenAccountRent, l.Lamports(full))
	})

	t.Run("wrong owner", func(t *testing.T) {
		stranger := newKey(t)
		_, err := send(t, l, stranger, closeIx(t, empty, stranger.PublicKey(), stranger.PublicKey()))
		require.ErrorIs(t, err, ErrOwnerMismatch)
		require.EqualValues(t, TokenAccountRent, l.Lamports(empty))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := send(t, l, user, closeIx(t, empty, user.PublicKey(), user.PublicKey()))
		require.NoError(t, err)

		_, ok := l.GetAccount(empty)
		require.False(t, ok)
		require.EqualValues(t, TokenAccountRent, l.Lamports(user.PublicKey()))
	})
}

func TestSendTransaction(t *testing.T) {
	l := New(zaptest.NewLogger(t))
	user := newKey(t)
	mint := newKey(t).PublicKey()

	a := newKey(t).PublicKey()
	b := newKey(t).PublicKey()
	require.NoError(t, l.CreateTokenAccount(a, mint, user.PublicKey(), 0, TokenAccountRent))
	require.NoError(t, l.CreateTokenAccount(b, mint, user.PublicKey(), 1, TokenAccountRent))

	t.Run("all or nothing", func(t *testing.T) {
		_, err := send(t, l, user,
			closeIx(t, a, user.PublicKey(), user.PublicKey()),
			closeIx(t, b, user.PublicKey(), user.PublicKey()))

		var ie *InstructionError
		require.ErrorAs(t, err, &ie)
		require.Equal(t, 1, ie.Index)

		require.EqualValues(t, TokenAccountRent, l.Lamports(a))
		require.Zero(t, l.Lamports(user.PublicKey()))
	})

	t.Run("expired blockhash", func(t *testing.T) {
		bh, err := l.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
		require.NoError(t, err)

		l.Advance(MaxBlockhashAge + 1)

		_, err = sendWithBlockhash(t, l, user, bh.Value.Blockhash, closeIx(t, a, user.PublicKey(), user.PublicKey()))
		require.ErrorIs(t, err, ErrBlockhashNotFound)
	})

	t.Run("duplicate", func(t *testing.T) {
		bh, err := l.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
		require.NoError(t, err)

		ix := closeIx(t, a, user.PublicKey(), user.PublicKey())
		sig, err := sendWithBlockhash(t, l, user, bh.Value.Blockhash, ix)
		require.NoError(t, err)
		require.True(t, l.IsProcessed(sig))

		_, err = sendWithBlockhash(t, l, user, bh.Value.Blockhash, ix)
		require.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("unknown program", func(t *testing.T) {
		ix := solana.NewInstruction(newKey(t).PublicKey(), solana.AccountMetaSlice{
			solana.NewAccountMeta(user.PublicKey(), true, true),
		}, []byte{1})

		_, err := send(t, l, user, ix)
		require.ErrorIs(t, err, ErrProgramNotFound)
	})

	t.Run("unsigned", func(t *testing.T) {
		bh, err := l.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
		require.NoError(t, err)

		tx, err := solana.NewTransaction([]solana.Instruction{closeIx(t, a, user.PublicKey(), user.PublicKey())},
			bh.Value.Blockhash, solana.TransactionPayer(user.PublicKey()))
		require.NoError(t, err)

		_, err = l.SendTransactionWithOpts(context.Background(), tx, rpc.TransactionOpts{})
		require.ErrorIs(t, err, ErrSignatureFailure)
	})
}

func TestRuntimeRules(t *testing.T) {
	l := New(zaptest.NewLogger(t))
	user := newKey(t)
	program := newKey(t).PublicKey()
	foreign := newKey(t).PublicKey()
	own := newKey(t).PublicKey()
	readonly := newKey(t).PublicKey()

	l.SetAccount(foreign, Account{Lamports: 100, Owner: solana.SystemProgramID})
	l.SetAccount(own, Account{Lamports: 100, Owner: program})
	l.SetAccount(readonly, Account{Lamports: 100, Owner: program})

	var body func(ic *InvokeContext, accs []*AccountInfo) error
	l.RegisterProgram(program, ProgramFunc(func(ic *InvokeContext, accs []*AccountInfo, _ []byte) error {
		return body(ic, accs)
	}))

	ix := solana.NewInstruction(program, solana.AccountMetaSlice{
		solana.NewAccountMeta(foreign, true, false),
		solana.NewAccountMeta(own, true, false),
		solana.NewAccountMeta(readonly, false, false),
	}, nil)

	for _, tc := range []struct {
		name string
		body func(ic *InvokeContext, accs []*AccountInfo) error
		err  error
	}{
		{
			name: "debit of foreign account",
			body: func(_ *InvokeContext, accs []*AccountInfo) error {
				accs[0].SetLamports(90)
				accs[1].SetLamports(110)
				return nil
			},
			err: ErrExternalAccountLamportSpend,
		},
		{
			name: "unbalanced",
			body: func(_ *InvokeContext, accs []*AccountInfo) error {
				accs[1].SetLamports(90)
				return nil
			},
			err: ErrUnbalancedInstruction,
		},
		{
			name: "foreign data",
			body: func(_ *InvokeContext, accs []*AccountInfo) error {
				accs[0].SetData([]byte{1})
				return nil
			},
			err: ErrExternalAccountDataModified,
		},
		{
			name: "read-only balance",
			body: func(_ *InvokeContext, accs []*AccountInfo) error {
				accs[1].SetLamports(90)
				accs[2].SetLamports(110)
				return nil
			},
			err: ErrReadonlyLamportChange,
		},
		{
			name: "program error",
			body: func(_ *InvokeContext, _ []*AccountInfo) error {
				return errors.New("failure")
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			body = tc.body

			_, err := send(t, l, user, ix)
			require.Error(t, err)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}

			require.EqualValues(t, 100, l.Lamports(foreign))
			require.EqualValues(t, 100, l.Lamports(own))
			require.EqualValues(t, 100, l.Lamports(readonly))
		})
	}

	t.Run("credit of foreign account", func(t *testing.T) {
		body = func(_ *InvokeContext, accs []*AccountInfo) error {
			accs[1].SetLamports(60)
			accs[0].SetLamports(140)
			return nil
		}

		_, err := send(t, l, user, ix)
		require.NoError(t, err)
		require.EqualValues(t, 140, l.Lamports(foreign))
		require.EqualValues(t, 60, l.Lamports(own))
	})
}

func TestInvokeSigned(t *testing.T) {
	l := New(zaptest.NewLogger(t))
	payer := newKey(t)
	program := newKey(t).PublicKey()
	mint := newKey(t).PublicKey()
	dest := newKey(t).PublicKey()

	seed := []byte("authority")
	authority, bump, err := solana.FindProgramAddress([][]byte{seed}, program)
	require.NoError(t, err)

	acc := newKey(t).PublicKey()
	require.NoError(t, l.CreateTokenAccount(acc, mint, authority, 0, TokenAccountRent))

	var seeds [][][]byte
	l.RegisterProgram(program, ProgramFunc(func(ic *InvokeContext, accs []*AccountInfo, _ []byte) error {
		return ic.InvokeSigned(closeIx(t, accs[0].Key, accs[1].Key, accs[2].Key), seeds...)
	}))

	ix := solana.NewInstruction(program, solana.AccountMetaSlice{
		solana.NewAccountMeta(acc, true, false),
		solana.NewAccountMeta(dest, true, false),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, nil)

	t.Run("no seeds", func(t *testing.T) {
		seeds = nil
		_, err := send(t, l, payer, ix)
		require.ErrorIs(t, err, ErrPrivilegeEscalation)
	})

	t.Run("foreign seeds", func(t *testing.T) {
		other := []byte("other")
		_, otherBump, err := solana.FindProgramAddress([][]byte{other}, program)
		require.NoError(t, err)

		seeds = [][][]byte{{other, {otherBump}}}
		_, err = send(t, l, payer, ix)
		require.ErrorIs(t, err, ErrPrivilegeEscalation)
	})

	t.Run("derived signer", func(t *testing.T) {
		seeds = [][][]byte{{seed, {bump}}}
		_, err := send(t, l, payer, ix)
		require.NoError(t, err)

		_, ok := l.GetAccount(acc)
		require.False(t, ok)
		require.EqualValues(t, TokenAccountRent, l.Lamports(dest))
	})
}

func TestGetTokenAccountsByOwner(t *testing.T) {
	l := New(zaptest.NewLogger(t))
	owner := newKey(t).PublicKey()
	other := newKey(t).PublicKey()
	mint := newKey(t).PublicKey()

	mine := []solana.PublicKey{newKey(t).PublicKey(), newKey(t).PublicKey()}
	for i, k := range mine {
		require.NoError(t, l.CreateTokenAccount(k, mint, owner, uint64(i), TokenAccountRent))
	}
	require.NoError(t, l.CreateTokenAccount(newKey(t).PublicKey(), mint, other, 0, TokenAccountRent))

	_, err := l.GetTokenAccountsByOwner(context.Background(), owner, nil, nil)
	require.Error(t, err)

	res, err := l.GetTokenAccountsByOwner(context.Background(), owner,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64})
	require.NoError(t, err)
	require.Len(t, res.Value, 2)

	for _, v := range res.Value {
		require.Contains(t, mine, v.Pubkey)
		require.EqualValues(t, TokenAccountRent, v.Account.Lamports)

		acc, err := DecodeTokenAccount(v.Account.Data.GetBinary())
		require.NoError(t, err)
		require.Equal(t, owner, acc.Owner)
		require.Equal(t, mint, acc.Mint)
	}

	bal, err := l.GetBalance(context.Background(), mine[0], rpc.CommitmentFinalized)
	require.NoError(t, err)
	require.EqualValues(t, TokenAccountRent, bal.Value)
}
