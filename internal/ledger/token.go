package ledger

import (
	"bytes"
	"fmt"
	"math/bits"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

// TokenAccountSize is the size of an encoded token account.
const TokenAccountSize = 165

// TokenAccountRent is the rent-exempt balance of a token account.
const TokenAccountRent = 2_039_280

// TokenError is an error code of the token program.
type TokenError uint32

// Token program errors used by the ledger.
const (
	ErrOwnerMismatch       TokenError = 4
	ErrNonNativeHasBalance TokenError = 11
)

func (e TokenError) Error() string {
	switch e {
	case ErrOwnerMismatch:
		return "token: owner does not match"
	case ErrNonNativeHasBalance:
		return "token: non-native account can only be closed if its balance is zero"
	default:
		return fmt.Sprintf("token: error %d", uint32(e))
	}
}

// Code implements CustomError.
func (e TokenError) Code() uint32 {
	return uint32(e)
}

// EncodeTokenAccount returns the ledger representation of a token account.
func EncodeTokenAccount(acc token.Account) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBinEncoder(buf).Encode(&acc); err != nil {
		return nil, fmt.Errorf("encode token account: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeTokenAccount parses a token account.
func DecodeTokenAccount(data []byte) (token.Account, error) {
	var acc token.Account
	if len(data) != TokenAccountSize {
		return acc, fmt.Errorf("%w: token account of %d bytes", ErrInvalidAccountData, len(data))
	}
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return acc, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return acc, nil
}

// CreateTokenAccount stores an initialized token account holding amount
// tokens of mint for owner.
func (l *Ledger) CreateTokenAccount(key, mint, owner solana.PublicKey, amount, lamports uint64) error {
	data, err := EncodeTokenAccount(token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.Initialized,
	})
	if err != nil {
		return err
	}

	l.SetAccount(key, Account{
		Lamports: lamports,
		Owner:    solana.TokenProgramID,
		Data:     data,
	})
	return nil
}

// TokenProgram is the built-in token program. It supports closing empty
// accounts only.
type TokenProgram struct{}

// Process implements Program.
func (TokenProgram) Process(ic *InvokeContext, accounts []*AccountInfo, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstructionData
	}

	switch data[0] {
	case token.Instruction_CloseAccount:
		return closeAccount(ic, accounts)
	default:
		return fmt.Errorf("%w: unsupported token instruction %s", ErrInvalidInstructionData, token.InstructionIDToName(data[0]))
	}
}

// closeAccount moves all lamports of an empty token account to the
// destination and wipes it. Accounts are [account, destination, authority].
func closeAccount(ic *InvokeContext, accounts []*AccountInfo) error {
	if len(accounts) < 3 {
		return ErrNotEnoughAccountKeys
	}
	src, dst, authority := accounts[0], accounts[1], accounts[2]

	if !src.Owner().Equals(ic.ProgramID()) {
		return ErrIncorrectProgramID
	}
	if src.Key.Equals(dst.Key) {
		return ErrInvalidAccountData
	}

	state, err := DecodeTokenAccount(src.Data())
	if err != nil {
		return err
	}
	if state.IsNative == nil && state.Amount != 0 {
		return ErrNonNativeHasBalance
	}

	expected := state.Owner
	if state.CloseAuthority != nil {
		expected = *state.CloseAuthority
	}
	if !authority.Key.Equals(expected) {
		return ErrOwnerMismatch
	}
	if !authority.IsSigner {
		return ErrMissingRequiredSignature
	}

	sum, carry := bits.Add64(dst.Lamports(), src.Lamports(), 0)
	if carry != 0 {
		return ErrArithmeticOverflow
	}

	ic.Logger().Debug("token account closed",
		zap.Stringer("account", src.Key),
		zap.Stringer("destination", dst.Key),
		zap.Uint64("lamports", src.Lamports()))

	dst.SetLamports(sum)
	src.SetLamports(0)
	src.SetData(nil)
	src.Assign(solana.SystemProgramID)

	return nil
}
