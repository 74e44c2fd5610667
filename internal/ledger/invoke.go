package ledger

import (
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// MaxInvokeDepth is the maximum nesting level of instructions, the top-level
// instruction included.
const MaxInvokeDepth = 5

// Program is an on-ledger program.
type Program interface {
	// Process executes a single instruction. Accounts are passed in the order
	// of the instruction account list.
	Process(ic *InvokeContext, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc is a function adapter for Program.
type ProgramFunc func(ic *InvokeContext, accounts []*AccountInfo, data []byte) error

// Process implements Program.
func (f ProgramFunc) Process(ic *InvokeContext, accounts []*AccountInfo, data []byte) error {
	return f(ic, accounts, data)
}

type privilege struct {
	signer   bool
	writable bool
}

// InvokeContext is the environment of a running instruction.
type InvokeContext struct {
	programID  solana.PublicKey
	tx         *txContext
	privileges map[solana.PublicKey]privilege
	infos      []*AccountInfo
	pre        map[solana.PublicKey]snapshot
	depth      int
	log        *zap.Logger
}

// ProgramID returns the address of the running program.
func (ic *InvokeContext) ProgramID() solana.PublicKey {
	return ic.programID
}

// Logger returns the program log of the instruction.
func (ic *InvokeContext) Logger() *zap.Logger {
	return ic.log
}

// InvokeSigned calls another program. Every account of ix must be passed to
// the running instruction with at least the same privileges. A signer role
// not signed by the transaction is granted when one of signerSeeds derives
// its address from the running program.
//
// Changes made by the callee are visible to the caller after the call.
func (ic *InvokeContext) InvokeSigned(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if ic.depth >= MaxInvokeDepth {
		return ErrCallDepth
	}

	derived := make(map[solana.PublicKey]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, ic.programID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSeeds, err)
		}
		derived[addr] = struct{}{}
	}

	metas := ix.Accounts()
	callee := make([]*solana.AccountMeta, len(metas))

	for i, m := range metas {
		p, ok := ic.privileges[m.PublicKey]
		if !ok {
			return fmt.Errorf("%w: account %s is not passed to the caller", ErrNotEnoughAccountKeys, m.PublicKey)
		}

		if m.IsWritable && !p.writable {
			return fmt.Errorf("%w: %s is not writable", ErrPrivilegeEscalation, m.PublicKey)
		}

		signer := p.signer
		if m.IsSigner && !signer {
			if _, ok := derived[m.PublicKey]; !ok {
				return fmt.Errorf("%w: %s is not a signer", ErrPrivilegeEscalation, m.PublicKey)
			}
			signer = true
		}

		callee[i] = solana.NewAccountMeta(m.PublicKey, m.IsWritable, m.IsSigner && signer)
	}

	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}

	// The caller answers for its own changes made so far, the callee for
	// the changes it makes.
	if err := verifyInstruction(ic.programID, ic.pre, ic.infos); err != nil {
		return err
	}

	if err := ic.tx.execute(ix.ProgramID(), callee, data, ic.depth+1); err != nil {
		return err
	}

	ic.refresh()

	return nil
}

func (ic *InvokeContext) refresh() {
	for key, s := range ic.pre {
		acc := ic.tx.load(key)
		s.lamports = acc.Lamports
		s.owner = acc.Owner
		s.data = slices.Clone(acc.Data)
		ic.pre[key] = s
	}
}

// txContext is the working state of a transaction. Accounts are loaded
// lazily as copies and written back on commit.
type txContext struct {
	l       *Ledger
	working map[solana.PublicKey]*Account
}

func newTxContext(l *Ledger) *txContext {
	return &txContext{
		l:       l,
		working: make(map[solana.PublicKey]*Account),
	}
}

func (t *txContext) load(key solana.PublicKey) *Account {
	if acc, ok := t.working[key]; ok {
		return acc
	}

	var acc *Account
	if stored, ok := t.l.accounts[key]; ok {
		acc = stored.clone()
	} else {
		acc = &Account{Owner: solana.SystemProgramID}
	}
	t.working[key] = acc

	return acc
}

func (t *txContext) execute(programID solana.PublicKey, metas []*solana.AccountMeta, data []byte, depth int) error {
	prog, ok := t.l.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}

	infos := make([]*AccountInfo, len(metas))
	privileges := make(map[solana.PublicKey]privilege, len(metas))

	for i, m := range metas {
		infos[i] = &AccountInfo{
			Key:        m.PublicKey,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			acc:        t.load(m.PublicKey),
		}

		p := privileges[m.PublicKey]
		p.signer = p.signer || m.IsSigner
		p.writable = p.writable || m.IsWritable
		privileges[m.PublicKey] = p
	}

	pre := takeSnapshots(infos)

	ic := &InvokeContext{
		programID:  programID,
		tx:         t,
		privileges: privileges,
		infos:      infos,
		pre:        pre,
		depth:      depth,
		log:        t.l.log.With(zap.Stringer("program", programID), zap.Int("depth", depth)),
	}

	if err := prog.Process(ic, infos, data); err != nil {
		return err
	}

	return verifyInstruction(programID, pre, infos)
}

// commit writes the working copies back. Accounts left without lamports are
// purged.
func (t *txContext) commit() {
	for key, acc := range t.working {
		if acc.Lamports == 0 && !acc.Executable {
			delete(t.l.accounts, key)
			continue
		}
		t.l.accounts[key] = acc
	}
}
