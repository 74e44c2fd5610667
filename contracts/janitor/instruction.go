package janitor

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
	"github.com/zera-labs/janitor/internal/ledger"
)

// Instruction is a decoded Janitor instruction. New instructions get new
// tags, tags of existing ones never change.
type Instruction interface {
	Tag() uint8
}

// BatchClean closes Count token accounts of the user and settles their rent.
type BatchClean struct {
	Count uint8
}

// Tag implements Instruction.
func (BatchClean) Tag() uint8 {
	return janitorconst.BatchCleanTag
}

// Encode returns instruction data of BatchClean with the given count.
func Encode(count uint8) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 2))
	enc := bin.NewBorshEncoder(buf)

	// bytes.Buffer writes do not fail.
	_ = enc.WriteUint8(janitorconst.BatchCleanTag)
	_ = enc.WriteUint8(count)

	return buf.Bytes()
}

// Decode parses instruction data. Unknown tags and data of unexpected length
// are rejected with ledger.ErrInvalidInstructionData.
func Decode(data []byte) (Instruction, error) {
	dec := bin.NewBorshDecoder(data)

	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: read tag: %w", ledger.ErrInvalidInstructionData, err)
	}

	var ins Instruction

	switch tag {
	case janitorconst.BatchCleanTag:
		count, err := dec.ReadUint8()
		if err != nil {
			return nil, fmt.Errorf("%w: read count: %w", ledger.ErrInvalidInstructionData, err)
		}
		ins = BatchClean{Count: count}
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ledger.ErrInvalidInstructionData, tag)
	}

	if dec.HasRemaining() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ledger.ErrInvalidInstructionData, dec.Remaining())
	}

	return ins, nil
}
