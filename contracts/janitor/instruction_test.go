package janitor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zera-labs/janitor/contracts/janitor/janitorconst"
	"github.com/zera-labs/janitor/internal/ledger"
)

func TestEncodeDecode(t *testing.T) {
	for c := range 256 {
		data := Encode(uint8(c))
		require.Equal(t, []byte{janitorconst.BatchCleanTag, uint8(c)}, data)

		ins, err := Decode(data)
		require.NoError(t, err)
		require.Equal(t, BatchClean{Count: uint8(c)}, ins)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for tag := 1; tag < 256; tag++ {
		_, err := Decode([]byte{uint8(tag), 1})
		require.ErrorIs(t, err, ledger.ErrInvalidInstructionData, tag)
	}

	for _, data := range [][]byte{
		nil,
		{janitorconst.BatchCleanTag},
		{janitorconst.BatchCleanTag, 1, 0},
	} {
		_, err := Decode(data)
		require.ErrorIs(t, err, ledger.ErrInvalidInstructionData, data)
	}
}
