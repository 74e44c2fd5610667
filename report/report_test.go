package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/zera-labs/janitor/settlement"
)

func randomKey(t *testing.T) solana.PublicKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k.PublicKey()
}

func testReport(t *testing.T) settlement.Report {
	code := uint32(2)
	return settlement.Report{
		RunID: uuid.New(),
		Outcomes: []settlement.Outcome{
			{
				Reference: "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
				Status:    settlement.StatusConfirmed,
				Accounts:  []solana.PublicKey{randomKey(t), randomKey(t)},
				Rent:      4_078_560,
			},
			{
				Reference: "custom program error: 0x2",
				Status:    settlement.StatusErrored,
				Reason:    settlement.ReasonProgram,
				Code:      &code,
				Accounts:  []solana.PublicKey{randomKey(t)},
				Rent:      2_039_280,
			},
		},
	}
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	rep := testReport(t)

	require.NoError(t, Write(dir, rep))

	res, err := Read(dir, rep.RunID)
	require.NoError(t, err)
	require.Equal(t, rep.Outcomes, res)

	f, err := os.Open(filepath.Join(dir, rep.RunID.String()+"-outcomes.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		csvHeader,
		{
			rep.Outcomes[0].Reference, "confirmed", "",
			rep.Outcomes[0].Accounts[0].String() + " " + rep.Outcomes[0].Accounts[1].String(),
			"4078560",
		},
		{
			rep.Outcomes[1].Reference, "error", "program",
			rep.Outcomes[1].Accounts[0].String(),
			"2039280",
		},
	}, recs)

	t.Run("exists", func(t *testing.T) {
		require.ErrorIs(t, Write(dir, rep), os.ErrExist)
	})
}

func TestIterateReports(t *testing.T) {
	dir := t.TempDir()

	var runs []uuid.UUID
	for range 3 {
		rep := testReport(t)
		require.NoError(t, Write(dir, rep))
		runs = append(runs, rep.RunID)
	}

	var res []uuid.UUID
	require.NoError(t, IterateReports(dir, func(run uuid.UUID) {
		res = append(res, run)
	}))
	require.ElementsMatch(t, runs, res)

	t.Run("missing dir", func(t *testing.T) {
		require.NoError(t, IterateReports(filepath.Join(dir, "none"), func(uuid.UUID) {
			t.Fatal("unexpected report")
		}))
	})

	t.Run("empty run", func(t *testing.T) {
		rep := settlement.Report{RunID: uuid.New()}
		require.NoError(t, Write(dir, rep))

		res, err := Read(dir, rep.RunID)
		require.NoError(t, err)
		require.Empty(t, res)
	})
}
