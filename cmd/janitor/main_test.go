package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/zera-labs/janitor/contracts/janitor"
	"github.com/zera-labs/janitor/history"
	"github.com/zera-labs/janitor/report"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"janitor", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestSimulate(t *testing.T) {
	out, err := run(t, "simulate", "--accounts", "30", "--funded", "2")
	require.NoError(t, err)

	require.Contains(t, out, "accounts: 30, transactions: 2")
	require.Contains(t, out, "rent: 0.061178400 SOL, fee: 0.003058920 SOL, payout: 0.058119480 SOL")
	require.Contains(t, out, ": 2 confirmed, 0 errored, 30 removed in ")
	require.Contains(t, out, "user: 1.058119480 SOL, treasury: 0.003058920 SOL, vault: 0.000890880 SOL, candidates left: 0")
}

func TestSimulatePersist(t *testing.T) {
	dir := t.TempDir()
	reports := filepath.Join(dir, "reports")
	db := filepath.Join(dir, "history.db")

	cfg := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("history:\n  path: "+db+"\nreport:\n  dir: "+reports+"\n"), 0600))

	_, err := run(t, "--config", cfg, "simulate", "--accounts", "3", "--funded", "0", "--persist")
	require.NoError(t, err)

	var runs []uuid.UUID
	require.NoError(t, report.IterateReports(reports, func(id uuid.UUID) {
		runs = append(runs, id)
	}))
	require.Len(t, runs, 1)

	outcomes, err := report.Read(reports, runs[0])
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Len(t, outcomes[0].Accounts, 3)

	s, err := history.Open(db)
	require.NoError(t, err)
	recs, err := s.Run(runs[0])
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.Len(t, recs, 1)
	require.Equal(t, outcomes[0], recs[0].Outcome)

	out, err := run(t, "--config", cfg, "history", "--run", runs[0].String())
	require.NoError(t, err)
	require.Contains(t, out, runs[0].String())
	require.Contains(t, out, outcomes[0].Reference)

	_, err = run(t, "--config", cfg, "history", "--run", "nope")
	require.ErrorContains(t, err, "invalid run ID")
}

func TestVault(t *testing.T) {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	program := k.PublicKey()

	vault, _, err := janitor.FindVault(program)
	require.NoError(t, err)

	out, err := run(t, "--program", program.String(), "vault")
	require.NoError(t, err)
	require.Equal(t, vault.String(), strings.TrimSpace(out))

	_, err = run(t, "vault")
	require.ErrorContains(t, err, "missing program address")
}

func TestSettings(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		err  string
	}{
		{name: "commitment", args: []string{"--commitment", "max", "vault"}, err: "invalid commitment"},
		{name: "treasury", args: []string{"--treasury", "xyz", "simulate"}, err: "invalid treasury address"},
		{name: "log level", args: []string{"--log-level", "loud", "vault"}, err: "parse log level"},
		{name: "config", args: []string{"--config", filepath.Join(t.TempDir(), "none.yml"), "vault"}, err: "read config file"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			require.ErrorContains(t, err, tc.err)
		})
	}
}

func TestCleanWithoutWallet(t *testing.T) {
	t.Setenv(privateKeyEnv, "")

	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, err = run(t, "--program", k.PublicKey().String(), "--treasury", k.PublicKey().String(), "--rpc", "http://127.0.0.1:1", "clean")
	require.ErrorContains(t, err, "no wallet provider")
}
