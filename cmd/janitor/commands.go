package main

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/zera-labs/janitor/common"
	"github.com/zera-labs/janitor/config"
	"github.com/zera-labs/janitor/history"
	rpcjanitor "github.com/zera-labs/janitor/rpc/janitor"
	"github.com/zera-labs/janitor/scanner"
	"github.com/zera-labs/janitor/settlement"
	"github.com/zera-labs/janitor/wallet"
	"go.uber.org/zap"
)

// privateKeyEnv holds a base58 private key used when no keypair file is
// configured.
const privateKeyEnv = "JANITOR_PRIVATE_KEY"

// setup returns settings and the logger of the command. The logger must be
// synced by the caller.
func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := settings(c)
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cfg.Logger.Level)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func vaultCommand() *cli.Command {
	return &cli.Command{
		Name:  "vault",
		Usage: "Print the vault address of the program",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "balance",
				Usage: "Also request the vault balance",
			},
		},
		Action: vaultAction,
	}
}

func vaultAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	program, err := cfg.ProgramKey()
	if err != nil {
		return err
	}

	vault, err := rpcjanitor.VaultAddress(program)
	if err != nil {
		return err
	}

	if !c.Bool("balance") {
		fmt.Fprintln(c.App.Writer, vault)
		return nil
	}

	client := rpc.New(cfg.RPC.Endpoint)
	defer func() { _ = client.Close() }()

	bal, err := client.GetBalance(c.Context, vault, cfg.RPC.Commitment)
	if err != nil {
		return fmt.Errorf("get vault balance: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "%s %s\n", vault, common.FormatSOL(bal.Value))

	return nil
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "List empty token accounts of the user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "owner",
				Usage: "Owner to scan instead of the configured wallet",
			},
		},
		Action: scanAction,
	}
}

func scanAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var owner solana.PublicKey

	if s := c.String("owner"); s != "" {
		owner, err = solana.PublicKeyFromBase58(s)
		if err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
	} else {
		signer, err := wallet.Select(c.Context, log, providers(cfg, wallet.KeypairPrm{Logger: log})...)
		if err != nil {
			return err
		}
		owner = signer.PublicKey()
	}

	client := rpc.New(cfg.RPC.Endpoint)
	defer func() { _ = client.Close() }()

	cs, err := scanner.New(scanner.Prm{
		Logger:     log,
		Lister:     client,
		Commitment: cfg.RPC.Commitment,
	}).Scan(c.Context, owner)
	if err != nil {
		return err
	}

	printCandidates(c.App.Writer, cs)

	est, err := settlement.EstimateOf(cs)
	if err != nil {
		return err
	}

	printEstimate(c.App.Writer, est)

	return nil
}

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Close empty token accounts of the wallet and reclaim their rent",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Close at most this number of accounts (0 means all)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Only print the estimate",
			},
			&cli.BoolFlag{
				Name:  "reverify",
				Usage: "Keep candidates whose balance is still non-zero after the run",
			},
		},
		Action: cleanAction,
	}
}

func cleanAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	program, err := cfg.ProgramKey()
	if err != nil {
		return err
	}
	treasury, err := cfg.TreasuryKey()
	if err != nil {
		return err
	}

	client := rpc.New(cfg.RPC.Endpoint)
	defer func() { _ = client.Close() }()

	signer, err := wallet.Select(c.Context, log, providers(cfg, wallet.KeypairPrm{
		Logger:  log,
		Sender:  client,
		Options: rpc.TransactionOpts{PreflightCommitment: cfg.RPC.Commitment},
	})...)
	if err != nil {
		return err
	}

	cs, err := scanner.New(scanner.Prm{
		Logger:     log,
		Lister:     client,
		Commitment: cfg.RPC.Commitment,
	}).Scan(c.Context, signer.PublicKey())
	if err != nil {
		return err
	}

	sess := settlement.NewSession()
	if err := sess.SetCandidates(cs); err != nil {
		return err
	}

	if limit := c.Int("limit"); limit > 0 && limit < len(cs) {
		for i := range limit {
			if err := sess.Toggle(i); err != nil {
				return err
			}
		}
	} else {
		sess.SelectAll()
	}

	if c.Bool("dry-run") {
		est, err := sess.Estimate()
		if err != nil {
			return err
		}
		printEstimate(c.App.Writer, est)
		return nil
	}

	prm := settlement.Prm{
		Logger:      log,
		Blockhashes: client,
		Signer:      signer,
		Program:     program,
		Treasury:    treasury,
		Commitment:  cfg.RPC.Commitment,
	}
	if c.Bool("reverify") {
		prm.Reverify = client
	}

	exec, err := settlement.NewExecutor(prm)
	if err != nil {
		return err
	}

	_, err = runSettlement(c, cfg, log, exec, sess, true)
	return err
}

// providers returns wallet providers in the order they are tried: the
// keygen file, then the key from the environment.
func providers(cfg *config.Config, prm wallet.KeypairPrm) []wallet.Provider {
	var res []wallet.Provider

	if cfg.Wallet.Keypair != "" {
		res = append(res, wallet.KeygenFile(cfg.Wallet.Keypair, prm))
	}

	if s := os.Getenv(privateKeyEnv); s != "" {
		key, err := solana.PrivateKeyFromBase58(s)
		if err == nil {
			prm.Key = key
		}
		res = append(res, wallet.Keypair(prm))
	}

	return res
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print stored outcomes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "run",
				Usage: "Print outcomes of the given run only",
			},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var recs []history.Record

	if r := c.String("run"); r != "" {
		run, err := uuid.Parse(r)
		if err != nil {
			return fmt.Errorf("invalid run ID: %w", err)
		}
		recs, err = s.Run(run)
		if err != nil {
			return err
		}
	} else {
		recs, err = s.List()
		if err != nil {
			return err
		}
	}

	printHistory(c.App.Writer, recs)

	return nil
}
