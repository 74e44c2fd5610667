package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
	"github.com/zera-labs/janitor/common"
	"github.com/zera-labs/janitor/contracts/janitor"
	"github.com/zera-labs/janitor/internal/ledger"
	"github.com/zera-labs/janitor/scanner"
	"github.com/zera-labs/janitor/settlement"
	"github.com/zera-labs/janitor/wallet"
)

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run a settlement against an in-process ledger",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "accounts",
				Usage: "Number of empty token accounts",
				Value: 60,
			},
			&cli.IntFlag{
				Name:  "funded",
				Usage: "Number of token accounts holding tokens",
				Value: 3,
			},
			&cli.BoolFlag{
				Name:  "persist",
				Usage: "Store outcomes into the configured history and report directory",
			},
		},
		Action: simulateAction,
	}
}

func randomKey() (solana.PublicKey, error) {
	k, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return k.PublicKey(), nil
}

// configuredOrRandom parses v or returns a random key if v is empty.
func configuredOrRandom(v string) (solana.PublicKey, error) {
	if v == "" {
		return randomKey()
	}
	return solana.PublicKeyFromBase58(v)
}

func simulateAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	l := ledger.New(log.Named("ledger"))

	program, err := configuredOrRandom(cfg.Program)
	if err != nil {
		return fmt.Errorf("program address: %w", err)
	}
	treasury, err := configuredOrRandom(cfg.Treasury)
	if err != nil {
		return fmt.Errorf("treasury address: %w", err)
	}
	mint, err := randomKey()
	if err != nil {
		return err
	}

	vault, err := janitor.Install(l, program)
	if err != nil {
		return fmt.Errorf("install program: %w", err)
	}

	user, err := solana.NewRandomPrivateKey()
	if err != nil {
		return err
	}
	l.SetAccount(user.PublicKey(), ledger.Account{
		Lamports: common.LamportsPerSOL,
		Owner:    solana.SystemProgramID,
	})

	empty, funded := c.Int("accounts"), c.Int("funded")
	for i := range empty + funded {
		key, err := randomKey()
		if err != nil {
			return err
		}

		var amount uint64
		if i >= empty {
			amount = 1
		}

		err = l.CreateTokenAccount(key, mint, user.PublicKey(), amount, ledger.TokenAccountRent)
		if err != nil {
			return err
		}
	}

	signer, err := wallet.Select(c.Context, log, wallet.Keypair(wallet.KeypairPrm{
		Logger: log,
		Key:    user,
		Sender: l,
	}))
	if err != nil {
		return err
	}

	cs, err := scanner.New(scanner.Prm{Logger: log, Lister: l}).Scan(c.Context, signer.PublicKey())
	if err != nil {
		return err
	}

	sess := settlement.NewSession()
	if err := sess.SetCandidates(cs); err != nil {
		return err
	}
	sess.SelectAll()

	exec, err := settlement.NewExecutor(settlement.Prm{
		Logger:      log,
		Blockhashes: l,
		Signer:      signer,
		Program:     program,
		Treasury:    treasury,
		Reverify:    l,
	})
	if err != nil {
		return err
	}

	_, err = runSettlement(c, cfg, log, exec, sess, c.Bool("persist"))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "user: %s SOL, treasury: %s SOL, vault: %s SOL, candidates left: %d\n",
		common.FormatSOL(l.Lamports(user.PublicKey())),
		common.FormatSOL(l.Lamports(treasury)),
		common.FormatSOL(l.Lamports(vault)),
		len(sess.Candidates()))

	return nil
}
