// Janitor reclaims rent of empty token accounts through the Janitor program.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/zera-labs/janitor/common"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "janitor",
		Usage:   "Reclaim rent of empty token accounts",
		Version: common.VersionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				EnvVars: []string{"JANITOR_CONFIG"},
			},
			&cli.StringFlag{
				Name:  flagRPC,
				Usage: "Solana RPC endpoint",
			},
			&cli.StringFlag{
				Name:  flagCommitment,
				Usage: "Commitment of requested state (processed, confirmed, finalized)",
			},
			&cli.StringFlag{
				Name:  flagProgram,
				Usage: "Address of the Janitor program",
			},
			&cli.StringFlag{
				Name:  flagTreasury,
				Usage: "Address of the fee treasury",
			},
			&cli.StringFlag{
				Name:    flagKeypair,
				Aliases: []string{"k"},
				Usage:   "Path to the solana-keygen keypair file of the user",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "Logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			vaultCommand(),
			scanCommand(),
			cleanCommand(),
			simulateCommand(),
			historyCommand(),
		},
	}
}
