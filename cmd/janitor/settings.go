package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/urfave/cli/v2"
	"github.com/zera-labs/janitor/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	flagConfig     = "config"
	flagRPC        = "rpc"
	flagCommitment = "commitment"
	flagProgram    = "program"
	flagTreasury   = "treasury"
	flagKeypair    = "keypair"
	flagLogLevel   = "log-level"
)

// settings returns the configuration file overridden by the global flags.
func settings(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if p := c.String(flagConfig); p != "" {
		cfg, err = config.Load(p)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if c.IsSet(flagRPC) {
		cfg.RPC.Endpoint = c.String(flagRPC)
	}
	if c.IsSet(flagCommitment) {
		cfg.RPC.Commitment = rpc.CommitmentType(c.String(flagCommitment))
	}
	if c.IsSet(flagProgram) {
		cfg.Program = c.String(flagProgram)
	}
	if c.IsSet(flagTreasury) {
		cfg.Treasury = c.String(flagTreasury)
	}
	if c.IsSet(flagKeypair) {
		cfg.Wallet.Keypair = c.String(flagKeypair)
	}
	if c.IsSet(flagLogLevel) {
		cfg.Logger.Level = c.String(flagLogLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	c := zap.NewProductionConfig()
	c.Level = lvl
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build()
}
