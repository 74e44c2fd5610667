// Package config describes the configuration file of the janitor CLI.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"gopkg.in/yaml.v3"
)

// Config is the janitor CLI configuration.
type Config struct {
	RPC struct {
		Endpoint   string             `yaml:"endpoint"`
		Commitment rpc.CommitmentType `yaml:"commitment"`
	} `yaml:"rpc"`

	// Program is the address of the deployed Janitor program.
	Program string `yaml:"program"`
	// Treasury receives the service fee.
	Treasury string `yaml:"treasury"`

	Wallet struct {
		// Keypair is a path to the solana-keygen JSON keypair file.
		Keypair string `yaml:"keypair"`
	} `yaml:"wallet"`

	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`

	Report struct {
		Dir string `yaml:"dir"`
	} `yaml:"report"`

	Metrics struct {
		// Address of the Prometheus endpoint, disabled if empty.
		Address string `yaml:"address"`
	} `yaml:"metrics"`

	Logger struct {
		Level string `yaml:"level"`
	} `yaml:"logger"`
}

// Defaults.
const (
	DefaultEndpoint    = rpc.MainNetBeta_RPC
	DefaultCommitment  = rpc.CommitmentConfirmed
	DefaultHistoryPath = "janitor-history.db"
	DefaultLogLevel    = "info"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := new(Config)
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.RPC.Endpoint == "" {
		c.RPC.Endpoint = DefaultEndpoint
	}
	if c.RPC.Commitment == "" {
		c.RPC.Commitment = DefaultCommitment
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath
	}
	if c.Logger.Level == "" {
		c.Logger.Level = DefaultLogLevel
	}
}

// Load reads the configuration from the YAML file at path. Environment
// variables in the file are expanded. Missing values get defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var c Config

	err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c)
	if err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks the configured values. Empty addresses are allowed since
// commands may get them from flags.
func (c *Config) Validate() error {
	switch c.RPC.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q", c.RPC.Commitment)
	}

	for name, v := range map[string]string{"program": c.Program, "treasury": c.Treasury} {
		if v == "" {
			continue
		}
		if _, err := solana.PublicKeyFromBase58(v); err != nil {
			return fmt.Errorf("invalid %s address: %w", name, err)
		}
	}

	return nil
}

// ProgramKey returns the configured program address.
func (c *Config) ProgramKey() (solana.PublicKey, error) {
	return parseKey("program", c.Program)
}

// TreasuryKey returns the configured treasury address.
func (c *Config) TreasuryKey() (solana.PublicKey, error) {
	return parseKey("treasury", c.Treasury)
}

func parseKey(name, v string) (solana.PublicKey, error) {
	if v == "" {
		return solana.PublicKey{}, errors.New("missing " + name + " address")
	}
	k, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s address: %w", name, err)
	}
	return k, nil
}
