package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Provider is a wallet the user may connect.
type Provider struct {
	// Name of the provider for logs.
	Name string

	// Connect returns the signer of the connected wallet.
	Connect func(ctx context.Context) (WalletSigner, error)
}

// Select connects to the first provider that succeeds. Providers are tried
// once each in the given order.
func Select(ctx context.Context, log *zap.Logger, providers ...Provider) (WalletSigner, error) {
	var errs []error

	for _, p := range providers {
		s, err := p.Connect(ctx)
		if err != nil {
			log.Info("wallet provider unavailable, trying next",
				zap.String("provider", p.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}

		log.Info("wallet connected",
			zap.String("provider", p.Name), zap.Stringer("account", s.PublicKey()))

		return s, nil
	}

	if len(errs) == 0 {
		return nil, ErrNoProvider
	}
	return nil, fmt.Errorf("%w: %w", ErrNoProvider, errors.Join(errs...))
}

// KeygenFile returns a provider loading the key from a keygen JSON file.
func KeygenFile(path string, prm KeypairPrm) Provider {
	return Provider{
		Name: "keygen file",
		Connect: func(context.Context) (WalletSigner, error) {
			key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
			if err != nil {
				return nil, err
			}

			prm.Key = key
			return NewKeypairSigner(prm), nil
		},
	}
}

// Keypair returns a provider of an in-memory key.
func Keypair(prm KeypairPrm) Provider {
	return Provider{
		Name: "keypair",
		Connect: func(context.Context) (WalletSigner, error) {
			if _, err := solana.ValidatePrivateKey(prm.Key); err != nil {
				return nil, err
			}
			return NewKeypairSigner(prm), nil
		},
	}
}
