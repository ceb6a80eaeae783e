package app

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/trac-network/tap-authority/keys"
)

// Config is the environment surface of the CLI. The private key never passes
// through flags so it cannot leak into shell history or process listings.
type Config struct {
	PrivateKeyHex string `env:"TAP_PRIVATE_KEY"`
	PublicKeyHex  string `env:"TAP_PUBLIC_KEY"`
}

// loadKeyPair resolves the signing identity from the environment. With no key
// configured it generates an ephemeral one and logs it, which is enough for
// experimenting but useless for publishing real ops.
func loadKeyPair() (*keys.KeyPair, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.PrivateKeyHex == "" {
		kp, err := keys.Generate()
		if err != nil {
			return nil, err
		}
		zap.L().Warn("TAP_PRIVATE_KEY not set, generated ephemeral key pair",
			zap.String("public_key", kp.PublicKeyHex()))
		return kp, nil
	}
	if cfg.PublicKeyHex == "" {
		return nil, fmt.Errorf("TAP_PUBLIC_KEY must be set when TAP_PRIVATE_KEY is")
	}
	return keys.FromHex(cfg.PrivateKeyHex, cfg.PublicKeyHex)
}
