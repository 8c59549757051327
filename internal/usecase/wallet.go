package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// WalletGenerator mints an agent's ephemeral payout credential pair. The
// broker treats the pair as opaque strings.
type WalletGenerator interface {
	Generate() (address, secret string, err error)
}

// SimulatedWalletGenerator returns random hex pairs shaped like on-chain
// credentials. No cryptographic relationship between address and secret.
type SimulatedWalletGenerator struct{}

func (SimulatedWalletGenerator) Generate() (string, string, error) {
	addr := make([]byte, 20)
	if _, err := rand.Read(addr); err != nil {
		return "", "", fmt.Errorf("generate wallet address: %w", err)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", "", fmt.Errorf("generate wallet secret: %w", err)
	}
	return "0x" + hex.EncodeToString(addr), "0x" + hex.EncodeToString(secret), nil
}
