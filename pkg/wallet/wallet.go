// Package wallet loads the local fuego credential files.
//
// Two files live under the wallet directory (default ~/.fuego):
//
//	wallet.json        {privateKey, address, network}, the signing credential
//	wallet-config.json {walletAddress, network, createdAt, version}, an
//	                   address-only companion written by newer wallet clients
package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	ErrNoWallet      = errors.New("no wallet found")
	ErrCorruptWallet = errors.New("invalid wallet file")
	ErrShortKey      = errors.New("wallet private key must be at least 32 bytes")
)

// Store is the signing credential persisted in wallet.json.
type Store struct {
	PrivateKey []byte `json:"privateKey"`
	Address    string `json:"address"`
	Network    string `json:"network"`
}

// Config is the address-only record persisted in wallet-config.json.
type Config struct {
	WalletAddress string `json:"walletAddress"`
	Network       string `json:"network"`
	CreatedAt     int64  `json:"createdAt"`
	Version       string `json:"version"`
}

// DefaultDir returns the default wallet directory, ~/.fuego.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	return filepath.Join(home, ".fuego")
}

// Load reads and validates wallet.json from dir.
func Load(dir string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "wallet.json"))
	if err != nil {
		return nil, ErrNoWallet
	}

	var store Store
	if err := json.Unmarshal(raw, &store); err != nil {
		return nil, errors.Wrap(ErrCorruptWallet, err.Error())
	}

	if len(store.PrivateKey) < 32 {
		return nil, ErrShortKey
	}

	return &store, nil
}

// Keypair derives the signing key from the stored credential. Only the first
// 32 bytes are used as the seed, so both 32-byte seeds and 64-byte expanded
// keys are accepted.
func (s *Store) Keypair() ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(s.PrivateKey[:32])
}

// LoadAddress resolves the wallet's public address without requiring the
// signing credential. wallet-config.json takes precedence; wallet.json is the
// legacy fallback. The returned source is "wallet-config" or "wallet".
func LoadAddress(dir string) (address, network, source string, err error) {
	raw, readErr := os.ReadFile(filepath.Join(dir, "wallet-config.json"))
	if readErr == nil {
		var config Config
		if json.Unmarshal(raw, &config) == nil {
			return config.WalletAddress, config.Network, "wallet-config", nil
		}
	}

	raw, readErr = os.ReadFile(filepath.Join(dir, "wallet.json"))
	if readErr == nil {
		var store Store
		if json.Unmarshal(raw, &store) == nil {
			return store.Address, store.Network, "wallet", nil
		}
	}

	return "", "", "", ErrNoWallet
}
