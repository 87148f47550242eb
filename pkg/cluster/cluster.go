// Package cluster maps Solana network names to RPC endpoints, explorer
// links, and CAIP-2 chain tags.
package cluster

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	MainnetBeta = "mainnet-beta"
	Devnet      = "devnet"
	Testnet     = "testnet"
)

// CAIP-2 chain references are the first 32 characters of the cluster's
// genesis hash.
const (
	mainnetGenesisRef = "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	devnetGenesisRef  = "EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
	testnetGenesisRef = "4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z"
)

var ErrUnsupportedNetwork = errors.New("unsupported network")

// RPCEndpoint returns the public RPC endpoint for a cluster by name.
func RPCEndpoint(network string) string {
	return fmt.Sprintf("https://api.%s.solana.com", network)
}

// ExplorerTransactionURL returns the explorer.solana.com link for a
// transaction signature on the given cluster.
func ExplorerTransactionURL(signature, network string) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=%s", signature, network)
}

// ChainTag returns the CAIP-2 chain identifier (solana:<genesis ref>) for a
// cluster name.
func ChainTag(network string) (string, error) {
	switch network {
	case MainnetBeta:
		return "solana:" + mainnetGenesisRef, nil
	case Devnet:
		return "solana:" + devnetGenesisRef, nil
	case Testnet:
		return "solana:" + testnetGenesisRef, nil
	default:
		return "", errors.Wrap(ErrUnsupportedNetwork, network)
	}
}

// FromTag resolves an x402 network tag to a cluster name. Tags may be plain
// cluster names ("mainnet-beta"), the bare chain name ("solana", meaning
// mainnet), or CAIP-2 identifiers ("solana:<genesis ref>").
func FromTag(tag string) (string, bool) {
	switch tag {
	case MainnetBeta, "solana", "solana-mainnet":
		return MainnetBeta, true
	case Devnet, "solana-devnet":
		return Devnet, true
	case Testnet, "solana-testnet":
		return Testnet, true
	}

	if ref, ok := strings.CutPrefix(tag, "solana:"); ok {
		switch ref {
		case mainnetGenesisRef:
			return MainnetBeta, true
		case devnetGenesisRef:
			return Devnet, true
		case testnetGenesisRef:
			return Testnet, true
		}
	}

	return "", false
}
