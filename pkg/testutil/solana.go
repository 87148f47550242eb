package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/require"

	"github.com/fuego-wallet/fuego-server/pkg/solana"
)

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

func GenerateSolanaAddress(t *testing.T) string {
	p, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return base58.Encode(p)
}

// StubClient is a canned-response solana.Client for handler and builder
// tests.
type StubClient struct {
	Blockhash    solana.Blockhash
	BlockhashErr error

	Balance    uint64
	BalanceErr error

	TokenBalance    solana.TokenAmount
	TokenBalanceErr error

	Signatures    []solana.SignatureInfo
	SignaturesErr error

	Submitted    [][]byte
	SubmitResult solana.Signature
	SubmitErr    error
}

func (c *StubClient) GetLatestBlockhash() (solana.Blockhash, error) {
	return c.Blockhash, c.BlockhashErr
}

func (c *StubClient) GetBalance(account ed25519.PublicKey) (uint64, error) {
	return c.Balance, c.BalanceErr
}

func (c *StubClient) GetTokenAccountBalance(account ed25519.PublicKey, commitment solana.Commitment) (solana.TokenAmount, error) {
	return c.TokenBalance, c.TokenBalanceErr
}

func (c *StubClient) GetSignaturesForAddress(account ed25519.PublicKey, commitment solana.Commitment, limit uint64) ([]solana.SignatureInfo, error) {
	return c.Signatures, c.SignaturesErr
}

func (c *StubClient) SubmitRawTransaction(txn []byte, commitment solana.Commitment) (solana.Signature, error) {
	c.Submitted = append(c.Submitted, txn)
	return c.SubmitResult, c.SubmitErr
}
