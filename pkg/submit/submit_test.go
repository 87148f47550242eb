package submit

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuego-wallet/fuego-server/pkg/solana"
	"github.com/fuego-wallet/fuego-server/pkg/solana/memo"
	"github.com/fuego-wallet/fuego-server/pkg/testutil"
)

func signedLegacyTransaction(t *testing.T) []byte {
	payer := testutil.GenerateSolanaKeypair(t)

	txn := solana.NewTransaction(
		payer.Public().(ed25519.PublicKey),
		memo.Instruction("hello"),
	)
	require.NoError(t, txn.Sign(payer))

	return txn.Marshal()
}

func versionedFromLegacy(t *testing.T, legacy []byte) []byte {
	// A v0 transaction is the legacy layout with a version marker ahead of
	// the message and an empty lookup-table section at the end.
	var txn solana.Transaction
	require.NoError(t, txn.Unmarshal(legacy))

	sigSection := 1 + 64*len(txn.Signatures)
	out := make([]byte, 0, len(legacy)+2)
	out = append(out, legacy[:sigSection]...)
	out = append(out, 0x80) // version marker for v0
	out = append(out, legacy[sigSection:]...)
	out = append(out, 0) // no address table lookups
	return out
}

func newSubmitter(stub *testutil.StubClient) *Submitter {
	return NewSubmitter(func(network string) solana.Client {
		return stub
	})
}

func TestSubmit_Legacy(t *testing.T) {
	var sig solana.Signature
	copy(sig[:], []byte("someFakeSignature"))
	stub := &testutil.StubClient{SubmitResult: sig}

	raw := signedLegacyTransaction(t)

	result, err := newSubmitter(stub).Submit("devnet", FormatLegacy, base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)

	assert.Equal(t, sig.ToBase58(), result.Signature)
	assert.Equal(t, "https://explorer.solana.com/tx/"+sig.ToBase58()+"?cluster=devnet", result.ExplorerLink)

	// The original bytes are forwarded untouched.
	require.Len(t, stub.Submitted, 1)
	assert.Equal(t, raw, stub.Submitted[0])
}

func TestSubmit_Versioned(t *testing.T) {
	stub := &testutil.StubClient{}

	raw := versionedFromLegacy(t, signedLegacyTransaction(t))

	result, err := newSubmitter(stub).Submit("mainnet-beta", FormatVersioned, base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Signature)

	require.Len(t, stub.Submitted, 1)
	assert.Equal(t, raw, stub.Submitted[0])
}

func TestSubmit_InvalidBase64(t *testing.T) {
	_, err := newSubmitter(&testutil.StubClient{}).Submit("devnet", FormatLegacy, "&&&not-base64&&&")
	assert.Equal(t, ErrInvalidBase64, err)
}

func TestSubmit_CrossFormatRejected(t *testing.T) {
	stub := &testutil.StubClient{}
	submitter := newSubmitter(stub)

	legacy := signedLegacyTransaction(t)
	versioned := versionedFromLegacy(t, legacy)

	_, err := submitter.Submit("devnet", FormatVersioned, base64.StdEncoding.EncodeToString(legacy))
	assert.Equal(t, ErrMalformedVersion, err)

	_, err = submitter.Submit("devnet", FormatLegacy, base64.StdEncoding.EncodeToString(versioned))
	assert.Equal(t, ErrMalformedLegacy, err)

	// Nothing reached the network.
	assert.Empty(t, stub.Submitted)
}

func TestSubmit_TooLarge(t *testing.T) {
	stub := &testutil.StubClient{}

	// Pad a valid transaction past the packet size limit.
	raw := signedLegacyTransaction(t)
	padded := append(raw, make([]byte, solana.MaxTransactionSize)...)

	_, err := newSubmitter(stub).Submit("devnet", FormatLegacy, base64.StdEncoding.EncodeToString(padded))
	assert.Equal(t, ErrTransactionTooBig, err)
	assert.Empty(t, stub.Submitted)
}

func TestSubmit_Garbage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})

	_, err := newSubmitter(&testutil.StubClient{}).Submit("devnet", FormatLegacy, encoded)
	assert.Equal(t, ErrMalformedLegacy, err)

	_, err = newSubmitter(&testutil.StubClient{}).Submit("devnet", FormatVersioned, encoded)
	assert.Equal(t, ErrMalformedVersion, err)
}
