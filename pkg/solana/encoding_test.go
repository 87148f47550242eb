package solana

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedLegacy(t *testing.T) (Transaction, ed25519.PrivateKey) {
	keys := generateKeys(t, 3)
	payer, program, dest := keys[0], keys[1], keys[2]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{10, 20, 30},
			NewAccountMeta(public(payer), true),
			NewAccountMeta(public(dest), false),
		),
	)

	var bh Blockhash
	copy(bh[:], bytes.Repeat([]byte{3}, 32))
	tx.SetBlockhash(bh)

	require.NoError(t, tx.Sign(payer))
	return tx, payer
}

func TestMarshal_LegacyRoundTrip(t *testing.T) {
	tx, payer := signedLegacy(t)
	raw := tx.Marshal()

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(raw))

	assert.Equal(t, MessageVersionLegacy, decoded.Message.Version())
	assert.Equal(t, tx.Message.Header, decoded.Message.Header)
	assert.Equal(t, tx.Message.Accounts, decoded.Message.Accounts)
	assert.Equal(t, tx.Message.RecentBlockhash, decoded.Message.RecentBlockhash)
	assert.Equal(t, tx.Message.Instructions, decoded.Message.Instructions)
	assert.Equal(t, tx.Signatures, decoded.Signatures)
	assert.True(t, ed25519.Verify(public(payer), decoded.Message.Marshal(), decoded.Signatures[0][:]))

	// Re-marshal must be byte identical.
	assert.Equal(t, raw, decoded.Marshal())
}

func TestMarshal_VersionedRoundTrip(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, program, table := keys[0], keys[1], keys[2]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{1, 2},
			NewAccountMeta(public(payer), true),
		),
	)
	tx.Message.version = MessageVersion0
	tx.Message.AddressTableLookups = []MessageAddressTableLookup{
		{
			PublicKey:       public(table),
			WritableIndexes: []byte{0, 2},
			ReadonlyIndexes: []byte{1},
		},
	}

	var bh Blockhash
	copy(bh[:], bytes.Repeat([]byte{9}, 32))
	tx.SetBlockhash(bh)
	require.NoError(t, tx.Sign(payer))

	raw := tx.Marshal()

	var decoded Transaction
	require.NoError(t, decoded.UnmarshalVersioned(raw))

	assert.Equal(t, MessageVersion0, decoded.Message.Version())
	assert.Equal(t, tx.Message.Header, decoded.Message.Header)
	assert.Equal(t, tx.Message.Accounts, decoded.Message.Accounts)
	assert.Equal(t, tx.Message.Instructions, decoded.Message.Instructions)
	assert.Equal(t, tx.Message.AddressTableLookups, decoded.Message.AddressTableLookups)
	assert.Equal(t, tx.Signatures, decoded.Signatures)
	assert.Equal(t, raw, decoded.Marshal())
}

func TestMarshal_VersionMarker(t *testing.T) {
	tx, _ := signedLegacy(t)

	legacy := tx.Marshal()
	sigSection := 1 + len(tx.Signatures)*ed25519.SignatureSize
	assert.True(t, legacy[sigSection] <= versionMarkerBase)

	tx.Message.version = MessageVersion0
	versioned := tx.Marshal()
	assert.Equal(t, byte(0x80), versioned[sigSection])
}

func TestUnmarshal_CrossFormatRejected(t *testing.T) {
	tx, _ := signedLegacy(t)
	legacy := tx.Marshal()

	var decoded Transaction
	err := decoded.UnmarshalVersioned(legacy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected legacy message")

	tx.Message.version = MessageVersion0
	versioned := tx.Marshal()

	err = decoded.Unmarshal(versioned)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected versioned message")
}

func TestUnmarshal_UnknownVersion(t *testing.T) {
	tx, _ := signedLegacy(t)
	tx.Message.version = MessageVersion0
	raw := tx.Marshal()

	// Bump the marker to wire version 1; the reported number matches the
	// wire version, not the marker byte.
	sigSection := 1 + len(tx.Signatures)*ed25519.SignatureSize
	require.Equal(t, byte(0x80), raw[sigSection])
	raw[sigSection] = 0x81

	var decoded Transaction
	err := decoded.UnmarshalVersioned(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported message version: 1")
}

func TestUnmarshal_Truncated(t *testing.T) {
	tx, _ := signedLegacy(t)
	raw := tx.Marshal()

	var decoded Transaction
	assert.Error(t, decoded.Unmarshal(raw[:len(raw)/2]))
	assert.Error(t, decoded.Unmarshal(nil))
}

func TestUnmarshal_BadIndices(t *testing.T) {
	tx, _ := signedLegacy(t)
	tx.Message.Instructions[0].ProgramIndex = 99
	raw := tx.Marshal()

	var decoded Transaction
	err := decoded.Unmarshal(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program index out of range")
}

func TestMessageVersion_String(t *testing.T) {
	assert.Equal(t, "legacy", MessageVersionLegacy.String())
	assert.Equal(t, "v0", MessageVersion0.String())
	assert.Equal(t, "unknown", MessageVersion(7).String())
}
