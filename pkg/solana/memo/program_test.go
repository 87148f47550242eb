package memo

import (
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuego-wallet/fuego-server/pkg/solana"
	"github.com/fuego-wallet/fuego-server/pkg/testutil"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr", base58.Encode(ProgramKey))
}

func TestInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	instruction := Instruction("hello-memo", keys[1])
	assert.Equal(t, ProgramKey, instruction.Program)
	require.Len(t, instruction.Accounts, 1)
	assert.Equal(t, keys[1], instruction.Accounts[0].PublicKey)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.False(t, instruction.Accounts[0].IsWritable)

	txn := solana.NewTransaction(keys[0], instruction)

	decompiled, err := DecompileMemo(txn.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello-memo"), decompiled.Data)
}

func TestDecompileMemo_Invalid(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	txn := solana.NewTransaction(
		keys[0],
		solana.NewInstruction(keys[1], []byte("not-a-memo")),
	)

	_, err := DecompileMemo(txn.Message, 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = DecompileMemo(txn.Message, 3)
	assert.Error(t, err)
}
