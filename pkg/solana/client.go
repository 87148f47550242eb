package solana

import (
	"crypto/ed25519"
	"encoding/json"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

var (
	CommitmentProcessed = Commitment{Commitment: "processed"}
	CommitmentConfirmed = Commitment{Commitment: "confirmed"}
	CommitmentFinalized = Commitment{Commitment: "finalized"}
)

var (
	ErrNoBalance = errors.New("no balance")
)

// invalidParamCode is returned by RPC nodes when the queried account does not
// exist (e.g. a token account that was never created).
const invalidParamCode = -32602

// TokenAmount is the raw token balance value reported by the RPC node.
type TokenAmount struct {
	Amount         string `json:"amount"`
	Decimals       uint64 `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
}

// SignatureInfo is a single entry of a getSignaturesForAddress response,
// passed through to callers without local interpretation.
type SignatureInfo struct {
	Signature string          `json:"signature"`
	Slot      uint64          `json:"slot"`
	Err       json.RawMessage `json:"err,omitempty"`
	Memo      *string         `json:"memo"`
	BlockTime *int64          `json:"blockTime"`
}

// Client provides an interaction with the Solana JSON RPC API. Each call is a
// single attempt; failures surface immediately to the caller with no retry.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetLatestBlockhash() (Blockhash, error)
	GetBalance(account ed25519.PublicKey) (uint64, error)
	GetTokenAccountBalance(account ed25519.PublicKey, commitment Commitment) (TokenAmount, error)
	GetSignaturesForAddress(account ed25519.PublicKey, commitment Commitment, limit uint64) ([]SignatureInfo, error)
	SubmitRawTransaction(txn []byte, commitment Commitment) (Signature, error)
}

type client struct {
	log    *logrus.Entry
	client jsonrpc.RPCClient
}

// New returns a client using the specified endpoint.
func New(endpoint string) Client {
	return &client{
		log:    logrus.StandardLogger().WithField("type", "solana/client"),
		client: jsonrpc.NewClient(endpoint),
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	return c.client.CallFor(out, method, params...)
}

func (c *client) GetLatestBlockhash() (hash Blockhash, err error) {
	type response struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}

	var resp response
	if err := c.call(&resp, "getLatestBlockhash"); err != nil {
		return hash, errors.Wrap(err, "getLatestBlockhash() failed to send request")
	}

	hashBytes, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 encoded hash in response")
	}

	copy(hash[:], hashBytes)
	return hash, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value interface{} `json:"value"`
	}
	if err := c.call(&resp, "getBalance", base58.Encode(account), CommitmentConfirmed); err != nil {
		if rpcErr, ok := err.(*jsonrpc.RPCError); ok && rpcErr.Code == invalidParamCode {
			return 0, ErrNoBalance
		}

		return 0, errors.Wrap(err, "getBalance() failed to send request")
	}

	if balance, ok := resp.Value.(float64); ok {
		return uint64(balance), nil
	}

	return 0, errors.Errorf("invalid value in response")
}

func (c *client) GetTokenAccountBalance(account ed25519.PublicKey, commitment Commitment) (TokenAmount, error) {
	var resp struct {
		Value TokenAmount `json:"value"`
	}
	if err := c.call(&resp, "getTokenAccountBalance", base58.Encode(account), commitment); err != nil {
		if rpcErr, ok := err.(*jsonrpc.RPCError); ok && rpcErr.Code == invalidParamCode {
			return TokenAmount{}, ErrNoBalance
		}

		return TokenAmount{}, errors.Wrap(err, "getTokenAccountBalance() failed to send request")
	}

	return resp.Value, nil
}

func (c *client) GetSignaturesForAddress(account ed25519.PublicKey, commitment Commitment, limit uint64) ([]SignatureInfo, error) {
	req := struct {
		Commitment string  `json:"commitment"`
		Limit      *uint64 `json:"limit,omitempty"`
	}{
		Commitment: commitment.Commitment,
	}
	if limit > 0 {
		req.Limit = &limit
	}

	var resp []SignatureInfo
	if err := c.call(&resp, "getSignaturesForAddress", base58.Encode(account), req); err != nil {
		return nil, errors.Wrap(err, "getSignaturesForAddress() failed to send request")
	}

	return resp, nil
}

// SubmitRawTransaction forwards an already signed and serialized transaction
// byte-for-byte to the network.
func (c *client) SubmitRawTransaction(txn []byte, commitment Commitment) (Signature, error) {
	config := struct {
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
	}{
		SkipPreflight:       false,
		PreflightCommitment: commitment.Commitment,
	}

	var sigStr string
	if err := c.call(&sigStr, "sendTransaction", base58.Encode(txn), config); err != nil {
		return Signature{}, errors.Wrap(err, "sendTransaction() failed to send request")
	}

	sigBytes, err := base58.Decode(sigStr)
	if err != nil {
		return Signature{}, errors.Wrap(err, "invalid signature in response")
	}

	var sig Signature
	copy(sig[:], sigBytes)
	return sig, nil
}
