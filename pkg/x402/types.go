// Package x402 implements the client side of the x402 conditional-payment
// protocol: detecting a 402 challenge, building and signing the requested
// payment, and retrying the original request with proof of payment attached.
package x402

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	// ChallengeHeader carries the base64 JSON payment requirements on a
	// 402 response.
	ChallengeHeader = "payment-required"

	// PaymentHeader carries the base64 JSON payment payload on the retried
	// request.
	PaymentHeader = "X-PAYMENT-SIGNATURE"

	// Version is the x402 protocol version spoken by this client.
	Version = 2

	// SchemeExact pays the exact amount named by the requirement.
	SchemeExact = "exact"
)

var (
	ErrNoChallengeHeader = errors.New("no payment-required header in 402 response")
	ErrNoRequirements    = errors.New("no payment options in x402 challenge")
)

// Requirement is a single entry of a challenge's accepts list.
type Requirement struct {
	Scheme  string `json:"scheme"`
	Network string `json:"network"`

	// Amount is the payment size in atomic units of the asset.
	Amount string `json:"amount"`

	// Asset is the mint of the token the payment must be made in.
	Asset string `json:"asset"`

	// PayTo is the recipient wallet.
	PayTo string `json:"payTo"`

	MaxTimeoutSeconds int `json:"maxTimeoutSeconds,omitempty"`

	// Extra carries scheme-specific details. For Solana exact payments the
	// facilitator's fee payer (and occasionally a blockhash) appear here.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// FeePayer returns the facilitator-provided fee payer, if any.
func (r Requirement) FeePayer() string {
	return r.extraString("feePayer")
}

// Blockhash returns the facilitator-provided blockhash, if any.
func (r Requirement) Blockhash() string {
	return r.extraString("blockhash")
}

// Decimals returns the asset decimal count named by the requirement,
// defaulting to 6 (the USDC/USDT convention) when absent.
func (r Requirement) Decimals() int {
	if v, ok := r.Extra["decimals"].(float64); ok {
		return int(v)
	}
	return 6
}

func (r Requirement) extraString(key string) string {
	if v, ok := r.Extra[key].(string); ok {
		return v
	}
	return ""
}

// Challenge is the decoded payment-required header of a 402 response.
type Challenge struct {
	X402Version int           `json:"x402Version"`
	Accepts     []Requirement `json:"accepts"`
	Error       string        `json:"error,omitempty"`
}

// ParseChallenge decodes the base64 JSON challenge header.
func ParseChallenge(header string) (*Challenge, error) {
	if header == "" {
		return nil, ErrNoChallengeHeader
	}

	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, errors.Wrap(err, "invalid challenge header encoding")
	}

	var challenge Challenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return nil, errors.Wrap(err, "invalid challenge header json")
	}

	if len(challenge.Accepts) == 0 {
		return nil, ErrNoRequirements
	}

	return &challenge, nil
}

// Payload is the payment proof attached to the retried request.
type Payload struct {
	X402Version int    `json:"x402Version"`
	Scheme      string `json:"scheme"`
	Network     string `json:"network"`
	Payload     struct {
		Transaction string `json:"transaction"`
	} `json:"payload"`
}

// EncodePayload builds the base64 JSON value of the payment header.
func EncodePayload(network, signedTransaction string) (string, error) {
	payload := Payload{
		X402Version: Version,
		Scheme:      SchemeExact,
		Network:     network,
	}
	payload.Payload.Transaction = signedTransaction

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal payment payload")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
