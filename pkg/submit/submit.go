// Package submit broadcasts signed transactions handed back by wallet
// clients.
package submit

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fuego-wallet/fuego-server/pkg/cluster"
	"github.com/fuego-wallet/fuego-server/pkg/solana"
)

// Format selects the wire format a submitted transaction must decode as.
// Cross-format submissions are rejected rather than coerced.
type Format int

const (
	FormatLegacy Format = iota
	FormatVersioned
)

var (
	ErrInvalidBase64     = errors.New("Failed to decode transaction - invalid base64")
	ErrMalformedLegacy   = errors.New("Failed to deserialize transaction")
	ErrMalformedVersion  = errors.New("Failed to deserialize VersionedTransaction - ensure this is a v0 transaction format")
	ErrTransactionTooBig = errors.New("Transaction exceeds the maximum serialized size")
)

// Result reports a broadcast transaction.
type Result struct {
	Signature    string
	ExplorerLink string
}

// Submitter decodes, validates, and broadcasts signed transactions.
type Submitter struct {
	log     *logrus.Entry
	clients func(network string) solana.Client
}

func NewSubmitter(clients func(network string) solana.Client) *Submitter {
	return &Submitter{
		log:     logrus.StandardLogger().WithField("type", "submit/submitter"),
		clients: clients,
	}
}

// Submit validates that the base64 payload decodes as the requested wire
// format, then broadcasts the original bytes untouched. Re-serialization is
// deliberately avoided so signatures stay valid even for transaction shapes
// this server doesn't model.
func (s *Submitter) Submit(network string, format Format, encoded string) (*Result, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidBase64
	}
	if len(raw) > solana.MaxTransactionSize {
		return nil, ErrTransactionTooBig
	}

	var txn solana.Transaction
	switch format {
	case FormatVersioned:
		if err := txn.UnmarshalVersioned(raw); err != nil {
			return nil, ErrMalformedVersion
		}
	default:
		if err := txn.Unmarshal(raw); err != nil {
			return nil, ErrMalformedLegacy
		}
	}

	sig, err := s.clients(network).SubmitRawTransaction(raw, solana.CommitmentConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to submit transaction")
	}

	signature := sig.ToBase58()
	s.log.WithFields(logrus.Fields{
		"signature": signature,
		"network":   network,
	}).Info("transaction submitted")

	return &Result{
		Signature:    signature,
		ExplorerLink: cluster.ExplorerTransactionURL(signature, network),
	}, nil
}
