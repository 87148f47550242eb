// Package transfer builds unsigned transfer transactions for the assets the
// gateway supports.
package transfer

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fuego-wallet/fuego-server/pkg/asset"
	"github.com/fuego-wallet/fuego-server/pkg/solana"
	"github.com/fuego-wallet/fuego-server/pkg/solana/computebudget"
	"github.com/fuego-wallet/fuego-server/pkg/solana/memo"
	"github.com/fuego-wallet/fuego-server/pkg/solana/system"
	"github.com/fuego-wallet/fuego-server/pkg/solana/token"
)

var (
	ErrInvalidFromAddress = errors.New("Invalid from_address")
	ErrInvalidToAddress   = errors.New("Invalid to_address")
)

// Request captures the caller-provided parameters of a transfer build.
type Request struct {
	FromAddress string
	ToAddress   string

	// Amount is a human-readable decimal amount (SOL, not lamports).
	Amount string

	// Yid is an opaque correlation id echoed into the memo.
	Yid string

	// Note is optional free text for the memo, capped at 16 characters.
	Note string

	// FeeAmount optionally overrides the priority fee, in micro-lamports
	// per compute unit.
	FeeAmount string
}

// Built is an unsigned transfer ready to hand back to the caller for
// signing.
type Built struct {
	// Transaction is the base64-encoded serialized transaction.
	Transaction string
	Blockhash   string
	Memo        string
	BaseUnits   uint64
}

// Builder constructs unsigned transfers, parameterized by asset so SOL and
// SPL token transfers share one code path.
type Builder struct {
	log     *logrus.Entry
	clients func(network string) solana.Client
}

func NewBuilder(clients func(network string) solana.Client) *Builder {
	return &Builder{
		log:     logrus.StandardLogger().WithField("type", "transfer/builder"),
		clients: clients,
	}
}

// Build assembles an unsigned transfer for the given asset.
//
// The blockhash is fetched before any request validation so an unreachable
// cluster surfaces as a network error rather than a validation error.
func (b *Builder) Build(network string, a asset.Asset, req Request) (*Built, error) {
	client := b.clients(network)

	blockhash, err := client.GetLatestBlockhash()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to fetch blockhash")
	}

	from, err := decodeKey(req.FromAddress)
	if err != nil {
		return nil, ErrInvalidFromAddress
	}
	to, err := decodeKey(req.ToAddress)
	if err != nil {
		return nil, ErrInvalidToAddress
	}

	baseUnits, err := a.ToBaseUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	memoText, err := BuildMemo(a.Symbol, req.FromAddress, req.ToAddress, baseUnits, req.Yid, req.Note)
	if err != nil {
		return nil, err
	}

	var transferIxn solana.Instruction
	if a.IsNative() {
		transferIxn = system.Transfer(from, to, baseUnits)
	} else {
		fromAccount, err := token.GetAssociatedAccount(from, a.Mint)
		if err != nil {
			return nil, errors.Wrap(err, "failed to derive source token account")
		}
		toAccount, err := token.GetAssociatedAccount(to, a.Mint)
		if err != nil {
			return nil, errors.Wrap(err, "failed to derive destination token account")
		}
		transferIxn = token.Transfer(fromAccount, toAccount, from, baseUnits)
	}

	var memoSigners []ed25519.PublicKey
	if a.MemoSignedBySender {
		memoSigners = append(memoSigners, from)
	}

	txn := solana.NewTransaction(
		from,
		computebudget.SetComputeUnitLimit(a.ComputeUnitLimit),
		computebudget.SetComputeUnitPrice(a.UnitPrice(req.FeeAmount)),
		transferIxn,
		memo.Instruction(memoText, memoSigners...),
	)
	txn.SetBlockhash(blockhash)

	b.log.WithFields(logrus.Fields{
		"asset":   a.Symbol,
		"network": network,
		"amount":  baseUnits,
	}).Debug("built unsigned transfer")

	return &Built{
		Transaction: base64.StdEncoding.EncodeToString(txn.Marshal()),
		Blockhash:   blockhash.ToBase58(),
		Memo:        memoText,
		BaseUnits:   baseUnits,
	}, nil
}

func decodeKey(address string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid key length: %d", len(raw))
	}
	return raw, nil
}
