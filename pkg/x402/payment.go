package x402

import (
	"crypto/ed25519"
	"encoding/base64"
	"strconv"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/fuego-wallet/fuego-server/pkg/solana"
	"github.com/fuego-wallet/fuego-server/pkg/solana/computebudget"
	"github.com/fuego-wallet/fuego-server/pkg/solana/token"
)

// Compute budget applied to every x402 payment. Facilitators co-sign these
// transactions, so the values are fixed rather than caller-tunable.
const (
	paymentComputeUnitLimit = 300_000
	paymentComputeUnitPrice = 5_000

	// defaultPaymentDecimals is the USDC/USDT convention, applied when a
	// requirement doesn't name a decimal count.
	defaultPaymentDecimals = 6
)

var (
	ErrInvalidPayerAddress  = errors.New("Invalid payer_address")
	ErrInvalidPayToAddress  = errors.New("Invalid pay_to_address")
	ErrInvalidAssetMint     = errors.New("Invalid asset mint")
	ErrInvalidFeePayer      = errors.New("Invalid fee_payer")
	ErrInvalidPaymentAmount = errors.New("Invalid amount - expected base units")
)

// PaymentParams describe an x402 payment to assemble.
type PaymentParams struct {
	// PayerAddress is the local wallet funding the payment.
	PayerAddress string

	// PayToAddress is the facilitator's recipient wallet.
	PayToAddress string

	// Amount is the payment size in atomic units, as carried by the
	// requirement.
	Amount string

	// Asset is the token mint the payment must be made in.
	Asset string

	// FeePayer optionally names a facilitator account that covers the
	// transaction fee and occupies the fee payer slot.
	FeePayer string

	// Blockhash optionally pins a facilitator-provided blockhash. When
	// empty the cluster is asked for a fresh one.
	Blockhash string

	// Decimals is the asset decimal count named by the requirement,
	// validated on chain by the checked transfer. Zero means unspecified
	// and falls back to the 6-decimal USDC/USDT convention.
	Decimals int
}

// BuildPayment assembles the unsigned SPL transfer an x402 requirement asks
// for, as a checked transfer so the mint and decimal count the requirement
// named are validated on chain. When a remote fee payer is given it takes the
// fee payer slot, leaving its signature slot for the facilitator to fill.
func BuildPayment(client solana.Client, params PaymentParams) (*solana.Transaction, error) {
	payer, err := decodeKey(params.PayerAddress)
	if err != nil {
		return nil, ErrInvalidPayerAddress
	}
	payTo, err := decodeKey(params.PayToAddress)
	if err != nil {
		return nil, ErrInvalidPayToAddress
	}
	mint, err := decodeKey(params.Asset)
	if err != nil {
		return nil, ErrInvalidAssetMint
	}

	feePayer := payer
	if params.FeePayer != "" {
		if feePayer, err = decodeKey(params.FeePayer); err != nil {
			return nil, ErrInvalidFeePayer
		}
	}

	amount, err := strconv.ParseUint(params.Amount, 10, 64)
	if err != nil {
		return nil, ErrInvalidPaymentAmount
	}

	var blockhash solana.Blockhash
	if params.Blockhash != "" {
		raw, err := base58.Decode(params.Blockhash)
		if err != nil || len(raw) != len(blockhash) {
			return nil, errors.New("Invalid blockhash")
		}
		copy(blockhash[:], raw)
	} else {
		if blockhash, err = client.GetLatestBlockhash(); err != nil {
			return nil, errors.Wrap(err, "Failed to fetch blockhash")
		}
	}

	source, err := token.GetAssociatedAccount(payer, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive source token account")
	}
	dest, err := token.GetAssociatedAccount(payTo, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive destination token account")
	}

	decimals := params.Decimals
	if decimals == 0 {
		decimals = defaultPaymentDecimals
	}

	txn := solana.NewTransaction(
		feePayer,
		computebudget.SetComputeUnitLimit(paymentComputeUnitLimit),
		computebudget.SetComputeUnitPrice(paymentComputeUnitPrice),
		token.TransferChecked(source, mint, dest, payer, amount, byte(decimals)),
	)
	txn.SetBlockhash(blockhash)

	return &txn, nil
}

// EncodeTransaction returns the base64 wire encoding of a payment, signed or
// not.
func EncodeTransaction(txn *solana.Transaction) string {
	return base64.StdEncoding.EncodeToString(txn.Marshal())
}

// SignPayment partially signs the payment with the local wallet key and
// returns the base64 wire encoding. Remote signer slots stay zeroed.
func SignPayment(txn *solana.Transaction, key ed25519.PrivateKey) (string, error) {
	if err := txn.Sign(key); err != nil {
		return "", errors.Wrap(err, "failed to sign payment")
	}
	return base64.StdEncoding.EncodeToString(txn.Marshal()), nil
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
