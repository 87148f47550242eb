package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

type networkRequest struct {
	Network string `json:"network" validate:"required"`
}

type balanceRequest struct {
	Network    string `json:"network" validate:"required"`
	Address    string `json:"address" validate:"required"`
	Commitment string `json:"commitment" validate:"omitempty,oneof=processed confirmed finalized"`
}

type buildTransferRequest struct {
	Network     string `json:"network" validate:"required"`
	FromAddress string `json:"from_address" validate:"required"`
	ToAddress   string `json:"to_address" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Yid         string `json:"yid" validate:"required"`
	Notes       string `json:"notes"`
	FeeAmount   string `json:"fee_amount"`
}

type submitTransactionRequest struct {
	Network     string `json:"network" validate:"required"`
	Transaction string `json:"transaction" validate:"required"`
}

type accountSignaturesRequest struct {
	Network string `json:"network" validate:"required"`
	Address string `json:"address" validate:"required"`
	Limit   uint64 `json:"limit" validate:"omitempty,max=1000"`
}

type buildX402PaymentRequest struct {
	Network      string `json:"network" validate:"required"`
	PayerAddress string `json:"payer_address" validate:"required"`
	PayToAddress string `json:"pay_to_address" validate:"required"`
	Amount       string `json:"amount" validate:"required"`
	Asset        string `json:"asset" validate:"required"`
	FeePayer     string `json:"fee_payer"`
	Blockhash    string `json:"blockhash"`
	Decimals     int    `json:"decimals" validate:"omitempty,max=18"`
}

type x402Request struct {
	URL     string            `json:"url" validate:"required,url"`
	Method  string            `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
	Network string            `json:"network"`
}

type x402PurchRequest struct {
	URL          string `json:"url" validate:"required,url"`
	ProductURL   string `json:"product_url" validate:"required,url"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country"`
	Network      string `json:"network"`
	PayerAddress string `json:"payer_address"`
}

// decodeRequest unmarshals and validates a JSON request body into model.
func decodeRequest(r *http.Request, model interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read request body")
	}

	if err := json.Unmarshal(body, model); err != nil {
		return errors.New("invalid json request body")
	}

	if err := validate.Struct(model); err != nil {
		return err
	}

	return nil
}
