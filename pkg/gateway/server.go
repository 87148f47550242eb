// Package gateway exposes the fuego HTTP surface: balance and blockhash
// reads, unsigned transfer construction, signed transaction submission, and
// the x402 conditional-payment flows.
package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fuego-wallet/fuego-server/pkg/asset"
	"github.com/fuego-wallet/fuego-server/pkg/cluster"
	"github.com/fuego-wallet/fuego-server/pkg/solana"
	"github.com/fuego-wallet/fuego-server/pkg/solana/token"
	"github.com/fuego-wallet/fuego-server/pkg/submit"
	"github.com/fuego-wallet/fuego-server/pkg/transfer"
	"github.com/fuego-wallet/fuego-server/pkg/wallet"
	"github.com/fuego-wallet/fuego-server/pkg/x402"
)

const (
	serviceName    = "fuego-server"
	serviceVersion = "0.1.0"

	contentTypeHeaderName      = "content-type"
	jsonContentTypeHeaderValue = "application/json"
)

var (
	errInvalidWalletAddress = errors.New("Invalid wallet address")
	errNoWallet             = errors.New("No wallet found. Initialize with: fuego create")
)

type Server struct {
	log    *logrus.Entry
	config *Config

	clients   func(network string) solana.Client
	builder   *transfer.Builder
	submitter *submit.Submitter
	x402      *x402.Client
}

func NewServer(config *Config) *Server {
	clients := func(network string) solana.Client {
		return solana.New(cluster.RPCEndpoint(network))
	}
	return NewServerWithClients(config, clients)
}

// NewServerWithClients injects the RPC client constructor, primarily for
// tests.
func NewServerWithClients(config *Config, clients func(network string) solana.Client) *Server {
	wallets := func() (*wallet.Store, error) {
		store, err := wallet.Load(config.WalletDir)
		if err != nil {
			return nil, errNoWallet
		}
		return store, nil
	}

	return &Server{
		log:       logrus.StandardLogger().WithField("type", "gateway/server"),
		config:    config,
		clients:   clients,
		builder:   transfer.NewBuilder(clients),
		submitter: submit.NewSubmitter(clients),
		x402:      x402.NewClient(clients, wallets),
	}
}

// Router assembles the HTTP routes with the CORS middleware applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/", s.bannerHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/network", s.networkHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/wallet-address", s.walletAddressHandler).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/latest-hash", s.latestHashHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/sol-balance", s.solBalanceHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/usdc-balance", s.tokenBalanceHandler(asset.USDC)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/usdt-balance", s.tokenBalanceHandler(asset.USDT)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/all-transactions", s.allTransactionsHandler).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/build-transfer-sol", s.buildTransferHandler(asset.SOL)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/build-transfer-usdc", s.buildTransferHandler(asset.USDC)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/build-transfer-usdt", s.buildTransferHandler(asset.USDT)).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/submit-transaction", s.submitHandler(submit.FormatLegacy)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/submit-versioned-transaction", s.submitHandler(submit.FormatVersioned)).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/build-x402-payment", s.buildX402PaymentHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/x402-request", s.x402RequestHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/x402-purch", s.x402PurchHandler).Methods(http.MethodPost, http.MethodOptions)

	return r
}

func (s *Server) writeBody(w http.ResponseWriter, statusCode int, body GenericApiResponseBody) {
	w.Header().Set(contentTypeHeaderName, jsonContentTypeHeaderValue)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(body.ToString())); err != nil {
		s.log.WithError(err).Info("failed to write body")
	}
}

func (s *Server) network(requested string) string {
	if requested == "" {
		return s.config.DefaultNetwork
	}
	return requested
}

func (s *Server) bannerHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Fuego Server 🔥"))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeBody(w, http.StatusOK, GenericApiResponseBody{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (s *Server) networkHandler(w http.ResponseWriter, r *http.Request) {
	s.writeBody(w, http.StatusOK, GenericApiResponseBody{
		"network": s.config.DefaultNetwork,
	})
}

func (s *Server) walletAddressHandler(w http.ResponseWriter, r *http.Request) {
	address, network, source, err := wallet.LoadAddress(s.config.WalletDir)
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(errNoWallet))
		return
	}

	s.writeBody(w, http.StatusOK, NewGenericApiDataResponseBody(map[string]any{
		"address": address,
		"network": network,
		"source":  source,
	}))
}

func (s *Server) latestHashHandler(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
		return
	}

	blockhash, err := s.clients(req.Network).GetLatestBlockhash()
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(
			errors.Wrap(err, "Failed to get latest blockhash")))
		return
	}

	s.writeBody(w, http.StatusOK, NewGenericApiDataResponseBody(map[string]any{
		"blockhash": blockhash.ToBase58(),
		"network":   req.Network,
	}))
}

func (s *Server) solBalanceHandler(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
		return
	}

	account, err := decodeAccount(req.Address)
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(errInvalidWalletAddress))
		return
	}

	lamports, err := s.clients(req.Network).GetBalance(account)
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(
			errors.Wrap(err, "Failed to get balance")))
		return
	}

	s.writeBody(w, http.StatusOK, NewGenericApiDataResponseBody(map[string]any{
		"address":  req.Address,
		"lamports": lamports,
		"sol":      float64(lamports) / float64(solana.LamportsPerSol),
		"network":  req.Network,
	}))
}

func (s *Server) tokenBalanceHandler(a asset.Asset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req balanceRequest
		if err := decodeRequest(r, &req); err != nil {
			s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
			return
		}

		account, err := decodeAccount(req.Address)
		if err != nil {
			s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(errInvalidWalletAddress))
			return
		}

		tokenAccount, err := tokenAccountFor(account, a)
		if err != nil {
			s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(err))
			return
		}

		balance, err := s.clients(req.Network).GetTokenAccountBalance(tokenAccount, commitmentFor(req.Commitment))
		if err != nil {
			s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(
				errors.Wrapf(err, "Failed to get %s balance", a.Symbol)))
			return
		}

		s.writeBody(w, http.StatusOK, NewGenericApiDataResponseBody(map[string]any{
			"address":   req.Address,
			"amount":    balance.Amount,
			"decimals":  balance.Decimals,
			"ui_amount": uiAmount(balance),
			"network":   req.Network,
			"token":     a.Symbol,
		}))
	}
}

func (s *Server) buildTransferHandler(a asset.Asset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req buildTransferRequest
		if err := decodeRequest(r, &req); err != nil {
			s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
			return
		}

		built, err := s.builder.Build(req.Network, a, transfer.Request{
			FromAddress: req.FromAddress,
			ToAddress:   req.ToAddress,
			Amount:      req.Amount,
			Yid:         req.Yid,
			Note:        req.Notes,
			FeeAmount:   req.FeeAmount,
		})
		if err != nil {
			if errors.Cause(err) == asset.ErrInvalidAmount {
				err = errors.New("Invalid amount format")
			}
			s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(err))
			return
		}

		s.writeBody(w, http.StatusOK, NewGenericApiDataResponseBody(map[string]any{
			"transaction": built.Transaction,
			"blockhash":   built.Blockhash,
			"from":        req.FromAddress,
			"to":          req.ToAddress,
			"amount":      req.Amount,
			"yid":         req.Yid,
			"memo":        built.Memo,
			"network":     req.Network,
		}))
	}
}

func (s *Server) submitHandler(format submit.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitTransactionRequest
		if err := decodeRequest(r, &req); err != nil {
			s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
			return
		}

		result, err := s.submitter.Submit(req.Network, format, req.Transaction)
		if err != nil {
			s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(err))
			return
		}

		data := map[string]any{
			"signature":     result.Signature,
			"explorer_link": result.ExplorerLink,
			"network":       req.Network,
			"status":        "submitted",
		}
		if format == submit.FormatVersioned {
			data["transaction_type"] = "VersionedTransaction"
		}

		s.writeBody(w, http.StatusOK, NewGenericApiDataResponseBody(data))
	}
}

func (s *Server) allTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	var req accountSignaturesRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
		return
	}

	account, err := decodeAccount(req.Address)
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(errInvalidWalletAddress))
		return
	}

	signatures, err := s.clients(req.Network).GetSignaturesForAddress(account, solana.CommitmentConfirmed, req.Limit)
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(
			errors.New("Could not retrieve signatures for account")))
		return
	}

	s.writeBody(w, http.StatusOK, GenericApiResponseBody{
		successJsonKey: true,
		dataJsonKey:    signatures,
		"network":      req.Network,
		"status":       "Successful all transactions request",
	})
}

func (s *Server) buildX402PaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req buildX402PaymentRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
		return
	}

	txn, err := x402.BuildPayment(s.clients(req.Network), x402.PaymentParams{
		PayerAddress: req.PayerAddress,
		PayToAddress: req.PayToAddress,
		Amount:       req.Amount,
		Asset:        req.Asset,
		FeePayer:     req.FeePayer,
		Blockhash:    req.Blockhash,
		Decimals:     req.Decimals,
	})
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(err))
		return
	}

	s.writeBody(w, http.StatusOK, NewGenericApiDataResponseBody(map[string]any{
		"transaction": x402.EncodeTransaction(txn),
		"blockhash":   txn.Message.RecentBlockhash.ToBase58(),
		"payer":       req.PayerAddress,
		"pay_to":      req.PayToAddress,
		"amount":      req.Amount,
		"asset":       req.Asset,
		"fee_payer":   req.FeePayer,
		"network":     req.Network,
	}))
}

func (s *Server) x402RequestHandler(w http.ResponseWriter, r *http.Request) {
	var req x402Request
	if err := decodeRequest(r, &req); err != nil {
		s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
		return
	}

	outcome, err := s.x402.Do(x402.Request{
		URL:     req.URL,
		Method:  req.Method,
		Headers: req.Headers,
		Body:    req.Body,
		Network: s.network(req.Network),
	})
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(err))
		return
	}

	body := GenericApiResponseBody{
		successJsonKey: outcome.Status < 400,
		"status":       outcome.Status,
		dataJsonKey:    outcome.Data,
	}
	if outcome.Payment != nil {
		body["payment"] = outcome.Payment
	}
	s.writeBody(w, http.StatusOK, body)
}

func (s *Server) x402PurchHandler(w http.ResponseWriter, r *http.Request) {
	var req x402PurchRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeBody(w, http.StatusBadRequest, NewGenericApiFailureResponseBody(err))
		return
	}

	outcome, err := s.x402.PlaceOrder(x402.Order{
		URL:          req.URL,
		ProductURL:   req.ProductURL,
		Email:        req.Email,
		PayerAddress: req.PayerAddress,
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Network:      s.network(req.Network),
	})
	if err != nil {
		s.writeBody(w, http.StatusOK, NewGenericApiFailureResponseBody(err))
		return
	}

	success := outcome.Status >= 200 && outcome.Status < 300
	note := "Request completed; check status and data."
	if success {
		note = "Payment accepted; order response above."
	}

	body := GenericApiResponseBody{
		successJsonKey: success,
		"status":       outcome.Status,
		dataJsonKey:    outcome.Data,
		"x402_note":    note,
	}
	if outcome.Payment != nil {
		body["payment"] = outcome.Payment
	}
	s.writeBody(w, http.StatusOK, body)
}

func decodeAccount(address string) (account []byte, err error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, err
	}
	if len(raw) != 32 {
		return nil, errors.Errorf("invalid key length: %d", len(raw))
	}
	return raw, nil
}

func tokenAccountFor(account []byte, a asset.Asset) ([]byte, error) {
	tokenAccount, err := token.GetAssociatedAccount(account, a.Mint)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to derive %s token account", a.Symbol)
	}
	return tokenAccount, nil
}

func commitmentFor(requested string) solana.Commitment {
	switch requested {
	case "processed":
		return solana.CommitmentProcessed
	case "finalized":
		return solana.CommitmentFinalized
	default:
		return solana.CommitmentConfirmed
	}
}

// uiAmount prefers the node's formatted amount, falling back to local
// fixed-point formatting from the raw value.
func uiAmount(balance solana.TokenAmount) string {
	if balance.UIAmountString != "" {
		return balance.UIAmountString
	}
	raw, err := decimal.NewFromString(balance.Amount)
	if err != nil {
		return balance.Amount
	}
	return raw.Shift(-int32(balance.Decimals)).String()
}
