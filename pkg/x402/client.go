package x402

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fuego-wallet/fuego-server/pkg/cluster"
	"github.com/fuego-wallet/fuego-server/pkg/solana"
	"github.com/fuego-wallet/fuego-server/pkg/wallet"
)

// Request is an HTTP request to place through the conditional-payment flow.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte

	// Network is the cluster used to build the payment when the challenge
	// doesn't pin one through its network tag.
	Network string
}

// PaymentDetails echoes what was paid when a challenge was satisfied.
type PaymentDetails struct {
	Amount   string `json:"amount"`
	Asset    string `json:"asset"`
	PayTo    string `json:"pay_to"`
	FeePayer string `json:"fee_payer,omitempty"`
	Network  string `json:"network"`
}

// Outcome is the terminal response of the flow, after at most one payment.
type Outcome struct {
	Status  int
	Data    json.RawMessage
	Payment *PaymentDetails
}

// Client drives the x402 flow: issue the request, satisfy a 402 challenge
// with a signed payment, retry, and hand back the final response.
type Client struct {
	log     *logrus.Entry
	http    *http.Client
	clients func(network string) solana.Client
	wallets func() (*wallet.Store, error)
}

func NewClient(clients func(network string) solana.Client, wallets func() (*wallet.Store, error)) *Client {
	return &Client{
		log:     logrus.StandardLogger().WithField("type", "x402/client"),
		http:    &http.Client{Timeout: 60 * time.Second},
		clients: clients,
		wallets: wallets,
	}
}

// WithHTTPClient overrides the underlying HTTP client, primarily for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Do runs the conditional-payment flow. Non-402 responses pass through
// untouched. A 402 response triggers exactly one payment attempt; a second
// 402 is returned as-is rather than paid again.
func (c *Client) Do(req Request) (*Outcome, error) {
	status, body, header, err := c.send(req, "")
	if err != nil {
		return nil, err
	}

	if status != http.StatusPaymentRequired {
		return &Outcome{Status: status, Data: body}, nil
	}

	challenge, err := ParseChallenge(header.Get(ChallengeHeader))
	if err != nil {
		return nil, err
	}

	requirement, network, err := selectRequirement(challenge, req.Network)
	if err != nil {
		return nil, err
	}

	store, err := c.wallets()
	if err != nil {
		return nil, err
	}

	txn, err := BuildPayment(c.clients(network), PaymentParams{
		PayerAddress: store.Address,
		PayToAddress: requirement.PayTo,
		Amount:       requirement.Amount,
		Asset:        requirement.Asset,
		FeePayer:     requirement.FeePayer(),
		Blockhash:    requirement.Blockhash(),
		Decimals:     requirement.Decimals(),
	})
	if err != nil {
		return nil, err
	}

	signed, err := SignPayment(txn, store.Keypair())
	if err != nil {
		return nil, err
	}

	payment, err := EncodePayload(requirement.Network, signed)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"url":     req.URL,
		"amount":  requirement.Amount,
		"pay_to":  requirement.PayTo,
		"network": network,
	}).Info("retrying request with payment attached")

	status, body, _, err = c.send(req, payment)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Status: status,
		Data:   body,
		Payment: &PaymentDetails{
			Amount:   requirement.Amount,
			Asset:    requirement.Asset,
			PayTo:    requirement.PayTo,
			FeePayer: requirement.FeePayer(),
			Network:  network,
		},
	}, nil
}

func (c *Client) send(req Request, payment string) (int, json.RawMessage, http.Header, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequest(method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "invalid request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if payment != "" {
		httpReq.Header.Set(PaymentHeader, payment)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, nil, errors.Wrapf(err, "Request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "Failed to read response")
	}

	return resp.StatusCode, normalizeBody(raw), resp.Header, nil
}

// normalizeBody keeps JSON bodies as-is and wraps anything else as a JSON
// string so callers always receive valid JSON.
func normalizeBody(raw []byte) json.RawMessage {
	if json.Valid(raw) && len(bytes.TrimSpace(raw)) > 0 {
		return raw
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}

// selectRequirement picks the first accepts entry whose network tag names a
// cluster this client can pay on.
func selectRequirement(challenge *Challenge, fallbackNetwork string) (*Requirement, string, error) {
	var offered []string
	for i := range challenge.Accepts {
		requirement := &challenge.Accepts[i]

		if network, ok := cluster.FromTag(requirement.Network); ok {
			return requirement, network, nil
		}
		if requirement.Network == "" && fallbackNetwork != "" {
			return requirement, fallbackNetwork, nil
		}

		offered = append(offered, requirement.Network)
	}

	return nil, "", errors.Wrap(cluster.ErrUnsupportedNetwork, strings.Join(offered, ", "))
}
