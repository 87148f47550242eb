package x402

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Order describes a purch.xyz physical-goods order placed through the
// conditional-payment flow.
type Order struct {
	// URL is the purch.xyz order endpoint.
	URL string

	// ProductURL is the product page (e.g. an Amazon link) sent as
	// productUrl in the order body.
	ProductURL string

	Email        string
	PayerAddress string

	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string

	Network string
}

// OrderBody assembles the JSON body purch.xyz expects.
func (o Order) OrderBody() ([]byte, error) {
	country := o.Country
	if country == "" {
		country = "US"
	}

	physical := map[string]string{
		"name":       o.Name,
		"line1":      o.AddressLine1,
		"city":       o.City,
		"state":      o.State,
		"postalCode": o.PostalCode,
		"country":    country,
	}
	if o.AddressLine2 != "" {
		physical["line2"] = o.AddressLine2
	}

	body, err := json.Marshal(map[string]interface{}{
		"email":           o.Email,
		"payerAddress":    o.PayerAddress,
		"productUrl":      o.ProductURL,
		"physicalAddress": physical,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to serialize order body")
	}
	return body, nil
}

// PlaceOrder runs a purch.xyz order through the conditional-payment flow.
func (c *Client) PlaceOrder(order Order) (*Outcome, error) {
	if order.PayerAddress == "" {
		store, err := c.wallets()
		if err != nil {
			return nil, err
		}
		order.PayerAddress = store.Address
	}

	body, err := order.OrderBody()
	if err != nil {
		return nil, err
	}

	return c.Do(Request{
		URL:     order.URL,
		Body:    body,
		Network: order.Network,
	})
}
