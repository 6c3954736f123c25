package payfast

import (
	"fmt"
	"strconv"

	"github.com/townbook-za/townbook/internal/config"
)

// Client builds signed redirects and validates notifications for one
// deployment. Sandbox vs live is fixed at construction time from config,
// never derived from request input.
type Client struct {
	cfg config.PayFastConfig
}

func New(cfg config.PayFastConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) host() string {
	if c.cfg.Sandbox {
		return sandboxHost
	}
	return liveHost
}

// ProcessURL is the hosted payment page the browser is redirected to.
func (c *Client) ProcessURL() string {
	return c.host() + processPath
}

// PaymentRequest carries everything the redirect form needs beyond the
// per-deployment configuration.
type PaymentRequest struct {
	MerchantRef string // m_payment_id, our transaction reference
	Amount      float64
	ItemName    string

	ItemDescription string
	EmailAddress    string
	CellNumber      string

	CustomStr [5]string
	CustomInt [5]*int
}

// Redirect is the complete signed field set plus the page to POST it to.
type Redirect struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// BuildRedirect assembles the form field mapping, signs it, and appends
// the signature to the submitted set.
func (c *Client) BuildRedirect(req PaymentRequest) (*Redirect, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payfast: amount must be positive, got %v", req.Amount)
	}
	if req.ItemName == "" {
		return nil, fmt.Errorf("payfast: item_name is required")
	}

	fields := map[string]string{
		"merchant_id":  c.cfg.MerchantID,
		"merchant_key": c.cfg.MerchantKey,
		"return_url":   c.cfg.ReturnURL,
		"cancel_url":   c.cfg.CancelURL,
		"notify_url":   c.cfg.NotifyURL,
		"amount":       FormatAmount(req.Amount),
		"item_name":    req.ItemName,
	}

	setOptional(fields, "m_payment_id", req.MerchantRef)
	setOptional(fields, "item_description", req.ItemDescription)
	setOptional(fields, "email_address", req.EmailAddress)
	setOptional(fields, "cell_number", req.CellNumber)

	for i, v := range req.CustomStr {
		setOptional(fields, fmt.Sprintf("custom_str%d", i+1), v)
	}
	for i, v := range req.CustomInt {
		if v != nil {
			fields[fmt.Sprintf("custom_int%d", i+1)] = strconv.Itoa(*v)
		}
	}

	fields[SignatureField] = Sign(fields, c.cfg.Passphrase)

	return &Redirect{
		URL:    c.ProcessURL(),
		Fields: fields,
	}, nil
}

func setOptional(fields map[string]string, name, value string) {
	if value != "" {
		fields[name] = value
	}
}
