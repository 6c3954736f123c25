package payfast

import (
	"errors"
	"strings"
)

var (
	ErrMissingSignature = errors.New("payfast: notification has no signature")
	ErrBadSignature     = errors.New("payfast: signature mismatch")
	ErrAmountMismatch   = errors.New("payfast: amount does not match payment")
)

// Notification is a validated server-to-server payment notification.
type Notification struct {
	MerchantRef   string // m_payment_id
	GatewayRef    string // pf_payment_id
	PaymentStatus string
	AmountGross   string

	Fields map[string]string
}

// Complete reports whether the gateway settled the payment. Any other
// status is the failure path: surface it, mutate nothing booking-side.
func (n *Notification) Complete() bool {
	return n.PaymentStatus == StatusComplete
}

// ValidateNotification checks the signature of an incoming field mapping.
// The signature field is removed, the digest recomputed over the remaining
// fields, and compared with exact string equality. Any mismatch rejects
// the payload wholesale.
func (c *Client) ValidateNotification(fields map[string]string) (*Notification, error) {
	received, ok := fields[SignatureField]
	if !ok || strings.TrimSpace(received) == "" {
		return nil, ErrMissingSignature
	}

	rest := make(map[string]string, len(fields))
	for name, value := range fields {
		if name == SignatureField {
			continue
		}
		rest[name] = value
	}

	expected := Sign(rest, c.cfg.Passphrase)
	if expected != strings.TrimSpace(received) {
		return nil, ErrBadSignature
	}

	return &Notification{
		MerchantRef:   strings.TrimSpace(fields["m_payment_id"]),
		GatewayRef:    strings.TrimSpace(fields["pf_payment_id"]),
		PaymentStatus: strings.TrimSpace(fields["payment_status"]),
		AmountGross:   strings.TrimSpace(fields["amount_gross"]),
		Fields:        rest,
	}, nil
}

// CheckAmount cross-checks the notified gross amount against what we
// expected to charge. The gateway posts it with two fraction digits.
func (n *Notification) CheckAmount(expected float64) error {
	if n.AmountGross == "" {
		return nil
	}
	if n.AmountGross != FormatAmount(expected) {
		return ErrAmountMismatch
	}
	return nil
}
