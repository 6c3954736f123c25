package payfast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townbook-za/townbook/internal/config"
)

// Signed string for these fields is exactly
// "amount=100.00&item_name=Test&merchant_id=10000100&merchant_key=46f0cd694581a".
var sampleFields = map[string]string{
	"merchant_id":  "10000100",
	"merchant_key": "46f0cd694581a",
	"amount":       "100.00",
	"item_name":    "Test",
}

const (
	sampleDigest           = "5a8d16e9ba1304f7fcbdd5144be21218"
	sampleDigestPassphrase = "17570269b8477f9b7bd549e5fe04f280"
)

func sandboxClient(passphrase string) *Client {
	return New(config.PayFastConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  passphrase,
		Sandbox:     true,
		ReturnURL:   "https://shop.example/return",
		CancelURL:   "https://shop.example/cancel",
		NotifyURL:   "https://shop.example/notify",
	})
}

func TestSign_PinnedFixture(t *testing.T) {
	assert.Equal(t, sampleDigest, Sign(sampleFields, ""))
}

func TestSign_PassphraseChangesDigest(t *testing.T) {
	withPP := Sign(sampleFields, "jt7NOE43FZPn")
	assert.Equal(t, sampleDigestPassphrase, withPP)
	assert.NotEqual(t, Sign(sampleFields, ""), withPP)

	// Deterministic with the passphrase too.
	assert.Equal(t, withPP, Sign(sampleFields, "jt7NOE43FZPn"))
}

func TestSign_InsertionOrderIrrelevant(t *testing.T) {
	reversed := map[string]string{}
	keys := []string{"item_name", "amount", "merchant_key", "merchant_id"}
	for _, k := range keys {
		reversed[k] = sampleFields[k]
	}
	assert.Equal(t, Sign(sampleFields, ""), Sign(reversed, ""))
}

func TestSign_TrimsBeforeEncoding(t *testing.T) {
	padded := map[string]string{
		"merchant_id":  "  10000100  ",
		"merchant_key": "46f0cd694581a",
		"amount":       "100.00",
		"item_name":    "\tTest\n",
	}
	assert.Equal(t, sampleDigest, Sign(padded, ""))

	// Interior whitespace is part of the value and must change the digest.
	interior := map[string]string{
		"merchant_id":  "10000100",
		"merchant_key": "46f0cd694581a",
		"amount":       "100.00",
		"item_name":    "Te st",
	}
	assert.NotEqual(t, sampleDigest, Sign(interior, ""))
}

func TestSign_SingleFieldChangeChangesDigest(t *testing.T) {
	seen := map[string]string{}
	seen[Sign(sampleFields, "")] = "base"

	for name := range sampleFields {
		mutated := map[string]string{}
		for k, v := range sampleFields {
			mutated[k] = v
		}
		mutated[name] = mutated[name] + "x"

		digest := Sign(mutated, "")
		prev, dup := seen[digest]
		require.Falsef(t, dup, "digest collision between %q and %q", prev, name)
		seen[digest] = name
	}
}

func TestSign_EmptyValuesOmitted(t *testing.T) {
	withEmpties := map[string]string{
		"merchant_id":      "10000100",
		"merchant_key":     "46f0cd694581a",
		"amount":           "100.00",
		"item_name":        "Test",
		"item_description": "",
		"email_address":    "   ",
	}
	assert.Equal(t, sampleDigest, Sign(withEmpties, ""))
}

func TestSign_IgnoresSignatureField(t *testing.T) {
	withSig := map[string]string{}
	for k, v := range sampleFields {
		withSig[k] = v
	}
	withSig[SignatureField] = "deadbeefdeadbeefdeadbeefdeadbeef"
	assert.Equal(t, sampleDigest, Sign(withSig, ""))
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		100:      "100.00",
		99.9:     "99.90",
		0.5:      "0.50",
		1234.567: "1234.57",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(in))
	}
}

func TestBuildRedirect_SandboxVsLive(t *testing.T) {
	sandbox := sandboxClient("")
	assert.Equal(t, "https://sandbox.payfast.co.za/eng/process", sandbox.ProcessURL())

	live := New(config.PayFastConfig{Sandbox: false})
	assert.Equal(t, "https://www.payfast.co.za/eng/process", live.ProcessURL())
}

func TestBuildRedirect_FieldSet(t *testing.T) {
	three := 3
	redirect, err := sandboxClient("pp").BuildRedirect(PaymentRequest{
		MerchantRef:     "ref-123",
		Amount:          250,
		ItemName:        "Consultation",
		ItemDescription: "45 minute consultation",
		EmailAddress:    "customer@example.com",
		CustomStr:       [5]string{"booking:42"},
		CustomInt:       [5]*int{nil, &three},
	})
	require.NoError(t, err)

	assert.Equal(t, "250.00", redirect.Fields["amount"])
	assert.Equal(t, "ref-123", redirect.Fields["m_payment_id"])
	assert.Equal(t, "booking:42", redirect.Fields["custom_str1"])
	assert.Equal(t, "3", redirect.Fields["custom_int2"])
	assert.NotEmpty(t, redirect.Fields[SignatureField])

	// Absent optionals must not be transmitted, and the passphrase is
	// never a form field.
	_, hasCell := redirect.Fields["cell_number"]
	assert.False(t, hasCell)
	_, hasCustom := redirect.Fields["custom_int1"]
	assert.False(t, hasCustom)
	_, hasPassphrase := redirect.Fields["passphrase"]
	assert.False(t, hasPassphrase)
}

func TestBuildRedirect_RejectsBadInput(t *testing.T) {
	_, err := sandboxClient("").BuildRedirect(PaymentRequest{Amount: 0, ItemName: "x"})
	assert.Error(t, err)

	_, err = sandboxClient("").BuildRedirect(PaymentRequest{Amount: -5, ItemName: "x"})
	assert.Error(t, err)

	_, err = sandboxClient("").BuildRedirect(PaymentRequest{Amount: 10})
	assert.Error(t, err)
}

func TestValidate_RoundTrip(t *testing.T) {
	client := sandboxClient("jt7NOE43FZPn")

	redirect, err := client.BuildRedirect(PaymentRequest{
		MerchantRef: "ref-rt",
		Amount:      100,
		ItemName:    "Test",
	})
	require.NoError(t, err)

	// Simulate the gateway echoing the field set back with an outcome.
	notif := map[string]string{}
	for k, v := range redirect.Fields {
		notif[k] = v
	}
	delete(notif, "merchant_key") // the gateway never echoes the key
	notif["payment_status"] = StatusComplete
	notif["pf_payment_id"] = "1089250"
	notif[SignatureField] = Sign(notif, "jt7NOE43FZPn")

	out, err := client.ValidateNotification(notif)
	require.NoError(t, err)
	assert.True(t, out.Complete())
	assert.Equal(t, "ref-rt", out.MerchantRef)
	assert.Equal(t, "1089250", out.GatewayRef)
}

func TestValidate_RejectsTamperedSignature(t *testing.T) {
	client := sandboxClient("")

	fields := map[string]string{}
	for k, v := range sampleFields {
		fields[k] = v
	}
	fields[SignatureField] = Sign(fields, "")

	_, err := client.ValidateNotification(fields)
	require.NoError(t, err)

	// Flip one character of the hex digest.
	sig := []byte(fields[SignatureField])
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	fields[SignatureField] = string(sig)

	_, err = client.ValidateNotification(fields)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestValidate_RejectsAlteredField(t *testing.T) {
	client := sandboxClient("")

	fields := map[string]string{}
	for k, v := range sampleFields {
		fields[k] = v
	}
	fields[SignatureField] = Sign(fields, "")
	fields["amount"] = "1.00"

	_, err := client.ValidateNotification(fields)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestValidate_RejectsMissingSignature(t *testing.T) {
	_, err := sandboxClient("").ValidateNotification(sampleFields)
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestNotification_CheckAmount(t *testing.T) {
	n := &Notification{AmountGross: "100.00"}
	assert.NoError(t, n.CheckAmount(100))
	assert.ErrorIs(t, n.CheckAmount(99), ErrAmountMismatch)

	// Gateways that omit amount_gross skip the cross-check.
	empty := &Notification{}
	assert.NoError(t, empty.CheckAmount(100))
}
