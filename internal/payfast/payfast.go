package payfast

// Signed-form integration with the PayFast hosted payment page.
//
// The gateway authenticates both directions with the same canonical
// signature: field names sorted byte-ordinal, values trimmed and
// url-encoded, joined with '&', optional passphrase appended, MD5 over the
// result. The redirect builder and the notification validator both go
// through Sign so the two sides can never drift apart.

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	liveHost    = "https://www.payfast.co.za"
	sandboxHost = "https://sandbox.payfast.co.za"
	processPath = "/eng/process"
)

// Payment status values posted by the gateway in the notification webhook.
const (
	StatusComplete  = "COMPLETE"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// SignatureField is excluded from the signed string and appended to the
// submitted field set afterwards.
const SignatureField = "signature"

// FormatAmount renders an amount the way the gateway expects: always two
// fraction digits, so 100 becomes "100.00".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// Sign computes the gateway signature over the given fields. Fields with
// empty values are treated as absent. The passphrase, when configured, is
// folded into the signed string but never transmitted as a field.
func Sign(fields map[string]string, passphrase string) string {
	return hexMD5(signableString(fields, passphrase))
}

func signableString(fields map[string]string, passphrase string) string {
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if name == SignatureField {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		names = append(names, name)
	}

	// Byte-ordinal, never locale-aware: the gateway sorts the same way and
	// any other ordering breaks signature parity.
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(encode(fields[name]))
	}

	if pp := strings.TrimSpace(passphrase); pp != "" {
		b.WriteString("&passphrase=")
		b.WriteString(encode(pp))
	}

	return b.String()
}

// encode trims and url-encodes a value. Trimming must happen on both the
// signing and the validating side or signatures will not match.
func encode(value string) string {
	return url.QueryEscape(strings.TrimSpace(value))
}

func hexMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
