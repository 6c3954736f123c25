package payfast

import "net"

// Hosts the gateway sends server-to-server notifications from.
var notifyHosts = []string{
	"www.payfast.co.za",
	"sandbox.payfast.co.za",
	"w1w.payfast.co.za",
	"w2w.payfast.co.za",
}

// TrustedSource reports whether remoteIP resolves back to one of the
// gateway's notification hosts. DNS being unavailable counts as trusted:
// the signature check is the real gate, this is an extra fence.
func (c *Client) TrustedSource(remoteIP string) bool {
	// Sandbox notifications are replayed from dev machines all the time.
	if c.cfg.Sandbox {
		return true
	}

	ip := net.ParseIP(remoteIP)
	if ip == nil {
		return false
	}

	resolvedAny := false
	for _, host := range notifyHosts {
		addrs, err := net.LookupIP(host)
		if err != nil {
			continue
		}
		resolvedAny = true

		for _, addr := range addrs {
			if addr.Equal(ip) {
				return true
			}
		}
	}

	return !resolvedAny
}
