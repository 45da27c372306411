// Package privacy reduces personal data (client addresses, owner names) to
// forms that are safe to write to logs and audit trails.
package privacy

import (
	"net/netip"
	"strconv"
	"strings"
	"unicode/utf8"
)

// AnonymizeIP keeps the /24 of an IPv4 address and the /48 of an IPv6 one.
// It returns "unknown" for empty input and "invalid" when the address does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// MaskName keeps the first letter of a personal name and its length, e.g.
// "Jane" -> "J***(4)". Enough to correlate a log line with a complaint,
// not enough to enumerate owners.
func MaskName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "<empty>"
	}
	r, size := utf8.DecodeRuneInString(name)
	n := utf8.RuneCountInString(name)
	return string(r) + strings.Repeat("*", utf8.RuneCountInString(name[size:])) + "(" + strconv.Itoa(n) + ")"
}
