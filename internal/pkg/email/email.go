// Package email holds the address rules shared by the verification flow.
package email

import "strings"

// Normalize lower-cases and trims an address for case-insensitive matching.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// DomainSuffix turns a configured domain ("muc.edu.eg" or "@MUC.edu.eg")
// into the "@muc.edu.eg" form matched against addresses.
func DomainSuffix(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" || strings.HasPrefix(d, "@") {
		return d
	}
	return "@" + d
}

// HasSuffix reports whether addr belongs to the institutional domain
// (e.g. "@muc.edu.eg"), ignoring case. An empty domain never matches.
func HasSuffix(addr, domain string) bool {
	s := DomainSuffix(domain)
	if s == "" {
		return false
	}
	a := Normalize(addr)
	return len(a) > len(s) && strings.HasSuffix(a, s)
}
