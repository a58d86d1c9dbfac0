package verification

import (
	"sort"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
)

// RolePolicy maps normalized emails to the admin role; everyone else is a student.
type RolePolicy struct {
	admins map[string]struct{}
}

func NewRolePolicy(admins []string) *RolePolicy {
	p := &RolePolicy{admins: make(map[string]struct{}, len(admins))}
	for _, a := range admins {
		if n := email.Normalize(a); n != "" {
			p.admins[n] = struct{}{}
		}
	}
	return p
}

// RoleFor returns domain.RoleAdmin for allow-listed addresses, compared case-insensitively.
func (p *RolePolicy) RoleFor(addr string) string {
	if _, ok := p.admins[email.Normalize(addr)]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleStudent
}

// Admins returns the normalized allow-list in sorted order.
func (p *RolePolicy) Admins() []string {
	out := make([]string, 0, len(p.admins))
	for a := range p.admins {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
