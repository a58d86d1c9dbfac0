package role

import (
	"context"

	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
)

// Assignment is the role an address receives on its next redemption.
type Assignment struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Service interface {
	// List returns the admin allow-list.
	List(ctx context.Context) []string
	// Resolve reports the role each address would be assigned.
	Resolve(ctx context.Context, emails []string) []Assignment
}

type policy interface {
	RoleFor(addr string) string
	Admins() []string
}

type service struct {
	policy policy
}

func NewService(p policy) Service {
	return &service{policy: p}
}

func (s *service) List(_ context.Context) []string {
	return s.policy.Admins()
}

func (s *service) Resolve(_ context.Context, emails []string) []Assignment {
	out := make([]Assignment, 0, len(emails))
	for _, e := range emails {
		out = append(out, Assignment{Email: email.Normalize(e), Role: s.policy.RoleFor(e)})
	}
	return out
}
