package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

type SignInLinkRepo struct {
	mu    sync.Mutex
	links map[string]domain.SignInLink
}

func NewSignInLinkRepo() *SignInLinkRepo {
	return &SignInLinkRepo{links: make(map[string]domain.SignInLink)}
}

// Consume records the link as used. A second call for the same id fails with domain.ErrConflict.
func (r *SignInLinkRepo) Consume(_ context.Context, l *domain.SignInLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[l.LinkID]; ok {
		return fmt.Errorf("sign-in link %s already used: %w", l.LinkID, domain.ErrConflict)
	}
	r.links[l.LinkID] = *l
	return nil
}
