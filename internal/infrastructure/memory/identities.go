package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

// IdentityRepo is keyed by normalized email, like its DynamoDB counterpart.
type IdentityRepo struct {
	mu         sync.Mutex
	identities map[string]domain.Identity
	now        func() time.Time
}

func NewIdentityRepo() *IdentityRepo {
	return &IdentityRepo{identities: make(map[string]domain.Identity), now: time.Now}
}

func (r *IdentityRepo) GetByEmail(_ context.Context, emailLower string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.identities[emailLower]
	if !ok {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	return &ident, nil
}

func (r *IdentityRepo) Create(_ context.Context, ident *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.identities[ident.EmailLower]; ok {
		return fmt.Errorf("identity for %s exists: %w", ident.Email, domain.ErrConflict)
	}
	r.identities[ident.EmailLower] = *ident
	return nil
}

func (r *IdentityRepo) UpdateRole(_ context.Context, emailLower, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident, ok := r.identities[emailLower]
	if !ok {
		return fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	ident.Role = role
	ident.UpdatedAt = r.now().UTC()
	r.identities[emailLower] = ident
	return nil
}

func (r *IdentityRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.identities)
}
