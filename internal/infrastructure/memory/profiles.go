package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
)

type ProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	now      func() time.Time
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{profiles: make(map[string]domain.Profile), now: time.Now}
}

func (r *ProfileRepo) Get(_ context.Context, profileID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (r *ProfileRepo) GetByEmail(_ context.Context, addr string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := email.Normalize(addr)
	for _, p := range r.profiles {
		if p.EmailLower == n {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
}

// Insert fails with domain.ErrConflict if the id or the email is taken.
func (r *ProfileRepo) Insert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ProfileID]; ok {
		return fmt.Errorf("profile %s exists: %w", p.ProfileID, domain.ErrConflict)
	}
	for _, existing := range r.profiles {
		if existing.EmailLower == p.EmailLower {
			return fmt.Errorf("profile for %s exists: %w", p.Email, domain.ErrConflict)
		}
	}
	r.profiles[p.ProfileID] = *p
	return nil
}

func (r *ProfileRepo) UpdateRole(_ context.Context, profileID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[profileID]
	if !ok {
		return fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	p.Role = role
	p.UpdatedAt = r.now().UTC()
	r.profiles[profileID] = p
	return nil
}

// ReassignID moves the row at oldID to newID and sets its role.
func (r *ProfileRepo) ReassignID(_ context.Context, oldID, newID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[oldID]
	if !ok {
		return fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	if _, taken := r.profiles[newID]; taken {
		return fmt.Errorf("profile %s exists: %w", newID, domain.ErrConflict)
	}
	delete(r.profiles, oldID)
	p.ProfileID = newID
	p.Role = role
	p.UpdatedAt = r.now().UTC()
	r.profiles[newID] = p
	return nil
}

// Count returns the number of stored profiles.
func (r *ProfileRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}
