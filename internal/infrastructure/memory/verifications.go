// Package memory holds in-process stores for local development, the CLI and
// tests. Every store is safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

type VerificationRepo struct {
	mu      sync.Mutex
	records map[string]domain.VerificationRecord
}

func NewVerificationRepo() *VerificationRepo {
	return &VerificationRepo{records: make(map[string]domain.VerificationRecord)}
}

func (r *VerificationRepo) Put(_ context.Context, v *domain.VerificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[v.ID] = *v
	return nil
}

// FindLatestUnused returns the unused record for q with the greatest id.
func (r *VerificationRepo) FindLatestUnused(_ context.Context, q domain.VerificationLookup) (*domain.VerificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.VerificationRecord
	for _, v := range r.records {
		if v.Used || v.Code != q.Code {
			continue
		}
		if q.Token != "" && v.Token != q.Token {
			continue
		}
		if q.Token == "" && v.Email != q.Email {
			continue
		}
		if best == nil || v.ID > best.ID {
			v := v
			best = &v
		}
	}
	if best == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	return best, nil
}

// MarkUsed flips used to true and reports whether this call did it.
func (r *VerificationRepo) MarkUsed(_ context.Context, recordID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[recordID]
	if !ok {
		return false, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	if v.Used {
		return false, nil
	}
	v.Used = true
	r.records[recordID] = v
	return true, nil
}

// Get returns a copy of the stored record.
func (r *VerificationRepo) Get(_ context.Context, recordID string) (*domain.VerificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[recordID]
	if !ok {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	return &v, nil
}
