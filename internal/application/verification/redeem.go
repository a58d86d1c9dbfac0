package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

func (s *service) Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	q := domain.VerificationLookup{Code: strings.TrimSpace(req.Code)}
	switch {
	case req.Token != "":
		q.Token = req.Token
	case strings.TrimSpace(req.Email) != "":
		q.Email = strings.TrimSpace(req.Email)
	default:
		return nil, domain.ErrMissingIdentifier
	}

	rec, err := s.codes.FindLatestUnused(ctx, q)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup verification: %w", domain.ErrStorage, err)
	}
	// Expired records are rejected but not burned.
	if rec.Expired(s.now()) {
		return nil, domain.ErrExpiredCode
	}

	// The burn is a compare-and-set on used=false and must land before any
	// identity side effect, so a concurrent or retried request loses here.
	won, err := s.codes.MarkUsed(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: mark verification used: %w", domain.ErrStorage, err)
	}
	if !won {
		return nil, domain.ErrInvalidOrExpiredCode
	}

	role := s.policy.RoleFor(rec.Email)
	warnings := s.reconcile(ctx, rec.Email, role)

	link, err := s.directory.GenerateSignInLink(ctx, rec.Email)
	if err != nil {
		return nil, fmt.Errorf("generate sign-in link: %w", err)
	}
	return &RedeemResult{RedirectURL: link, Role: role, Warnings: warnings}, nil
}
