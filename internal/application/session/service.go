package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	jwtinfra "github.com/AymanSha3ban/MUC-Library/internal/infrastructure/jwt"
)

type SignInResult struct {
	Bearer   string
	Identity *domain.Identity
}

type Service interface {
	// SignIn exchanges a one-time sign-in link token for a bearer token.
	SignIn(ctx context.Context, linkToken string) (*SignInResult, error)
	// GetCurrent returns the profile of the signed-in user.
	GetCurrent(ctx context.Context, email string) (*domain.Profile, error)
}

type linkStore interface {
	Consume(ctx context.Context, l *domain.SignInLink) error
}

// identityDirectory resolves the identity behind a link. Create is only used
// when the redemption could not register one.
type identityDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Create(ctx context.Context, email, role string) (*domain.Identity, error)
}

type rolePolicy interface {
	RoleFor(addr string) string
}

type profileFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

type tokenProvider interface {
	VerifyLink(tokenStr string) (*jwtinfra.LinkClaims, error)
	Sign(userID, email, role string) (string, error)
}

type service struct {
	links      linkStore
	identities identityDirectory
	profiles   profileFinder
	tokens     tokenProvider
	policy     rolePolicy
	now        func() time.Time
}

func NewService(links linkStore, identities identityDirectory, profiles profileFinder, tokens tokenProvider, policy rolePolicy) Service {
	return &service{
		links:      links,
		identities: identities,
		profiles:   profiles,
		tokens:     tokens,
		policy:     policy,
		now:        time.Now,
	}
}

func (s *service) SignIn(ctx context.Context, linkToken string) (*SignInResult, error) {
	claims, err := s.tokens.VerifyLink(linkToken)
	if err != nil {
		return nil, fmt.Errorf("invalid sign-in link: %w", domain.ErrUnauthorized)
	}
	var expiresAt int64
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Unix()
	}
	err = s.links.Consume(ctx, &domain.SignInLink{
		LinkID:     claims.ID,
		Email:      claims.Subject,
		ExpiresAt:  expiresAt,
		ConsumedAt: s.now().UTC(),
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("sign-in link already used: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	ident, err := s.resolveIdentity(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	bearer, err := s.tokens.Sign(ident.IdentityID, ident.EmailLower, ident.Role)
	if err != nil {
		return nil, err
	}
	return &SignInResult{Bearer: bearer, Identity: ident}, nil
}

// resolveIdentity returns the identity for addr, registering it when the
// redemption that issued the link failed to.
func (s *service) resolveIdentity(ctx context.Context, addr string) (*domain.Identity, error) {
	ident, err := s.identities.FindByEmail(ctx, addr)
	if !errors.Is(err, domain.ErrNotFound) {
		return ident, err
	}
	role := s.policy.RoleFor(addr)
	ident, err = s.identities.Create(ctx, addr, role)
	if errors.Is(err, domain.ErrConflict) {
		return s.identities.FindByEmail(ctx, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("create identity for sign-in link: %w", err)
	}
	slog.Info("identity created at sign-in", "email", addr, "role", role)
	return ident, nil
}

func (s *service) GetCurrent(ctx context.Context, email string) (*domain.Profile, error) {
	return s.profiles.GetByEmail(ctx, email)
}
