// Package directory is the identity registry: one identity per normalized
// email, plus one-time sign-in links signed for those identities.
package directory

import (
	"context"
	"net/url"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/id"
	"github.com/google/uuid"
)

// CallbackPath is where sign-in links land on this API.
const CallbackPath = "/v1/auth/callback"

type identityStore interface {
	GetByEmail(ctx context.Context, emailLower string) (*domain.Identity, error)
	Create(ctx context.Context, ident *domain.Identity) error
	UpdateRole(ctx context.Context, emailLower, role string) error
}

type linkSigner interface {
	SignLink(email, linkID string, ttl time.Duration) (string, error)
}

type Directory struct {
	identities identityStore
	signer     linkSigner
	apiBaseURL string
	linkTTL    time.Duration
	now        func() time.Time
}

func New(identities identityStore, signer linkSigner, apiBaseURL string, linkTTL time.Duration) *Directory {
	return &Directory{
		identities: identities,
		signer:     signer,
		apiBaseURL: apiBaseURL,
		linkTTL:    linkTTL,
		now:        time.Now,
	}
}

// FindByEmail returns domain.ErrNotFound when no identity exists for addr.
func (d *Directory) FindByEmail(ctx context.Context, addr string) (*domain.Identity, error) {
	return d.identities.GetByEmail(ctx, email.Normalize(addr))
}

// Create registers a confirmed identity. It fails with domain.ErrConflict when
// one already exists for the address.
func (d *Directory) Create(ctx context.Context, addr, role string) (*domain.Identity, error) {
	now := d.now().UTC()
	ident := &domain.Identity{
		IdentityID: uuid.NewString(),
		Email:      addr,
		EmailLower: email.Normalize(addr),
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := d.identities.Create(ctx, ident); err != nil {
		return nil, err
	}
	return ident, nil
}

func (d *Directory) UpdateRoleMetadata(ctx context.Context, ident *domain.Identity, role string) error {
	if err := d.identities.UpdateRole(ctx, ident.EmailLower, role); err != nil {
		return err
	}
	ident.Role = role
	return nil
}

// GenerateSignInLink returns a single-use URL that exchanges for a bearer token.
func (d *Directory) GenerateSignInLink(ctx context.Context, addr string) (string, error) {
	tok, err := d.signer.SignLink(email.Normalize(addr), id.New(), d.linkTTL)
	if err != nil {
		return "", err
	}
	return d.apiBaseURL + CallbackPath + "?token=" + url.QueryEscape(tok), nil
}
