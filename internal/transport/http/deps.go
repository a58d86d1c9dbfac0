package http

import (
	"context"

	"github.com/AymanSha3ban/MUC-Library/internal/application/role"
	"github.com/AymanSha3ban/MUC-Library/internal/application/session"
	"github.com/AymanSha3ban/MUC-Library/internal/application/verification"
	"github.com/AymanSha3ban/MUC-Library/internal/config"
	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/directory"
	jwtinfra "github.com/AymanSha3ban/MUC-Library/internal/infrastructure/jwt"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/qr"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/smtp"
)

// VerificationRepository is the minimal interface the router requires from a verification store.
type VerificationRepository interface {
	Put(ctx context.Context, v *domain.VerificationRecord) error
	// FindLatestUnused returns the newest unused record matching q, or domain.ErrNotFound.
	FindLatestUnused(ctx context.Context, q domain.VerificationLookup) (*domain.VerificationRecord, error)
	// MarkUsed flips used to true only if it is still false; false means another caller won.
	MarkUsed(ctx context.Context, recordID string) (bool, error)
}

// ProfileRepository is the minimal interface the router requires from a profile store.
type ProfileRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Insert(ctx context.Context, p *domain.Profile) error
	UpdateRole(ctx context.Context, profileID, role string) error
	ReassignID(ctx context.Context, oldID, newID, role string) error
}

// IdentityRepository is the minimal interface the router requires from an identity store.
type IdentityRepository interface {
	GetByEmail(ctx context.Context, emailLower string) (*domain.Identity, error)
	Create(ctx context.Context, ident *domain.Identity) error
	UpdateRole(ctx context.Context, emailLower, role string) error
}

// SignInLinkRepository records consumed sign-in links.
type SignInLinkRepository interface {
	Consume(ctx context.Context, l *domain.SignInLink) error
}

// WarningSink receives reconciliation warnings. Leave it nil to only log them.
type WarningSink interface {
	Publish(ctx context.Context, w domain.Warning) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	VerificationRepo VerificationRepository
	ProfileRepo      ProfileRepository
	IdentityRepo     IdentityRepository
	SignInLinkRepo   SignInLinkRepository
	Mailer           smtp.Mailer
	QR               *qr.Renderer
	Warnings         WarningSink
	Policy           *verification.RolePolicy
	JWTProvider      *jwtinfra.Provider
}

// Directory builds the identity registry over the identity store.
func (d *Deps) Directory(cfg *config.Config) *directory.Directory {
	return directory.New(d.IdentityRepo, d.JWTProvider, cfg.APIBaseURL, cfg.SignInLinkTTL)
}

func (d *Deps) VerificationService(cfg *config.Config) verification.Service {
	return verification.NewService(verification.ServiceDeps{
		VerificationRepo: d.VerificationRepo,
		ProfileRepo:      d.ProfileRepo,
		Directory:        d.Directory(cfg),
		Mailer:           d.Mailer,
		QR:               d.QR,
		Warnings:         d.Warnings,
		Policy:           d.policy(),
		EmailDomain:      cfg.AllowedEmailDomain,
		TTL:              cfg.VerificationTTL,
		FrontendURL:      cfg.FrontendURL,
		QRContent:        cfg.QRContent,
	})
}

func (d *Deps) SessionService(cfg *config.Config) session.Service {
	return session.NewService(d.SignInLinkRepo, d.Directory(cfg), d.ProfileRepo, d.JWTProvider, d.policy())
}

func (d *Deps) RoleService() role.Service {
	return role.NewService(d.policy())
}

// policy falls back to an empty allow-list, so everyone is a student.
func (d *Deps) policy() *verification.RolePolicy {
	if d.Policy == nil {
		return verification.NewRolePolicy(nil)
	}
	return d.Policy
}
