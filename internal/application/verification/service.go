package verification

import (
	"context"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/smtp"
)

// QR payload modes for ServiceDeps.QRContent.
const (
	QRContentCode = "code"
	QRContentLink = "link"
)

type IssueRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RedeemRequest carries the emailed code plus exactly one identifier.
// Token wins when both are present.
type RedeemRequest struct {
	Code  string `json:"code" validate:"required,len=6,numeric"`
	Token string `json:"token,omitempty" validate:"omitempty,uuid4"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type RedeemResult struct {
	RedirectURL string
	Role        string
	Warnings    []domain.Warning
}

type Service interface {
	// Issue persists a fresh record for email and mails its code.
	Issue(ctx context.Context, email string) (*domain.VerificationRecord, error)
	// Redeem burns a valid code, reconciles identity and profile, and returns a sign-in link.
	Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error)
}

type codeStore interface {
	Put(ctx context.Context, v *domain.VerificationRecord) error
	FindLatestUnused(ctx context.Context, q domain.VerificationLookup) (*domain.VerificationRecord, error)
	MarkUsed(ctx context.Context, recordID string) (bool, error)
}

type profileStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Insert(ctx context.Context, p *domain.Profile) error
	UpdateRole(ctx context.Context, profileID, role string) error
	ReassignID(ctx context.Context, oldID, newID, role string) error
}

// Directory is the identity registry the redeemer reconciles against.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Create(ctx context.Context, email, role string) (*domain.Identity, error)
	UpdateRoleMetadata(ctx context.Context, ident *domain.Identity, role string) error
	GenerateSignInLink(ctx context.Context, email string) (string, error)
}

type mailer interface {
	SendEmail(ctx context.Context, msg smtp.Message) error
}

// qrRenderer turns content into an <img src> value: a data URI or a hosted URL.
type qrRenderer interface {
	Render(ctx context.Context, key, content string, ttl time.Duration) (string, error)
}

type warningSink interface {
	Publish(ctx context.Context, w domain.Warning) error
}

type service struct {
	codes       codeStore
	profiles    profileStore
	directory   Directory
	mailer      mailer
	qr          qrRenderer
	sink        warningSink
	policy      *RolePolicy
	emailDomain string
	ttl         time.Duration
	frontendURL string
	qrContent   string
	now         func() time.Time
}

type ServiceDeps struct {
	VerificationRepo codeStore
	ProfileRepo      profileStore
	Directory        Directory
	Mailer           mailer
	QR               qrRenderer
	Warnings         warningSink // optional
	Policy           *RolePolicy
	EmailDomain      string
	TTL              time.Duration
	FrontendURL      string
	QRContent        string
	Now              func() time.Time // optional, defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	policy := deps.Policy
	if policy == nil {
		policy = NewRolePolicy(nil)
	}
	return &service{
		codes:       deps.VerificationRepo,
		profiles:    deps.ProfileRepo,
		directory:   deps.Directory,
		mailer:      deps.Mailer,
		qr:          deps.QR,
		sink:        deps.Warnings,
		policy:      policy,
		emailDomain: deps.EmailDomain,
		ttl:         deps.TTL,
		frontendURL: deps.FrontendURL,
		qrContent:   deps.QRContent,
		now:         now,
	}
}
