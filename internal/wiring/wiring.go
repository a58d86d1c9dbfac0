// Package wiring assembles the router dependencies from configuration.
package wiring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AymanSha3ban/MUC-Library/internal/application/verification"
	"github.com/AymanSha3ban/MUC-Library/internal/config"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/dynamo"
	jwtinfra "github.com/AymanSha3ban/MUC-Library/internal/infrastructure/jwt"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/memory"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/postgres"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/qr"
	s3infra "github.com/AymanSha3ban/MUC-Library/internal/infrastructure/s3"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/smtp"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/sns"
	transporthttp "github.com/AymanSha3ban/MUC-Library/internal/transport/http"
)

// Build opens the configured store and returns the router dependencies along
// with a func that releases them.
func Build(ctx context.Context, cfg *config.Config) (*transporthttp.Deps, func(), error) {
	deps := &transporthttp.Deps{}
	closeFn, err := OpenStores(ctx, cfg, deps)
	if err != nil {
		return nil, nil, err
	}

	admins, err := cfg.AdminList()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	deps.Policy = verification.NewRolePolicy(admins)

	provider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("jwt provider: %w", err)
	}
	deps.JWTProvider = provider

	deps.Mailer = smtp.NewMailer(cfg)

	if cfg.QRBucket != "" {
		client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		deps.QR = qr.NewHostedRenderer(s3infra.NewStore(client, cfg.QRBucket))
	} else {
		deps.QR = qr.NewDataURIRenderer()
	}

	// Warnings stays a nil interface unless a topic is configured.
	if cfg.WarningsTopicARN != "" {
		pub, err := sns.NewWarningPublisher(ctx, cfg)
		if err != nil {
			slog.Warn("warning publisher not available", "err", err)
		} else {
			deps.Warnings = pub
		}
	}
	return deps, closeFn, nil
}

// OpenStores fills the repository fields of deps for cfg.StoreDriver.
func OpenStores(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) (func(), error) {
	switch cfg.StoreDriver {
	case config.DriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		deps.VerificationRepo = dynamo.NewVerificationRepo(client, cfg.DynamoTables.Verifications)
		deps.ProfileRepo = dynamo.NewProfileRepo(client, cfg.DynamoTables.Profiles)
		deps.IdentityRepo = dynamo.NewIdentityRepo(client, cfg.DynamoTables.Identities)
		deps.SignInLinkRepo = dynamo.NewSignInLinkRepo(client, cfg.DynamoTables.SignInLinks)
		return func() {}, nil
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		deps.VerificationRepo = postgres.NewVerificationRepo(pool)
		deps.ProfileRepo = postgres.NewProfileRepo(pool)
		deps.IdentityRepo = postgres.NewIdentityRepo(pool)
		deps.SignInLinkRepo = postgres.NewSignInLinkRepo(pool)
		return pool.Close, nil
	case config.DriverMemory:
		slog.Warn("using in-memory store; data is lost on restart")
		deps.VerificationRepo = memory.NewVerificationRepo()
		deps.ProfileRepo = memory.NewProfileRepo()
		deps.IdentityRepo = memory.NewIdentityRepo()
		deps.SignInLinkRepo = memory.NewSignInLinkRepo()
		return func() {}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
