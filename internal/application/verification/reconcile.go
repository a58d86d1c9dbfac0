package verification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
)

// Reconciliation steps reported in warnings.
const (
	StepIdentityLookup = "identity_lookup"
	StepIdentityUpdate = "identity_update_role"
	StepIdentityCreate = "identity_create"
	StepProfileLookup  = "profile_lookup"
	StepProfileInsert  = "profile_insert"
	StepProfileRole    = "profile_update_role"
	StepProfileDrift   = "profile_sync_id"
)

var errNoIdentity = errors.New("identity id unavailable")

type warnFunc func(step string, err error)

// reconcile brings the directory identity and the profile row in line with
// role and with each other. It never fails; problems come back as warnings.
func (s *service) reconcile(ctx context.Context, addr, role string) []domain.Warning {
	var warnings []domain.Warning
	warn := func(step string, err error) {
		w := domain.Warning{Step: step, Email: addr, Detail: err.Error()}
		warnings = append(warnings, w)
		slog.Warn("identity reconciliation step failed", "step", step, "email", addr, "err", err)
		if s.sink == nil {
			return
		}
		if perr := s.sink.Publish(ctx, w); perr != nil {
			slog.Warn("failed to publish reconciliation warning", "step", step, "err", perr)
		}
	}

	authID := s.syncIdentity(ctx, addr, role, warn)
	s.syncProfile(ctx, addr, role, authID, warn)
	return warnings
}

// syncIdentity returns the directory id for addr, or "" when none could be
// found or created.
func (s *service) syncIdentity(ctx context.Context, addr, role string, warn warnFunc) string {
	ident, err := s.directory.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		if err := s.directory.UpdateRoleMetadata(ctx, ident, role); err != nil {
			warn(StepIdentityUpdate, err)
		}
		return ident.IdentityID
	case errors.Is(err, domain.ErrNotFound):
		created, err := s.directory.Create(ctx, addr, role)
		if err != nil {
			warn(StepIdentityCreate, err)
			return ""
		}
		return created.IdentityID
	default:
		// Creating here could duplicate an identity we merely failed to read.
		warn(StepIdentityLookup, err)
		return ""
	}
}

func (s *service) syncProfile(ctx context.Context, addr, role, authID string, warn warnFunc) {
	p, err := s.profiles.GetByEmail(ctx, addr)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		warn(StepProfileLookup, err)
		return
	}

	if authID == "" {
		// Without an identity id a new row cannot be keyed; keep the role current.
		if p == nil {
			warn(StepProfileInsert, errNoIdentity)
			return
		}
		if err := s.profiles.UpdateRole(ctx, p.ProfileID, role); err != nil {
			warn(StepProfileRole, err)
		}
		return
	}

	switch {
	case p == nil:
		now := s.now().UTC()
		err := s.profiles.Insert(ctx, &domain.Profile{
			ProfileID:  authID,
			Email:      addr,
			EmailLower: email.Normalize(addr),
			Role:       role,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			warn(StepProfileInsert, err)
		}
	case p.ProfileID == authID:
		if err := s.profiles.UpdateRole(ctx, authID, role); err != nil {
			warn(StepProfileRole, err)
		}
	default:
		// Drift: the row predates the identity. Move it onto the identity id,
		// or at least keep its role right if the move collides.
		if err := s.profiles.ReassignID(ctx, p.ProfileID, authID, role); err != nil {
			warn(StepProfileDrift, err)
			if err := s.profiles.UpdateRole(ctx, p.ProfileID, role); err != nil {
				warn(StepProfileRole, err)
			}
		}
	}
}

