package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
	"github.com/jackc/pgx/v5"
)

type ProfileRepo struct{ db querier }

func NewProfileRepo(db querier) *ProfileRepo { return &ProfileRepo{db: db} }

const profileColumns = `profile_id, email, email_lower, role, full_name, phone, avatar_path, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ProfileID, &p.Email, &p.EmailLower, &p.Role, &p.FullName, &p.Phone, &p.AvatarPath, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE profile_id = $1`, profileID))
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, addr string) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email_lower = $1`, email.Normalize(addr)))
}

func (r *ProfileRepo) Insert(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO profiles (`+profileColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ProfileID, p.Email, p.EmailLower, p.Role, p.FullName, p.Phone, p.AvatarPath, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile for %s exists: %w", p.Email, domain.ErrConflict)
	}
	return err
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, profileID, role string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET role = $2, updated_at = now() WHERE profile_id = $1`, profileID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	return nil
}

// ReassignID rewrites the primary key in place; a taken newID is a conflict.
func (r *ProfileRepo) ReassignID(ctx context.Context, oldID, newID, role string) error {
	tag, err := r.db.Exec(ctx, `
UPDATE profiles SET profile_id = $2, role = $3, updated_at = now()
WHERE profile_id = $1`, oldID, newID, role)
	if isUniqueViolation(err) {
		return fmt.Errorf("reassign profile %s to %s: %w", oldID, newID, domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	return nil
}
