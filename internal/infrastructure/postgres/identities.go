package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/jackc/pgx/v5"
)

type IdentityRepo struct{ db querier }

func NewIdentityRepo(db querier) *IdentityRepo { return &IdentityRepo{db: db} }

func (r *IdentityRepo) GetByEmail(ctx context.Context, emailLower string) (*domain.Identity, error) {
	var ident domain.Identity
	err := r.db.QueryRow(ctx, `
SELECT identity_id, email, email_lower, role, created_at, updated_at
FROM identities WHERE email_lower = $1`, emailLower).
		Scan(&ident.IdentityID, &ident.Email, &ident.EmailLower, &ident.Role, &ident.CreatedAt, &ident.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

func (r *IdentityRepo) Create(ctx context.Context, ident *domain.Identity) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO identities (identity_id, email, email_lower, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		ident.IdentityID, ident.Email, ident.EmailLower, ident.Role, ident.CreatedAt, ident.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("identity for %s exists: %w", ident.Email, domain.ErrConflict)
	}
	return err
}

func (r *IdentityRepo) UpdateRole(ctx context.Context, emailLower, role string) error {
	tag, err := r.db.Exec(ctx, `UPDATE identities SET role = $2, updated_at = now() WHERE email_lower = $1`, emailLower, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	return nil
}
