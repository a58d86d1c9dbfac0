package postgres

import (
	"context"
	"fmt"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

type SignInLinkRepo struct{ db querier }

func NewSignInLinkRepo(db querier) *SignInLinkRepo { return &SignInLinkRepo{db: db} }

func (r *SignInLinkRepo) Consume(ctx context.Context, l *domain.SignInLink) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO signin_links (link_id, email, expires_at, consumed_at)
VALUES ($1, $2, $3, $4)`, l.LinkID, l.Email, l.ExpiresAt, l.ConsumedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("sign-in link %s already used: %w", l.LinkID, domain.ErrConflict)
	}
	return err
}
