package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/jackc/pgx/v5"
)

type VerificationRepo struct{ db querier }

func NewVerificationRepo(db querier) *VerificationRepo { return &VerificationRepo{db: db} }

func (r *VerificationRepo) Put(ctx context.Context, v *domain.VerificationRecord) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO verifications (record_id, email, token, code, expires_at, used, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.Email, v.Token, v.Code, v.ExpiresAt, v.Used, v.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("verification %s exists: %w", v.ID, domain.ErrConflict)
	}
	return err
}

func (r *VerificationRepo) FindLatestUnused(ctx context.Context, q domain.VerificationLookup) (*domain.VerificationRecord, error) {
	var row pgx.Row
	if q.Token != "" {
		row = r.db.QueryRow(ctx, `
SELECT record_id, email, token, code, expires_at, used, created_at
FROM verifications
WHERE code = $1 AND token = $2 AND NOT used
ORDER BY record_id DESC
LIMIT 1`, q.Code, q.Token)
	} else {
		row = r.db.QueryRow(ctx, `
SELECT record_id, email, token, code, expires_at, used, created_at
FROM verifications
WHERE code = $1 AND email = $2 AND NOT used
ORDER BY record_id DESC
LIMIT 1`, q.Code, q.Email)
	}
	var v domain.VerificationRecord
	err := row.Scan(&v.ID, &v.Email, &v.Token, &v.Code, &v.ExpiresAt, &v.Used, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkUsed is a compare-and-set on used; only the first caller sees a row change.
func (r *VerificationRepo) MarkUsed(ctx context.Context, recordID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE verifications SET used = TRUE WHERE record_id = $1 AND NOT used`, recordID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
