package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/dbx"
	"github.com/dmitrijs2005/admagic/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.VerificationToken) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO verification_tokens (id, email, token, kind, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, t.ID, t.Email, t.Token, string(t.Kind), t.ExpiresAt).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string, kind models.TokenKind) (*models.VerificationToken, error) {
	query :=
		`SELECT id, email, token, kind, expires_at, used_at, created_at FROM verification_tokens
		 WHERE token = $1 AND kind = $2`

	var (
		t      models.VerificationToken
		k      string
		usedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, token, string(kind)).
		Scan(&t.ID, &t.Email, &t.Token, &k, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	t.Kind = models.TokenKind(k)
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return &t, nil
}

// MarkUsed redeems the token. It fails with common.ErrorNotFound when the
// token is unknown or was already used, so concurrent redemptions cannot
// both succeed.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE verification_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string, kind models.TokenKind) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE email = $1 AND kind = $2`, email, string(kind))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE expires_at <= $1 OR used_at IS NOT NULL`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
