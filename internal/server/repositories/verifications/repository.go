package verifications

import (
	"context"
	"time"

	"github.com/dmitrijs2005/admagic/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.VerificationToken) error
	Find(ctx context.Context, token string, kind models.TokenKind) (*models.VerificationToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteByEmail(ctx context.Context, email string, kind models.TokenKind) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
