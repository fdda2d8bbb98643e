// Package services contains the server-side business logic. AuthService
// implements account registration, credential sign-in, bearer session
// resolution, and the emailed verification and password reset flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/dbx"
	"github.com/dmitrijs2005/admagic/internal/logging"
	"github.com/dmitrijs2005/admagic/internal/server/auth"
	"github.com/dmitrijs2005/admagic/internal/server/config"
	"github.com/dmitrijs2005/admagic/internal/server/mailer"
	"github.com/dmitrijs2005/admagic/internal/server/models"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/repomanager"
)

const (
	minPasswordLen = 8
	emailTokenSize = 32
)

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Username string
}

// AuthResult is a user together with the session backing its access token.
// Session.Token is the bearer credential handed to the client.
type AuthResult struct {
	User    *models.User
	Session *models.Session
}

type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	mailer          mailer.Mailer
	mails           *mailer.Builder
	logger          logging.Logger
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	verificationTTL time.Duration
	resetTTL        time.Duration
	now             func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, l logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:              db,
		repomanager:     m,
		mailer:          ml,
		mails:           mailer.NewBuilder(cfg.AppURL),
		logger:          l,
		jwtSecret:       []byte(cfg.SecretKey),
		accessTokenTTL:  cfg.AccessTokenTTL,
		verificationTTL: cfg.VerificationTTL,
		resetTTL:        cfg.ResetTTL,
		now:             time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLen)
	}
	return nil
}

// newSession mints an access token for u and stores its session row.
func (s *AuthService) newSession(ctx context.Context, db dbx.DBTX, u *models.User) (*models.Session, error) {
	now := s.now()
	token, expires, err := auth.GenerateToken(u.ID, u.Email, s.jwtSecret, now, s.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	sess := &models.Session{UserID: u.ID, Token: token, ExpiresAt: expires}
	if err := s.repomanager.Sessions(db).Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	local := common.EmailLocalPart(email)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = local
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = local
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var res AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        email,
			Name:         name,
			Username:     username,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		sess, err := s.newSession(ctx, tx, u)
		if err != nil {
			return err
		}
		res = AuthResult{User: u, Session: sess}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed up", "user_id", res.User.ID)

	if msg, err := s.mails.Welcome(email, name); err == nil {
		s.deliver(ctx, msg)
	}
	if err := s.sendVerification(ctx, res.User); err != nil {
		s.logger.Warn(ctx, "verification email not sent", "user_id", res.User.ID, "error", err)
	}

	return &res, nil
}

// SignIn replaces any existing session of the user, so at most one access
// token per account is live.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	var sess *models.Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Sessions(tx).DeleteByUser(ctx, u.ID); err != nil {
			return err
		}
		sess, err = s.newSession(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed in", "user_id", u.ID)
	return &AuthResult{User: u, Session: sess}, nil
}

// SignOut drops the session row for token. Unknown tokens are not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repomanager.Sessions(s.db).DeleteByToken(ctx, token)
}

// Session resolves a bearer token. The JWT must verify and its session row
// must exist and be unexpired.
func (s *AuthService) Session(ctx context.Context, token string) (*AuthResult, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	sess, err := s.repomanager.Sessions(s.db).FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if sess.UserID != claims.Subject {
		return nil, common.ErrInvalidToken
	}
	if sess.Expired(s.now()) {
		return nil, common.ErrTokenExpired
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	return &AuthResult{User: u, Session: sess}, nil
}

// SendVerificationEmail issues a fresh verification link. Unknown and
// already verified addresses succeed silently.
func (s *AuthService) SendVerificationEmail(ctx context.Context, email string) error {
	u, err := s.lookup(ctx, email)
	if err != nil || u == nil {
		return err
	}
	if u.EmailVerified {
		return nil
	}
	return s.sendVerification(ctx, u)
}

// ForgetPassword issues a password reset link. Unknown addresses succeed
// silently.
func (s *AuthService) ForgetPassword(ctx context.Context, email string) error {
	u, err := s.lookup(ctx, email)
	if err != nil || u == nil {
		return err
	}

	token, err := s.issueToken(ctx, u.Email, models.TokenPasswordReset, s.resetTTL)
	if err != nil {
		return err
	}
	msg, err := s.mails.PasswordReset(u.Email, u.Name, token, humanTTL(s.resetTTL))
	if err != nil {
		return err
	}
	s.deliver(ctx, msg)
	return nil
}

// ResetPassword redeems a reset token, stores the new password and ends all
// of the user's sessions.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	vt, err := s.redeemable(ctx, token, models.TokenPasswordReset)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).GetByEmail(ctx, vt.Email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		if err := s.repomanager.Verifications(tx).MarkUsed(ctx, vt.ID, s.now()); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, u.ID, hash); err != nil {
			return err
		}
		return s.repomanager.Sessions(tx).DeleteByUser(ctx, u.ID)
	})
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	vt, err := s.redeemable(ctx, token, models.TokenEmailVerification)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Verifications(tx).MarkUsed(ctx, vt.ID, s.now()); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		if err := s.repomanager.Users(tx).MarkEmailVerified(ctx, vt.Email); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		return nil
	})
}

// CleanupExpired purges expired sessions and spent or expired email tokens.
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	now := s.now()
	n1, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	n2, err := s.repomanager.Verifications(s.db).DeleteExpired(ctx, now)
	if err != nil {
		return n1, err
	}
	return n1 + n2, nil
}

// lookup returns nil without error when no account uses email.
func (s *AuthService) lookup(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "email token requested for unknown address")
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) redeemable(ctx context.Context, token string, kind models.TokenKind) (*models.VerificationToken, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	vt, err := s.repomanager.Verifications(s.db).Find(ctx, token, kind)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if vt.UsedAt != nil {
		return nil, common.ErrInvalidToken
	}
	if !vt.Usable(s.now()) {
		return nil, common.ErrTokenExpired
	}
	return vt, nil
}

// issueToken replaces any outstanding token of the same kind for email.
func (s *AuthService) issueToken(ctx context.Context, email string, kind models.TokenKind, ttl time.Duration) (string, error) {
	token, err := common.MakeRandHexString(emailTokenSize)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Verifications(tx)
		if err := repo.DeleteByEmail(ctx, email, kind); err != nil {
			return err
		}
		return repo.Create(ctx, &models.VerificationToken{
			Email:     email,
			Token:     token,
			Kind:      kind,
			ExpiresAt: s.now().Add(ttl),
		})
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) sendVerification(ctx context.Context, u *models.User) error {
	token, err := s.issueToken(ctx, u.Email, models.TokenEmailVerification, s.verificationTTL)
	if err != nil {
		return err
	}
	msg, err := s.mails.Verification(u.Email, u.Name, token, humanTTL(s.verificationTTL))
	if err != nil {
		return err
	}
	s.deliver(ctx, msg)
	return nil
}

// deliver sends best-effort: a mail failure never fails the request.
func (s *AuthService) deliver(ctx context.Context, msg mailer.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn(ctx, "mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}

func humanTTL(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
