// Package service contains application services behind the screen router:
// the simulated authenticator, the rewards ledger and the scan session.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/ecorecicla/greengo/internal/crypto"
	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
	"github.com/ecorecicla/greengo/internal/repository"
)

// MinPasswordLen matches the sign-up form's minimum.
const MinPasswordLen = 8

// AuthService defines the seam a real authentication backend would fill.
type AuthService interface {
	// Login authenticates the user after the simulated latency.
	Login(ctx context.Context, email, password string) (*model.Session, error)
	// SignUp validates the form, then provisions the account after the
	// simulated latency.
	SignUp(ctx context.Context, email, password, confirm string) (*model.Session, error)
}

// DisplayName derives the user-facing name from the email local part.
// This is the only place the derivation lives.
func DisplayName(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// ValidateSignUp applies the synchronous form checks. They run before any
// simulated latency so the caller can surface the error in place.
func ValidateSignUp(password, confirm string) error {
	if len(password) < MinPasswordLen {
		return errs.ErrPasswordTooShort
	}
	if password != confirm {
		return errs.ErrPasswordMismatch
	}
	return nil
}

// SimAuth simulates the authentication backend: a fixed latency, then
// unconditional success. Unknown accounts are provisioned on the fly so
// that login can never fail, matching the reference behavior. Credential
// verification is deliberately absent; a real backend replaces this type
// behind AuthService and returns errs.ErrUnauthorized instead.
type SimAuth struct {
	accounts repository.AccountRepository
	signKey  []byte
	delay    time.Duration
	ttl      time.Duration
	log      *zap.Logger
}

// NewSimAuth constructs the simulated authenticator.
func NewSimAuth(accounts repository.AccountRepository, signKey []byte, delay, ttl time.Duration, log *zap.Logger) *SimAuth {
	return &SimAuth{accounts: accounts, signKey: signKey, delay: delay, ttl: ttl, log: log}
}

// Login waits out the simulated latency and returns a session for the
// account, provisioning it first if the email is unknown.
func (s *SimAuth) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" {
		return nil, errors.New("empty email")
	}
	if err := wait(ctx, s.delay); err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		acc, err = s.provision(ctx, email, password)
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info("login ok", zap.String("email", acc.Email))
	return s.newSession(acc)
}

// SignUp revalidates the form, waits out the simulated latency and
// provisions the account. An already-registered email falls through to
// the existing account, keeping sign-up unconditionally successful.
func (s *SimAuth) SignUp(ctx context.Context, email, password, confirm string) (*model.Session, error) {
	if email == "" {
		return nil, errors.New("empty email")
	}
	if err := ValidateSignUp(password, confirm); err != nil {
		return nil, err
	}
	if err := wait(ctx, s.delay); err != nil {
		return nil, err
	}

	acc, err := s.provision(ctx, email, password)
	if errors.Is(err, errs.ErrAlreadyExists) {
		acc, err = s.accounts.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.log.Info("account created", zap.String("email", acc.Email))
	return s.newSession(acc)
}

func (s *SimAuth) provision(ctx context.Context, email, password string) (*model.Account, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	salt, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return nil, err
	}
	acc := &model.Account{
		ID:        uid,
		Email:     email,
		PwdHash:   pkgcrypto.HashPassword([]byte(password), salt),
		Salt:      salt,
		CreatedAt: time.Now(),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *SimAuth) newSession(acc *model.Account) (*model.Session, error) {
	token, exp, err := s.issueToken(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.Session{
		UserID:    acc.ID,
		UserName:  DisplayName(acc.Email),
		UserEmail: acc.Email,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

// issueToken creates a signed HS256 JWT for the given subject.
func (s *SimAuth) issueToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// wait blocks for d or until ctx is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
