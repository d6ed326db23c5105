package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/repository"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/validation"
)

// SessionTTL is how long a sign-in stays valid.
const SessionTTL = 14 * 24 * time.Hour

const minPasswordLength = 6

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not signed in")
)

// Session is an authenticated partner. Token is the opaque bearer value
// handed to the client; only its keyed hash is stored.
type Session struct {
	Token     string         `json:"token"`
	UserID    string         `json:"user_id"`
	Partner   domain.Partner `json:"partner"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type SignUpInput struct {
	Email        string              `json:"email"`
	Password     string              `json:"password"`
	Name         string              `json:"name"`
	Phone        string              `json:"phone"`
	Address      string              `json:"address"`
	BusinessType domain.BusinessType `json:"business_type"`
}

func (in SignUpInput) validate() error {
	v := validation.Violations{}
	validation.Email("email", in.Email, v)
	validation.MinLength("password", in.Password, minPasswordLength, v)
	validation.Required("name", in.Name, v)
	validation.Required("phone", in.Phone, v)
	validation.OneOf("business_type", in.BusinessType.Valid(), v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

type AuthService struct {
	repos *repository.Repos
	key   []byte
	now   func() time.Time
}

// SignUp registers an auth user and its partner profile together.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (domain.Partner, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.validate(); err != nil {
		return domain.Partner{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Partner{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{ID: uuid.NewString(), Email: in.Email, PasswordHash: string(hash), CreatedAt: now}
	partner := domain.Partner{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        in.Email,
		Address:      strings.TrimSpace(in.Address),
		BusinessType: in.BusinessType,
		CreatedAt:    now,
	}
	if err := s.repos.CreateUserWithPartner(ctx, user, partner); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Partner{}, ErrEmailTaken
		}
		return domain.Partner{}, fmt.Errorf("create partner: %w", err)
	}
	log.Info().Str("partner_id", partner.ID).Str("business_type", string(partner.BusinessType)).Msg("partner registered")
	return partner, nil
}

// SignIn checks the credentials and opens a session. Nothing is stored when
// the credentials are wrong.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.repos.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	partner, err := s.repos.PartnerByUserID(ctx, user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("load partner: %w", err)
	}

	now := s.now().UTC()
	token := uuid.NewString()
	rec := domain.SessionRecord{
		TokenHash: s.hashToken(token),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.repos.CreateSession(ctx, rec); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	if n, err := s.repos.DeleteExpiredSessions(ctx, now); err != nil {
		log.Warn().Err(err).Msg("expired session cleanup failed")
	} else if n > 0 {
		log.Debug().Int64("count", n).Msg("expired sessions removed")
	}

	return Session{Token: token, UserID: user.ID, Partner: partner, ExpiresAt: rec.ExpiresAt}, nil
}

// SignOut ends the session; unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repos.DeleteSession(ctx, s.hashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Resolve turns a bearer token into its session with the partner profile.
func (s *AuthService) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthenticated
	}
	hash := s.hashToken(token)
	rec, err := s.repos.SessionByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrUnauthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if !s.now().Before(rec.ExpiresAt) {
		if err := s.repos.DeleteSession(ctx, hash); err != nil {
			log.Warn().Err(err).Msg("expired session delete failed")
		}
		return Session{}, ErrUnauthenticated
	}

	partner, err := s.repos.PartnerByUserID(ctx, rec.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrUnauthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("load partner: %w", err)
	}
	return Session{Token: token, UserID: rec.UserID, Partner: partner, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *AuthService) hashToken(token string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
