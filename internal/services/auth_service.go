package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/session"
)

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	UserToken string  `json:"user_token"`
	IsStaff   bool    `json:"is_staff"`
	Username  string  `json:"username"`
	Avatar    *string `json:"avatar"`
}

// AuthService logs users in through the identity provider and manages
// session tokens.
type AuthService struct {
	provider IdentityProvider
	sessions session.Store
	users    *UserService
	ttl      time.Duration
}

// NewAuthService creates an AuthService issuing sessions that live for ttl.
func NewAuthService(provider IdentityProvider, sessions session.Store, users *UserService, ttl time.Duration) *AuthService {
	return &AuthService{provider: provider, sessions: sessions, users: users, ttl: ttl}
}

// RedirectURI is the provider login page.
func (s *AuthService) RedirectURI() string {
	return s.provider.AuthCodeURL()
}

// LogoutURI is the provider logout page.
func (s *AuthService) LogoutURI() string {
	return s.provider.LogoutURL()
}

// Login exchanges code for a profile, finds or creates the matching account
// and opens a session.
func (s *AuthService) Login(ctx context.Context, code string) (*LoginResult, error) {
	if code == "" {
		return nil, apperrors.ValidationError{Field: "code", Reason: "is required"}
	}
	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindOrCreate(ctx, profile.Nickname, profile.Email)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, token, u.ID, s.ttl); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Uint("user_id", u.ID).Msg("User logged in")
	return &LoginResult{
		UserToken: token,
		IsStaff:   u.IsStaff,
		Username:  u.Username,
		Avatar:    u.Avatar.ImageURL,
	}, nil
}

// Logout closes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token. An empty token is anonymous; an
// unknown one is ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Viewer, error) {
	if token == "" {
		return models.Viewer{}, nil
	}
	userID, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return models.Viewer{}, err
	}
	if !ok {
		return models.Viewer{}, apperrors.ErrUnauthorized
	}
	return models.Viewer{UserID: userID}, nil
}
