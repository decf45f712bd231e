package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/auth"
	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/session"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

// Authenticator verifies allow-list credentials.
type Authenticator interface {
	Authenticate(username, password string) (*domain.Identity, error)
}

// AuthService coordinates sign-in and sign-out.
type AuthService struct {
	accounts Authenticator
	sessions session.Store
	tokens   *auth.TokenManager
	now      func() time.Time
	logger   *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Accounts Authenticator
	Sessions session.Store
	Tokens   *auth.TokenManager
	Logger   *zap.Logger
	Clock    func() time.Time
}

// LoginResult is returned to a caller that signed in.
type LoginResult struct {
	Token   string
	Session *domain.Session
}

// SessionView is what a caller learns about its own session. Anonymous
// callers are customers.
type SessionView struct {
	Role        domain.Role `json:"role"`
	Username    string      `json:"username,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	svc := &AuthService{
		accounts: deps.Accounts,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		now:      deps.Clock,
		logger:   deps.Logger,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	identity, err := s.accounts.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String("username", username))
			return nil, apperrors.NewUnauthorized("invalid username or password")
		}
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:          uuid.NewString(),
		IdentityID:  identity.ID,
		Username:    identity.Username,
		DisplayName: identity.Name(),
		Role:        identity.Role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	token, err := s.tokens.GenerateToken(sess)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("signed in", zap.String("username", sess.Username), zap.String("role", string(sess.Role)))
	return &LoginResult{Token: token, Session: sess}, nil
}

// Logout clears the session so its token stops working immediately.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("signed out", zap.String("username", sess.Username))
	return nil
}

// View describes sess, or the anonymous customer when sess is nil.
func (s *AuthService) View(sess *domain.Session) SessionView {
	if sess == nil {
		return SessionView{Role: domain.RoleCustomer}
	}
	expires := sess.ExpiresAt
	return SessionView{
		Role:        sess.Role,
		Username:    sess.Username,
		DisplayName: sess.Name(),
		ExpiresAt:   &expires,
	}
}
