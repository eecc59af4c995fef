package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/internal/metrics"
	"go.pilab.hu/coursehub/session"
	"go.pilab.hu/coursehub/token"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password;
// callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService verifies credentials and hands the verified identity to the
// session manager, then binds the issued session id into the access token.
type AuthService struct {
	users    domain.UserRepository
	sessions *session.Manager
	tokens   *token.Manager
	hasher   PasswordHasher
}

func NewAuthService(
	users domain.UserRepository,
	sessions *session.Manager,
	tokens *token.Manager,
	hasher PasswordHasher,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
	}
}

// DeviceInfo is the optional provenance the client supplies at login.
type DeviceInfo struct {
	DeviceName string
	UserAgent  string
	IPAddress  string
}

// LoginResult carries the signed token plus the user for the response
// payload.
type LoginResult struct {
	AccessToken string
	SessionID   string
	User        *domain.User
}

// Login resolves the email across the role collections, verifies the
// password, creates the device session and issues the bound access token.
func (s *AuthService) Login(ctx context.Context, email, password string, device DeviceInfo) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Str("email", email).Msg("Login: user not found")
			metrics.LoginFailureTotal.Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		log.Warn().Str("user_uuid", user.UUID).Msg("Login: incorrect password")
		metrics.LoginFailureTotal.Inc()
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Login(ctx, session.LoginInput{
		UserUUID:   user.UUID,
		Role:       user.Role,
		DeviceName: device.DeviceName,
		UserAgent:  device.UserAgent,
		IPAddress:  device.IPAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	accessToken, err := s.tokens.Issue(user.Email, user.UUID, user.Role, sess.SessionID)
	if err != nil {
		// Token signing failed after the session was created; revoke it so no
		// orphaned active session counts against the device limit.
		if _, revokeErr := s.sessions.Logout(ctx, sess.SessionID); revokeErr != nil {
			log.Error().Err(revokeErr).Str("session_id", sess.SessionID).
				Msg("Login: failed to revoke session after token failure")
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginSuccessTotal.Inc()
	log.Info().
		Str("user_uuid", user.UUID).
		Str("role", string(user.Role)).
		Str("session_id", sess.SessionID).
		Msg("login successful")

	return &LoginResult{
		AccessToken: accessToken,
		SessionID:   sess.SessionID,
		User:        user,
	}, nil
}
