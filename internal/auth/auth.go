// Package auth implements the login stub and in-memory sessions.
//
// There is no credential store: any well-formed email with a password of at
// least six characters signs in.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/jobtrack/internal/form"
	"github.com/jonathan/jobtrack/internal/logging"
	"github.com/jonathan/jobtrack/internal/types"
	"github.com/sirupsen/logrus"
)

// adminMarker in an email address earns the admin role.
const adminMarker = "admin"

// RoleFor returns the role the stub assigns to email.
func RoleFor(email string) types.Role {
	if strings.Contains(strings.ToLower(email), adminMarker) {
		return types.RoleAdmin
	}
	return types.RoleUser
}

// Service signs users in and out.
type Service struct {
	jwt       *JWTService
	sessions  *Sessions
	validator *form.Validator
	delay     time.Duration
	log       *logrus.Entry
}

// Option configures a Service.
type Option func(*Service)

// WithDelay sets the artificial latency applied to every login.
func WithDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) { s.log = logging.Component(logger, "auth") }
}

// NewService creates a Service.
func NewService(jwtService *JWTService, sessions *Sessions, opts ...Option) *Service {
	s := &Service{
		jwt:       jwtService,
		sessions:  sessions,
		validator: form.NewValidator(),
		log:       logging.Component(nil, "auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns the session registry.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// Login validates req, opens a session and returns the user with a token.
// Validation failures come back as *form.ValidationError.
func (s *Service) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	user := types.User{Email: req.Email, Role: RoleFor(req.Email)}
	sess := s.sessions.Open(user)

	token, err := s.jwt.GenerateToken(user, sess.ID)
	if err != nil {
		_ = s.sessions.Close(sess.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"email":   user.Email,
		"role":    user.Role,
		"session": sess.ID,
	}).Info("signed in")

	return &types.LoginResponse{User: &user, Token: token}, nil
}

// Authenticate resolves a token to its open session.
func (s *Service) Authenticate(token string) (*Session, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.SessionID()
	if err != nil {
		return nil, fmt.Errorf("token has no valid session id: %w", err)
	}
	return s.sessions.Get(id)
}

// Logout closes the session.
func (s *Service) Logout(sess *Session) error {
	if err := s.sessions.Close(sess.ID); err != nil {
		return err
	}
	s.log.WithField("session", sess.ID).Info("signed out")
	return nil
}
