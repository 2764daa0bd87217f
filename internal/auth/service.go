package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"ledgerdash/internal/core"
	"ledgerdash/internal/log"
)

// Auditor records login attempts.
type Auditor interface {
	RecordLogin(ctx context.Context, email string, success bool, clientIP string) error
}

// LogAuditor writes login attempts to the log only.
type LogAuditor struct {
	Logger *log.Logger
}

func (a LogAuditor) RecordLogin(ctx context.Context, email string, success bool, clientIP string) error {
	a.Logger.WithComponent(log.ComponentAudit).InfoContext(ctx, "Login attempt",
		log.FieldEmail, email, log.FieldSuccess, success, log.FieldClientIP, clientIP)
	return nil
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Service checks credentials against a Store and issues tokens.
type Service struct {
	store   Store
	issuer  *Issuer
	auditor Auditor
	logger  *log.Logger
}

func NewService(store Store, issuer *Issuer, auditor Auditor, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	if auditor == nil {
		auditor = LogAuditor{Logger: logger}
	}
	return &Service{store: store, issuer: issuer, auditor: auditor, logger: logger.WithComponent(log.ComponentAuth)}
}

// Issuer returns the token issuer used by the service.
func (s *Service) Issuer() *Issuer { return s.issuer }

// Login validates creds. Missing fields are a validation error, a wrong
// email or password is core.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, creds Credentials, clientIP string) (*LoginResult, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, core.NewValidationError("", "email and password are required")
	}

	user, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.audit(ctx, email, false, clientIP)
		return nil, fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(creds.Password)) != 1 {
		s.audit(ctx, email, false, clientIP)
		return nil, fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
	}

	token, err := s.issuer.Issue(*user)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, email, true, clientIP)
	return &LoginResult{Token: token, User: *user}, nil
}

// Users lists every account.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// audit failures never fail a login.
func (s *Service) audit(ctx context.Context, email string, success bool, clientIP string) {
	if err := s.auditor.RecordLogin(ctx, email, success, clientIP); err != nil {
		s.logger.WarnContext(ctx, "Login audit failed", log.FieldEmail, email, log.FieldError, err)
	}
}
