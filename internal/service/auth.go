package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const TokenTypeBearer = "bearer"

// AuthService authenticates credentials, resolves bearer tokens to users and
// mints new access tokens from refresh tokens.
type AuthService struct {
	Repo    *repo.GormRepo
	Hasher  *hash.Hasher
	Tokens  *tokens.Service
	Events  EventPublisher
	Metrics Recorder
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	TokenType    string
	User         *models.User
}

type RefreshResult struct {
	AccessToken string
	AccessExp   time.Time
	TokenType   string
}

type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
}

func (s *AuthService) hasher() *hash.Hasher {
	if s.Hasher == nil {
		return hash.New(0)
	}
	return s.Hasher
}

func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate", "username", username)

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("authenticate_rejected", "reason", "unknown user")
			return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
		}
		l.Error("authenticate_error", "reason", "cannot load user", "error", err)
		return nil, internalErr(err)
	}

	if !s.hasher().Verify(password, user.PasswordHash) {
		l.Warn("authenticate_rejected", "reason", "password mismatch")
		return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
	}
	if user.Disabled {
		l.Warn("authenticate_rejected", "reason", "user disabled")
		return nil, fmt.Errorf("%w: inactive user", ErrUnauthorized)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)
	m := recorder(s.Metrics)

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		m.AuthAttempt("login", "rejected")
		return nil, err
	}

	accessToken, accessExp, err := s.Tokens.IssueAccess(user.Username)
	if err != nil {
		l.Error("login_error", "reason", "cannot issue access token", "error", err)
		return nil, internalErr(err)
	}
	refreshToken, refreshExp, err := s.Tokens.IssueRefresh(user.Username)
	if err != nil {
		l.Error("login_error", "reason", "cannot issue refresh token", "error", err)
		return nil, internalErr(err)
	}

	m.AuthAttempt("login", "success")
	publish(ctx, s.Events, TopicUser, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		TokenType:    TokenTypeBearer,
		User:         user,
	}, nil
}

// Resolve maps a bearer token to its user. It never writes.
func (s *AuthService) Resolve(ctx context.Context, bearer string) (*models.User, error) {
	claims, err := s.Tokens.Decode(bearer)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	user, err := s.Repo.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		logging.FromContext(ctx).Error("resolve_error", "svc", "auth.resolve", "reason", "cannot load user", "error", err)
		return nil, internalErr(err)
	}
	if user.Disabled {
		return nil, fmt.Errorf("%w: inactive user", ErrUnauthorized)
	}
	return user, nil
}

// Refresh mints a new access token for the refresh token's subject. The
// subject is not looked up again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	m := recorder(s.Metrics)

	claims, err := s.Tokens.Decode(refreshToken)
	if err != nil || claims.Subject == "" {
		m.AuthAttempt("refresh", "rejected")
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	accessToken, accessExp, err := s.Tokens.IssueAccess(claims.Subject)
	if err != nil {
		logging.FromContext(ctx).Error("refresh_error", "svc", "auth.refresh", "reason", "cannot issue access token", "error", err)
		return nil, internalErr(err)
	}

	m.AuthAttempt("refresh", "success")
	return &RefreshResult{AccessToken: accessToken, AccessExp: accessExp, TokenType: TokenTypeBearer}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", in.Username)

	username := strings.TrimSpace(in.Username)
	fullName := strings.TrimSpace(in.FullName)
	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case len(in.Password) > hash.MaxPasswordBytes:
		return nil, fmt.Errorf("%w: password is longer than %d bytes", ErrValidation, hash.MaxPasswordBytes)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if err := errors.Join(
		tooLong("username", username, models.MaxUsernameLen),
		tooLong("full_name", fullName, models.MaxFullNameLen),
		tooLong("email", addr.Address, models.MaxEmailLen),
	); err != nil {
		return nil, err
	}

	taken, err := s.Repo.UsernameTaken(ctx, username)
	if err != nil {
		l.Error("register_error", "reason", "cannot check username", "error", err)
		return nil, internalErr(err)
	}
	if taken {
		return nil, fmt.Errorf("%w: user %q already exists", ErrConflict, username)
	}

	pwHash, err := s.hasher().Hash(in.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", ErrValidation)
		}
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, internalErr(err)
	}

	user := &models.User{
		Username:     username,
		FullName:     fullName,
		Email:        addr.Address,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user %q already exists", ErrConflict, username)
		}
		l.Error("register_error", "reason", "cannot create user", "error", err)
		return nil, internalErr(err)
	}

	l.Info("register_success", "user_id", user.ID)
	publish(ctx, s.Events, TopicUser, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, internalErr(err)
	}
	return user, nil
}

// SetDisabled toggles whether a user may authenticate.
func (s *AuthService) SetDisabled(ctx context.Context, username string, disabled bool) error {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return err
	}
	if err := s.Repo.SetUserDisabled(ctx, user.ID, disabled); err != nil {
		return internalErr(err)
	}
	return nil
}
