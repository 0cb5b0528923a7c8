package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed, tampered, expired and wrong-algorithm tokens alike.
var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	Secret     []byte
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

type Service struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func New(cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("tokens: empty secret")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method := jwt.GetSigningMethod(alg)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("tokens: unsupported algorithm %q", alg)
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("tokens: access ttl must be positive, got %s", cfg.AccessTTL)
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("tokens: refresh ttl must be positive, got %s", cfg.RefreshTTL)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		secret:     cfg.Secret,
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        now,
	}, nil
}

func (s *Service) IssueAccess(subject string) (string, time.Time, error) {
	return s.issue(subject, TypeAccess, s.accessTTL)
}

func (s *Service) IssueRefresh(subject string) (string, time.Time, error) {
	return s.issue(subject, TypeRefresh, s.refreshTTL)
}

func (s *Service) issue(subject, typ string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("tokens: sign: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Decode returns the claims iff the signature verifies with the configured
// secret and algorithm and the current time is before exp.
func (s *Service) Decode(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
