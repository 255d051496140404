package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

const issuer = "clinic-scheduler"

var (
	ErrMissingToken = httperr.New(httperr.KindAuthentication, "MISSING_TOKEN", "Authorization header is missing.")
	ErrInvalidToken = httperr.New(httperr.KindAuthentication, "INVALID_TOKEN", "Token is invalid.")
	ErrExpiredToken = httperr.New(httperr.KindAuthentication, "EXPIRED_TOKEN", "Token has expired, please log in again.")
	ErrForbidden    = httperr.New(httperr.KindAuthorization, "FORBIDDEN", "You are not allowed to perform this action.")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// VerifiedToken is what Verify extracts from a valid token.
type VerifiedToken struct {
	role.Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 tokens. Verification needs only the
// secret; nothing is persisted. Rotating the secret invalidates every token
// issued before the rotation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock overrides the time source used for both issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithLeeway tolerates clock skew on exp/iat checks.
func WithLeeway(d time.Duration) TokenOption {
	return func(s *TokenService) { s.leeway = d }
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(userID uint, r role.Role) (string, error) {
	now := s.now()
	claims := Claims{
		Role: string(r),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry(now, s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// expiry rounds up to whole seconds: exp is serialised truncated, and a
// token must never die before issue time plus TTL.
func expiry(issued time.Time, ttl time.Duration) time.Time {
	exp := issued.Add(ttl)
	if t := exp.Truncate(time.Second); !t.Equal(exp) {
		return t.Add(time.Second)
	}
	return exp
}

func (s *TokenService) Verify(raw string) (*VerifiedToken, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.leeway),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	r, ok := role.Parse(claims.Role)
	if !ok {
		return nil, ErrInvalidToken
	}

	out := &VerifiedToken{
		Identity: role.Identity{UserID: uint(userID), Role: r},
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
