package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
)

// TokenIssuer signs and verifies HS256 session tokens. With an empty secret
// it is disabled: Issue returns "" and Verify always fails.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether a signing secret is configured.
func (t *TokenIssuer) Enabled() bool {
	return len(t.secret) > 0
}

// Issue returns a signed token whose subject is the user id.
func (t *TokenIssuer) Issue(user *domain.User) (string, error) {
	if !t.Enabled() {
		return "", nil
	}
	now := t.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses token and returns the identity it carries.
func (t *TokenIssuer) Verify(token string) (*ports.Claims, error) {
	if !t.Enabled() {
		return nil, domain.ErrUnauthorized
	}
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, errOrInvalid(err))
	}

	sub, _ := claims["sub"].(string)
	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if sub == "" || err != nil {
		return nil, fmt.Errorf("%w: malformed claims", domain.ErrUnauthorized)
	}
	return &ports.Claims{UserID: sub, Role: role}, nil
}

func errOrInvalid(err error) error {
	if err == nil {
		return errors.New("invalid token")
	}
	return err
}
