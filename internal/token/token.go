// Package token issues and verifies the signed session tokens. The token is
// the whole session: there is no server-side session store or revocation
// list, and the claims are a snapshot taken at login time. A username change
// does not refresh tokens already in the wild.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shadow-TermDev/whats-links-backend/internal/authz"
)

// TTL is how long an issued token stays valid.
const TTL = 7 * 24 * time.Hour

var (
	// ErrNoSecret is returned when no signing secret is configured. Token
	// operations must fail in that case, never silently accept.
	ErrNoSecret = errors.New("token: signing secret not configured")

	ErrInvalidToken = errors.New("token: invalid or expired token")
)

type claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    TTL,
		now:    time.Now,
	}
}

// Issue signs a token carrying the actor snapshot.
func (m *Manager) Issue(id int64, username, role string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}

	now := m.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:   id,
		Username: username,
		Role:     role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the actor it carries.
func (m *Manager) Verify(tokenString string) (authz.Actor, error) {
	if len(m.secret) == 0 {
		return authz.Actor{}, ErrNoSecret
	}

	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return authz.Actor{}, ErrInvalidToken
	}

	return authz.Actor{ID: c.UserID, Username: c.Username, Role: c.Role}, nil
}
