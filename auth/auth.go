// auth/auth.go
// Package auth issues and checks the signed tokens that identify students,
// faculty and administrators.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in tokens.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// CookieName is where browser sessions keep the token.
const CookieName = "eventdesk_token"

var (
	ErrMissingSecret = errors.New("auth: jwt_secret is empty")
	ErrInvalidToken  = errors.New("auth: invalid token")
)

// Claims identify the caller. Subject holds the numeric user id; the id
// space is per role, so Role must always be checked alongside it.
type Claims struct {
	Role  string `json:"role"`
	Admin bool   `json:"admin,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject.
func (c *Claims) UserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. ttl <= 0 means 24h.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Identity is who a token is issued for.
type Identity struct {
	ID    int64
	Role  string
	Admin bool
	Name  string
}

// Issue signs a token for id and reports when it expires.
func (i *Issuer) Issue(id Identity) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Role:  id.Role,
		Admin: id.Admin,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies token and returns its claims. Expired, unsigned or
// otherwise invalid tokens wrap ErrInvalidToken.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != RoleStudent && claims.Role != RoleFaculty {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}
