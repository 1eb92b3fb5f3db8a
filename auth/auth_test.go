package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-that-is-long-enough-0123456789"

func TestIssueAndParse(t *testing.T) {
	iss, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)

	tok, exp, err := iss.Issue(Identity{ID: 42, Role: RoleFaculty, Admin: true, Name: "Dr. Rao"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID())
	assert.Equal(t, RoleFaculty, c.Role)
	assert.True(t, c.Admin)
}

func TestParse_Rejects(t *testing.T) {
	iss, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		past, _ := NewIssuer(secret, time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, _, err := past.Issue(Identity{ID: 1, Role: RoleStudent})
		require.NoError(t, err)
		_, err = iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _ := NewIssuer("another-secret", time.Hour)
		tok, _, err := other.Issue(Identity{ID: 1, Role: RoleStudent})
		require.NoError(t, err)
		_, err = iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleStudent}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		tok, _, err := iss.Issue(Identity{ID: 1, Role: "janitor"})
		require.NoError(t, err)
		_, err = iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGuards(t *testing.T) {
	iss, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)
	student, _, _ := iss.Issue(Identity{ID: 1, Role: RoleStudent})
	faculty, _, _ := iss.Issue(Identity{ID: 2, Role: RoleFaculty})
	admin, _, _ := iss.Issue(Identity{ID: 3, Role: RoleFaculty, Admin: true})

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name   string
		guard  func(http.Handler) http.Handler
		token  string
		cookie bool
		want   int
	}{
		{"no token", RequireSignedIn, "", false, http.StatusUnauthorized},
		{"garbage token", RequireSignedIn, "abc.def.ghi", false, http.StatusUnauthorized},
		{"student signed in", RequireSignedIn, student, false, http.StatusNoContent},
		{"student on faculty route", RequireRole(RoleFaculty), student, false, http.StatusForbidden},
		{"faculty on faculty route", RequireRole(RoleFaculty), faculty, false, http.StatusNoContent},
		{"faculty on admin route", RequireAdmin, faculty, false, http.StatusForbidden},
		{"admin via cookie", RequireAdmin, admin, true, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				if tt.cookie {
					req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.token})
				} else {
					req.Header.Set("Authorization", "Bearer "+tt.token)
				}
			}
			rec := httptest.NewRecorder()
			iss.Middleware(tt.guard(ok)).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
