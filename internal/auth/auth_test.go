package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cvpa-audit/internal/auth"
	"github.com/sells-group/cvpa-audit/internal/config"
	"github.com/sells-group/cvpa-audit/internal/model"
)

func newTestManager(t *testing.T) *auth.JWTManager {
	t.Helper()
	mgr, err := auth.NewJWTManager(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
	})
	require.NoError(t, err)
	return mgr
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	valid, err := auth.VerifyPassword("hunter2hunter2", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = auth.VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := auth.VerifyPassword("anything", "not-a-valid-hash")
	require.Error(t, err)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := auth.HashPassword("same-password")
	require.NoError(t, err)
	b, err := auth.HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssueAndValidateToken(t *testing.T) {
	mgr := newTestManager(t)
	user := &model.User{ID: "u1", Email: "analyst@example.com", Role: "analyst"}

	token, expiresAt, err := mgr.IssueToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "analyst@example.com", claims.Email)
	assert.Equal(t, "analyst", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mgr := newTestManager(t)
	other, err := auth.NewJWTManager(config.AuthConfig{JWTSecret: "different-secret"})
	require.NoError(t, err)

	token, _, err := other.IssueToken(&model.User{ID: "u1"})
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	mgr := newTestManager(t)
	_, err = mgr.ValidateToken(signed)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_RejectsUnsignedAlg(t *testing.T) {
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	mgr := newTestManager(t)
	_, err = mgr.ValidateToken(signed)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := auth.NewJWTManager(config.AuthConfig{})
	require.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	mgr := newTestManager(t)

	var gotClaims *auth.Claims
	handler := mgr.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/companies", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _, err := mgr.IssueToken(&model.User{ID: "u1", Email: "a@b.co"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/companies", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "u1", gotClaims.Subject)
		assert.Equal(t, "a@b.co", gotClaims.Email)
	})
}

func TestClaimsFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, auth.ClaimsFromContext(req.Context()))
}
