package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":     "user_123",
		"email":   "fan@example.com",
		"role":    "authenticated",
		"country": "in",
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
}

func newConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:    secret,
		Logger:    zap.NewNop(),
		SkipPaths: []string{"/health", "/webhook"},
	}
}

// serve runs the middleware for path and reports the user the handler saw
func serve(t *testing.T, config JWTConfig, path, authorization string) (*httptest.ResponseRecorder, *AuthUser) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *AuthUser
	handler := JWTMiddleware(config)(func(c echo.Context) error {
		seen, _ = GetUserFromContext(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, seen
}

func TestJWTMiddleware_SuccessfulAuthentication(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	rec, user := serve(t, newConfig(testSecret), "/support", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "user_123", user.UserID)
	assert.Equal(t, "fan@example.com", user.Email)
	assert.Equal(t, "IN", user.Country)
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	noSubject := validClaims()
	delete(noSubject, "sub")

	tests := []struct {
		name          string
		authorization string
		code          string
	}{
		{"missing header", "", "MISSING_AUTH_HEADER"},
		{"not bearer", "Basic abc", "INVALID_AUTH_FORMAT"},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()), "INVALID_TOKEN"},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), "INVALID_TOKEN"},
		{"hs512 not accepted", "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()), "INVALID_TOKEN"},
		{"no subject", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject), "INVALID_CLAIMS"},
		{"garbage", "Bearer not.a.jwt", "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, user := serve(t, newConfig(testSecret), "/support", tt.authorization)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
			assert.Nil(t, user)
		})
	}
}

func TestJWTMiddleware_SkipPaths(t *testing.T) {
	rec, user := serve(t, newConfig(testSecret), "/webhook/stripe", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)
}

func TestJWTMiddleware_DisabledWithoutSecret(t *testing.T) {
	rec, user := serve(t, newConfig(""), "/create-payment-intent", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)
}

func TestGetUserFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := GetUserFromContext(c)
	assert.Error(t, err)

	c.SetRequest(req.WithContext(WithUser(req.Context(), &AuthUser{UserID: "user_1"})))
	user, err := GetUserFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "user_1", user.UserID)
}
