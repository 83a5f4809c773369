package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gigpay/internal/middleware"
	"gigpay/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	newRouter := func(captured *contextutil.Metadata) *gin.Engine {
		r := gin.New()
		r.GET("/protected", middleware.AuthMiddleware(), func(c *gin.Context) {
			*captured = contextutil.ExtractMetadata(c.Request.Context())
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("valid token propagates actor into request context", func(t *testing.T) {
		var md contextutil.Metadata
		r := newRouter(&md)

		token := signToken(t, "test-secret", jwt.MapClaims{
			"user_id": "admin-1",
			"role":    "ADMIN",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin-1", md.UserID)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		var md contextutil.Metadata
		r := newRouter(&md)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "", md.UserID)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		var md contextutil.Metadata
		r := newRouter(&md)

		token := signToken(t, "other-secret", jwt.MapClaims{"user_id": "admin-1"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token without user id is rejected", func(t *testing.T) {
		var md contextutil.Metadata
		r := newRouter(&md)

		token := signToken(t, "test-secret", jwt.MapClaims{"role": "ADMIN"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
