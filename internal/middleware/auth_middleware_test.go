package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/internal/repository/memory"
	"github.com/yourusername/redweb-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService("middleware-secret", 1, memory.NewCacheRepo(), nil)
	require.NoError(t, err)
	return svc
}

func protectedRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		userID, ok := UserID(c)
		claims, claimsOK := Claims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "ok": ok && claimsOK, "email": claims.Email})
	})
	return r
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	jwtService := newTestJWT(t)
	token, claims, err := jwtService.GenerateToken(&entity.User{ID: 7, Email: "v@night.city", Username: "v"})
	require.NoError(t, err)

	revokedToken, revokedClaims, err := jwtService.GenerateToken(&entity.User{ID: 8, Email: "j@night.city", Username: "j"})
	require.NoError(t, err)
	require.NoError(t, jwtService.Revoke(revokedClaims))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantType   string
	}{
		{"валидный токен", "Bearer " + token, http.StatusOK, ""},
		{"схема в нижнем регистре", "bearer " + token, http.StatusOK, ""},
		{"нет заголовка", "", http.StatusUnauthorized, "token_missing"},
		{"неверный формат", "Token " + token, http.StatusUnauthorized, "token_format"},
		{"мусорный токен", "Bearer abc.def.ghi", http.StatusUnauthorized, "token_invalid"},
		{"отозванный токен", "Bearer " + revokedToken, http.StatusUnauthorized, "token_invalid"},
	}

	router := protectedRouter(NewAuthMiddleware(jwtService))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantType != "" {
				assert.Contains(t, w.Body.String(), `"error_type":"`+tt.wantType+`"`)
			} else {
				assert.Contains(t, w.Body.String(), `"user_id":7`)
				assert.Contains(t, w.Body.String(), claims.Email)
			}
		})
	}
}

type expiredParser struct{}

func (expiredParser) ParseToken(ctx context.Context, token string) (*auth.JWTCustomClaims, error) {
	return nil, apperrors.ErrExpiredToken
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	router := protectedRouter(NewAuthMiddleware(expiredParser{}))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error_type":"token_expired"`)
}

func TestExtractUintParam(t *testing.T) {
	r := gin.New()
	r.GET("/characters/:id", ExtractUintParam("id", "characterID"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UintParam(c, "characterID")})
	})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/characters/12", http.StatusOK},
		{"/characters/0", http.StatusBadRequest},
		{"/characters/-1", http.StatusBadRequest},
		{"/characters/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.wantStatus, w.Code, tt.path)
	}
}
