package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/pkg/auth"
)

// Ключи контекста Gin, заполняемые RequireAuth
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextClaims = "claims"
)

// TokenParser проверяет токен сессии
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (*auth.JWTCustomClaims, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	tokens TokenParser
}

func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// bearerToken извлекает токен из заголовка Authorization: Bearer {token}
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAuth проверяет токен сессии на каждом защищенном запросе
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация", "error_type": "token_missing"})
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "Заголовок Authorization должен иметь вид Bearer {token}",
				"error_type": "token_format",
			})
			return
		}

		claims, err := m.tokens.ParseToken(c.Request.Context(), token)
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, apperrors.ErrExpiredToken) {
				errorType = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Сессия недействительна или истекла", "error_type": errorType})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// UserID возвращает ID пользователя, установленный RequireAuth
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// Claims возвращает claims токена текущего запроса
func Claims(c *gin.Context) (*auth.JWTCustomClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.JWTCustomClaims)
	return claims, ok && claims != nil
}
