package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

const (
	issuer           = "redweb-api"
	revokedKeyPrefix = "session:revoked:"
)

// RevocationStore хранит отозванные идентификаторы токенов до истечения их срока
type RevocationStore interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Exists(key string) (bool, error)
}

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет токены сессии (HS256)
type JWTService struct {
	secret      []byte
	ttl         time.Duration
	revocations RevocationStore
	log         *zap.Logger
	now         func() time.Time
}

// NewJWTService создает новый сервис JWT и возвращает ошибку при проблемах
func NewJWTService(secret string, expirationHrs int, revocations RevocationStore, log *zap.Logger) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required for JWTService")
	}
	if revocations == nil {
		return nil, fmt.Errorf("RevocationStore is required for JWTService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:      []byte(secret),
		ttl:         time.Duration(expirationHrs) * time.Hour,
		revocations: revocations,
		log:         log.With(zap.String("component", "jwt")),
		now:         time.Now,
	}, nil
}

// GenerateToken выпускает токен сессии для пользователя
func (s *JWTService) GenerateToken(user *entity.User) (string, *JWTCustomClaims, error) {
	if user == nil || user.ID == 0 {
		return "", nil, errors.New("user is required for token generation")
	}

	now := s.now()
	claims := &JWTCustomClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, claims, nil
}

// ParseToken проверяет подпись, срок действия и отзыв токена
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}

	revoked, err := s.revocations.Exists(revokedKeyPrefix + claims.ID)
	if err != nil {
		// Недоступный кеш не должен ронять все защищенные запросы
		s.log.Warn("revocation check failed, allowing token", zap.String("jti", claims.ID), zap.Error(err))
	} else if revoked {
		return nil, fmt.Errorf("%w: token has been revoked", apperrors.ErrUnauthorized)
	}
	return claims, nil
}

// Revoke отзывает токен до истечения его срока действия
func (s *JWTService) Revoke(claims *JWTCustomClaims) error {
	if claims == nil || claims.ID == "" {
		return fmt.Errorf("%w: token id is missing", apperrors.ErrUnauthorized)
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.revocations.Set(revokedKeyPrefix+claims.ID, 1, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log.Info("session revoked", zap.Uint("user_id", claims.UserID), zap.String("jti", claims.ID))
	return nil
}

// TTL возвращает время жизни выпускаемых токенов
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}
