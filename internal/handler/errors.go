package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/middleware"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
	"github.com/yourusername/redweb-api/internal/service"
)

// errorMessages задает тексты ответа, зависящие от эндпоинта
type errorMessages struct {
	validation string
	notFound   string
	internal   string
}

func (m errorMessages) or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// errorResponse - тело ответа с ошибкой
type errorResponse struct {
	status    int
	message   string
	errorType string
}

// classifyError сопоставляет ошибку сервиса с HTTP-статусом.
// Порядок важен: ErrEmailDelivery оборачивает ErrTransient.
func classifyError(err error, msgs errorMessages) errorResponse {
	switch {
	case errors.Is(err, service.ErrEmailDelivery):
		return errorResponse{http.StatusInternalServerError, "Ошибка отправки кода", "email_delivery_failed"}
	case errors.Is(err, service.ErrVerificationResendCooldown):
		return errorResponse{http.StatusTooManyRequests, "Новый код можно запросить позже", "resend_cooldown"}
	case errors.Is(err, service.ErrCodeNotFound):
		return errorResponse{http.StatusBadRequest, "Код не найден", "code_not_found"}
	case errors.Is(err, service.ErrVerificationExpired):
		return errorResponse{http.StatusBadRequest, "Код истек", "code_expired"}
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		return errorResponse{http.StatusForbidden, "Слишком много попыток", "too_many_attempts"}
	case errors.Is(err, service.ErrVerificationCodeConsumed):
		return errorResponse{http.StatusBadRequest, "Код уже использован", "code_consumed"}
	case errors.Is(err, service.ErrInvalidVerificationCode):
		return errorResponse{http.StatusBadRequest, "Неверный код", "invalid_code"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return errorResponse{http.StatusUnauthorized, "Неверный email или пароль", "invalid_credentials"}
	case errors.Is(err, service.ErrEmailNotVerified):
		return errorResponse{http.StatusBadRequest, "Email не подтвержден", "email_not_verified"}
	case errors.Is(err, apperrors.ErrValidation):
		return errorResponse{http.StatusBadRequest, msgs.or(msgs.validation, "Ошибка валидации данных"), "validation_error"}
	case errors.Is(err, apperrors.ErrConflict):
		return errorResponse{http.StatusBadRequest, "Email или имя заняты", "conflict"}
	case errors.Is(err, apperrors.ErrNotFound):
		return errorResponse{http.StatusNotFound, msgs.or(msgs.notFound, "Запрашиваемый ресурс не найден"), "not_found"}
	case errors.Is(err, apperrors.ErrExpiredToken):
		return errorResponse{http.StatusUnauthorized, "Сессия истекла", "token_expired"}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return errorResponse{http.StatusUnauthorized, "Требуется авторизация", "unauthorized"}
	case errors.Is(err, apperrors.ErrForbidden):
		return errorResponse{http.StatusForbidden, "Доступ запрещен", "forbidden"}
	case errors.Is(err, apperrors.ErrRateLimited):
		return errorResponse{http.StatusTooManyRequests, "Слишком много запросов. Попробуйте позже", "rate_limited"}
	default:
		return errorResponse{http.StatusInternalServerError, msgs.or(msgs.internal, "Ошибка сервера"), "internal_server_error"}
	}
}

// respondError пишет ответ с ошибкой. Детали 5xx уходят только в лог.
func respondError(c *gin.Context, log *zap.Logger, err error, msgs errorMessages) {
	resp := classifyError(err, msgs)
	if resp.status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.FullPath()), zap.String("error_type", resp.errorType), zap.Error(err))
	} else {
		log.Debug("request rejected",
			zap.String("path", c.FullPath()), zap.String("error_type", resp.errorType), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(resp.status, gin.H{"error": resp.message, "error_type": resp.errorType})
}

// respondBindError отвечает на некорректное тело запроса
func respondBindError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "error_type": "validation_error"})
}

// currentUserID возвращает ID пользователя из контекста или отвечает 401
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация", "error_type": "unauthorized"})
		return 0, false
	}
	return userID, true
}
