package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/handler/dto"
	"github.com/yourusername/redweb-api/internal/handler/helper"
	"github.com/yourusername/redweb-api/internal/middleware"
	"github.com/yourusername/redweb-api/internal/service"
)

// AuthHandler обрабатывает регистрацию, вход и сессии
type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With(zap.String("handler", "auth")),
	}
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Все поля обязательны")
		return
	}

	_, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.log, err, errorMessages{validation: "Некорректные данные регистрации"})
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Регистрация успешна"})
}

// Login обрабатывает вход по email и паролю
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Email и пароль обязательны")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, errorMessages{validation: "Email и пароль обязательны"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Session возвращает пользователя текущей сессии после проверки токена сервером
func (h *AuthHandler) Session(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация", "error_type": "unauthorized"})
		return
	}

	user, err := h.authService.Session(claims)
	if err != nil {
		respondError(c, h.log, err, errorMessages{})
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		User:      helper.ConvertUser(user),
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Logout отзывает токен текущей сессии
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация", "error_type": "unauthorized"})
		return
	}

	if err := h.authService.Logout(claims); err != nil {
		respondError(c, h.log, err, errorMessages{internal: "Не удалось завершить сессию"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Выход выполнен"})
}
