package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/handler/dto"
	"github.com/yourusername/redweb-api/internal/handler/helper"
	"github.com/yourusername/redweb-api/internal/service"
)

// UserHandler обрабатывает запросы профиля пользователя
type UserHandler struct {
	userService *service.UserService
	log         *zap.Logger
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log.With(zap.String("handler", "user")),
	}
}

// GetProfile возвращает профиль текущего пользователя
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		respondError(c, h.log, err, errorMessages{notFound: "Пользователь не найден"})
		return
	}

	c.JSON(http.StatusOK, helper.ConvertProfile(user))
}

// UpdateProfile обновляет username, email и bio
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Имя и email обязательны")
		return
	}

	user, err := h.userService.UpdateProfile(userID, service.ProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(c, h.log, err, errorMessages{
			validation: "Некорректные данные профиля",
			notFound:   "Пользователь не найден",
		})
		return
	}

	c.JSON(http.StatusOK, helper.ConvertProfile(user))
}
