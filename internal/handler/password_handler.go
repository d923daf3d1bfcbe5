package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/handler/dto"
	"github.com/yourusername/redweb-api/internal/service"
)

// PasswordHandler обрабатывает сброс пароля по коду из письма.
// Каждый шаг заново проверяет код, сессия после verify не создается.
type PasswordHandler struct {
	reset *service.PasswordResetService
	log   *zap.Logger
}

func NewPasswordHandler(reset *service.PasswordResetService, log *zap.Logger) *PasswordHandler {
	return &PasswordHandler{
		reset: reset,
		log:   log.With(zap.String("handler", "password_reset")),
	}
}

const resetNotFound = "Пользователь не найден"

// SendResetCode отправляет код сброса пароля
func (h *PasswordHandler) SendResetCode(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Некорректный email")
		return
	}

	if err := h.reset.SendCode(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err, errorMessages{
			validation: "Некорректный email",
			notFound:   resetNotFound,
			internal:   "Ошибка отправки кода",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Код отправлен на почту"})
}

// VerifyResetCode проверяет код сброса, не расходуя его
func (h *PasswordHandler) VerifyResetCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Email и код обязательны")
		return
	}

	if err := h.reset.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, h.log, err, errorMessages{
			validation: "Email и код обязательны",
			notFound:   resetNotFound,
			internal:   "Ошибка проверки кода",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Код подтвержден"})
}

// UpdatePassword меняет пароль по действующему коду сброса
func (h *PasswordHandler) UpdatePassword(c *gin.Context) {
	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Все поля обязательны")
		return
	}

	if err := h.reset.UpdatePassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, h.log, err, errorMessages{
			validation: "Некорректные данные для смены пароля",
			notFound:   resetNotFound,
			internal:   "Ошибка обновления пароля",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Пароль обновлен"})
}
