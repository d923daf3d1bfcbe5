package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/handler/dto"
	"github.com/yourusername/redweb-api/internal/service"
)

// VerificationHandler обрабатывает коды подтверждения регистрации
type VerificationHandler struct {
	verification *service.EmailVerificationService
	log          *zap.Logger
}

func NewVerificationHandler(verification *service.EmailVerificationService, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		verification: verification,
		log:          log.With(zap.String("handler", "verification")),
	}
}

// SendCode отправляет код подтверждения на email
func (h *VerificationHandler) SendCode(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Некорректный email")
		return
	}

	if err := h.verification.SendCode(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err, errorMessages{
			validation: "Некорректный email",
			internal:   "Ошибка отправки кода",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Код отправлен на почту"})
}

// VerifyCode проверяет код подтверждения
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Email и код обязательны")
		return
	}

	if err := h.verification.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, h.log, err, errorMessages{
			validation: "Email и код обязательны",
			internal:   "Ошибка проверки кода",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Код подтвержден"})
}
