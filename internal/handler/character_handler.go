package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/handler/dto"
	"github.com/yourusername/redweb-api/internal/middleware"
	"github.com/yourusername/redweb-api/internal/service"
)

const (
	characterIDKey    = "characterID"
	characterNotFound = "Персонаж не найден"
	characterInvalid  = "Имя обязательно, характеристики от 0 до 10"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType    = "text/csv; charset=utf-8"
)

// CharacterHandler обрабатывает CRUD персонажей текущего пользователя
type CharacterHandler struct {
	characters *service.CharacterService
	log        *zap.Logger
}

func NewCharacterHandler(characters *service.CharacterService, log *zap.Logger) *CharacterHandler {
	return &CharacterHandler{
		characters: characters,
		log:        log.With(zap.String("handler", "character")),
	}
}

func (h *CharacterHandler) fail(c *gin.Context, err error) {
	respondError(c, h.log, err, errorMessages{validation: characterInvalid, notFound: characterNotFound})
}

// List возвращает персонажей пользователя
func (h *CharacterHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	characters, err := h.characters.List(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if characters == nil {
		characters = []entity.Character{}
	}
	c.JSON(http.StatusOK, characters)
}

// Get возвращает одного персонажа
func (h *CharacterHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	character, err := h.characters.Get(userID, middleware.UintParam(c, characterIDKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// Create создает персонажа
func (h *CharacterHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, characterInvalid)
		return
	}
	character, err := h.characters.Create(userID, req.ToEntity())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

// Update заменяет данные персонажа
func (h *CharacterHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, characterInvalid)
		return
	}
	character, err := h.characters.Update(userID, middleware.UintParam(c, characterIDKey), req.ToEntity())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// Delete удаляет персонажа
func (h *CharacterHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.characters.Delete(userID, middleware.UintParam(c, characterIDKey)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Персонаж удален"})
}

// Export выгружает персонажей в XLSX (по умолчанию) или CSV
func (h *CharacterHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportXLSX)))
	var buf bytes.Buffer
	if err := h.characters.Export(userID, format, &buf); err != nil {
		respondError(c, h.log, err, errorMessages{validation: "Поддерживаются форматы xlsx и csv"})
		return
	}

	contentType := xlsxContentType
	if format == service.ExportCSV {
		contentType = csvContentType
	}
	filename := fmt.Sprintf("characters_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
