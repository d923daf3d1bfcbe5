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

const (
	sceneIDKey    = "sceneID"
	npcIDKey      = "npcID"
	sceneNotFound = "Сцена не найдена"
	sceneInvalid  = "Сцене нужны название и хотя бы один ваш персонаж"
)

// SceneHandler обрабатывает сцены и их NPC
type SceneHandler struct {
	scenes *service.SceneService
	log    *zap.Logger
}

func NewSceneHandler(scenes *service.SceneService, log *zap.Logger) *SceneHandler {
	return &SceneHandler{
		scenes: scenes,
		log:    log.With(zap.String("handler", "scene")),
	}
}

func (h *SceneHandler) fail(c *gin.Context, err error) {
	respondError(c, h.log, err, errorMessages{validation: sceneInvalid, notFound: sceneNotFound})
}

// List возвращает сцены пользователя
func (h *SceneHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	scenes, err := h.scenes.List(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, helper.ConvertScenes(scenes))
}

// Get возвращает сцену с NPC
func (h *SceneHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	scene, err := h.scenes.Get(userID, middleware.UintParam(c, sceneIDKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, helper.ConvertScene(scene))
}

// Create создает сцену
func (h *SceneHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.SceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, sceneInvalid)
		return
	}
	scene, err := h.scenes.Create(userID, helper.SceneInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, helper.ConvertScene(scene))
}

// Update заменяет сцену вместе со списком NPC
func (h *SceneHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.SceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, sceneInvalid)
		return
	}
	scene, err := h.scenes.Update(userID, middleware.UintParam(c, sceneIDKey), helper.SceneInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, helper.ConvertScene(scene))
}

// Delete удаляет сцену
func (h *SceneHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.scenes.Delete(userID, middleware.UintParam(c, sceneIDKey)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Сцена удалена"})
}

// AssignNPC добавляет персонажа в сцену
func (h *SceneHandler) AssignNPC(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.AssignNPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Укажите персонажа")
		return
	}
	scene, err := h.scenes.AssignNPC(userID, middleware.UintParam(c, sceneIDKey), req.CharacterID, req.Injuries)
	if err != nil {
		respondError(c, h.log, err, errorMessages{validation: "Персонаж не найден среди ваших", notFound: sceneNotFound})
		return
	}
	c.JSON(http.StatusOK, helper.ConvertScene(scene))
}

// AddInjury добавляет травму NPC сцены
func (h *SceneHandler) AddInjury(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.InjuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Опишите травму")
		return
	}
	scene, err := h.scenes.AddInjury(userID, middleware.UintParam(c, sceneIDKey), middleware.UintParam(c, npcIDKey), req.Injury)
	if err != nil {
		respondError(c, h.log, err, errorMessages{validation: "Опишите травму", notFound: "NPC не найден"})
		return
	}
	c.JSON(http.StatusOK, helper.ConvertScene(scene))
}
