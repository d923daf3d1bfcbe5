package dto

import "time"

// SceneNPCRequest - NPC в запросе сцены
type SceneNPCRequest struct {
	CharacterID uint     `json:"character_id" binding:"required"`
	Injuries    []string `json:"injuries"`
}

// RewardsDTO - награды за сцену
type RewardsDTO struct {
	Items []string `json:"items"`
	XP    int      `json:"xp"`
}

// SceneRequest - создание или замена сцены
type SceneRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	NPCs        []SceneNPCRequest `json:"npcs" binding:"required,min=1,dive"`
	Rewards     RewardsDTO        `json:"rewards"`
}

// AssignNPCRequest - назначение персонажа в сцену
type AssignNPCRequest struct {
	CharacterID uint     `json:"character_id" binding:"required"`
	Injuries    []string `json:"injuries"`
}

// InjuryRequest - новая травма NPC
type InjuryRequest struct {
	Injury string `json:"injury" binding:"required"`
}

// SceneNPCResponse - NPC сцены с именем персонажа
type SceneNPCResponse struct {
	ID          uint     `json:"id"`
	CharacterID uint     `json:"character_id"`
	Name        string   `json:"name"`
	Injuries    []string `json:"injuries"`
}

// SceneResponse - сцена в ответе API
type SceneResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	NPCs        []SceneNPCResponse `json:"npcs"`
	Rewards     RewardsDTO         `json:"rewards"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
