package repository

import "github.com/yourusername/redweb-api/internal/domain/entity"

// SceneRepository определяет методы для работы со сценами и их NPC
type SceneRepository interface {
	// Create сохраняет сцену вместе с NPC в одной транзакции
	Create(scene *entity.Scene) error
	GetByID(userID, id uint) (*entity.Scene, error)
	ListByUser(userID uint) ([]entity.Scene, error)
	// Update обновляет поля сцены и полностью заменяет список NPC в одной транзакции
	Update(scene *entity.Scene) error
	Delete(userID, id uint) error
	AddNPC(npc *entity.SceneNPC) error
	// AddNPCInjury атомарно дописывает травму NPC. false - травма уже записана или NPC нет.
	AddNPCInjury(sceneID, npcID uint, injury string) (bool, error)
}
