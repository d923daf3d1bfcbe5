package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

// SceneRepo реализует repository.SceneRepository
type SceneRepo struct {
	db *gorm.DB
}

func NewSceneRepo(db *gorm.DB) *SceneRepo {
	return &SceneRepo{db: db}
}

func (r *SceneRepo) withNPCs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("NPCs", func(tx *gorm.DB) *gorm.DB { return tx.Order("scene_npcs.id") }).
		Preload("NPCs.Character")
}

// Create сохраняет сцену; GORM создает NPC в той же транзакции
func (r *SceneRepo) Create(scene *entity.Scene) error {
	return mapError(r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("NPCs.Character").Create(scene).Error
	}))
}

func (r *SceneRepo) GetByID(userID, id uint) (*entity.Scene, error) {
	var scene entity.Scene
	err := r.withNPCs(r.db).Where("id = ? AND user_id = ?", id, userID).First(&scene).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &scene, nil
}

func (r *SceneRepo) ListByUser(userID uint) ([]entity.Scene, error) {
	var scenes []entity.Scene
	err := r.withNPCs(r.db).Where("user_id = ?", userID).Order("id").Find(&scenes).Error
	return scenes, mapError(err)
}

func (r *SceneRepo) Update(scene *entity.Scene) error {
	return mapError(r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Scene{}).
			Where("id = ? AND user_id = ?", scene.ID, scene.UserID).
			Select("title", "description", "reward_items", "reward_xp", "updated_at").
			Omit(clause.Associations).
			Updates(scene)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("scene_id = ?", scene.ID).Delete(&entity.SceneNPC{}).Error; err != nil {
			return err
		}
		for i := range scene.NPCs {
			scene.NPCs[i].ID = 0
			scene.NPCs[i].SceneID = scene.ID
		}
		if len(scene.NPCs) == 0 {
			return nil
		}
		return tx.Omit("Character").Create(&scene.NPCs).Error
	}))
}

// Delete удаляет сцену; NPC удаляются каскадно внешним ключом
func (r *SceneRepo) Delete(userID, id uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.Scene{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *SceneRepo) AddNPC(npc *entity.SceneNPC) error {
	return mapError(r.db.Omit("Character").Create(npc).Error)
}

// AddNPCInjury дописывает травму одним UPDATE с array_append, параллельные добавления не теряются
func (r *SceneRepo) AddNPCInjury(sceneID, npcID uint, injury string) (bool, error) {
	result := r.db.Model(&entity.SceneNPC{}).
		Where("id = ? AND scene_id = ? AND NOT (? = ANY(injuries))", npcID, sceneID, injury).
		UpdateColumn("injuries", gorm.Expr("array_append(injuries, ?)", injury))
	if result.Error != nil {
		return false, mapError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
