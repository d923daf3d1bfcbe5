package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

// CharacterRepo реализует repository.CharacterRepository
type CharacterRepo struct {
	db *gorm.DB
}

func NewCharacterRepo(db *gorm.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) Create(character *entity.Character) error {
	return mapError(r.db.Create(character).Error)
}

func (r *CharacterRepo) GetByID(userID, id uint) (*entity.Character, error) {
	var character entity.Character
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&character).Error; err != nil {
		return nil, mapError(err)
	}
	return &character, nil
}

func (r *CharacterRepo) ListByUser(userID uint) ([]entity.Character, error) {
	var characters []entity.Character
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&characters).Error
	return characters, mapError(err)
}

// Update перезаписывает имя и характеристики персонажа владельца
func (r *CharacterRepo) Update(character *entity.Character) error {
	result := r.db.Model(&entity.Character{}).
		Where("id = ? AND user_id = ?", character.ID, character.UserID).
		Select("name", "int_stat", "lck_stat", "tech_stat", "rea_stat", "luck_stat",
			"cha_stat", "will_stat", "move_stat", "body_stat", "emp_stat", "updated_at").
		Updates(character)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *CharacterRepo) Delete(userID, id uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.Character{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *CharacterRepo) CountOwned(userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&entity.Character{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Count(&count).Error
	return count, mapError(err)
}
