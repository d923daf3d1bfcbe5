package repository

import "github.com/yourusername/redweb-api/internal/domain/entity"

// CharacterRepository определяет методы для работы с персонажами.
// Все выборки ограничены владельцем: чужой персонаж неотличим от отсутствующего.
type CharacterRepository interface {
	Create(character *entity.Character) error
	GetByID(userID, id uint) (*entity.Character, error)
	ListByUser(userID uint) ([]entity.Character, error)
	Update(character *entity.Character) error
	Delete(userID, id uint) error
	// CountOwned возвращает, сколько персонажей из ids принадлежит пользователю
	CountOwned(userID uint, ids []uint) (int64, error)
}
