package memory

import (
	"sort"
	"time"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

// CharacterRepo реализует repository.CharacterRepository в памяти
type CharacterRepo struct {
	s *Store
}

func NewCharacterRepo(s *Store) *CharacterRepo {
	return &CharacterRepo{s: s}
}

func (r *CharacterRepo) Create(character *entity.Character) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextCharID++
	now := time.Now()
	character.ID = r.s.nextCharID
	character.CreatedAt = now
	character.UpdatedAt = now
	r.s.characters[character.ID] = *character
	return nil
}

func (r *CharacterRepo) GetByID(userID, id uint) (*entity.Character, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.characters[id]
	if !ok || c.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r *CharacterRepo) ListByUser(userID uint) ([]entity.Character, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Character
	for _, c := range r.s.characters {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CharacterRepo) Update(character *entity.Character) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.characters[character.ID]
	if !ok || existing.UserID != character.UserID {
		return apperrors.ErrNotFound
	}
	character.CreatedAt = existing.CreatedAt
	character.UpdatedAt = time.Now()
	r.s.characters[character.ID] = *character
	return nil
}

// Delete удаляет персонажа и, как внешний ключ в Postgres, его участие в сценах
func (r *CharacterRepo) Delete(userID, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.characters[id]
	if !ok || c.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(r.s.characters, id)
	for npcID, npc := range r.s.npcs {
		if npc.CharacterID == id {
			delete(r.s.npcs, npcID)
		}
	}
	return nil
}

func (r *CharacterRepo) CountOwned(userID uint, ids []uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uint]bool, len(ids))
	var count int64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := r.s.characters[id]; ok && c.UserID == userID {
			count++
		}
	}
	return count, nil
}
