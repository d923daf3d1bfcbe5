package memory

import (
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

// SceneRepo реализует repository.SceneRepository в памяти
type SceneRepo struct {
	s *Store
}

func NewSceneRepo(s *Store) *SceneRepo {
	return &SceneRepo{s: s}
}

// insertNPCs сохраняет NPC сцены, назначая им ID. Вызывается под mu.
func (r *SceneRepo) insertNPCs(sceneID uint, npcs []entity.SceneNPC) {
	for i := range npcs {
		r.s.nextSceneNPCs++
		npcs[i].ID = r.s.nextSceneNPCs
		npcs[i].SceneID = sceneID
		stored := npcs[i]
		stored.Character = nil
		stored.Injuries = append(pq.StringArray{}, npcs[i].Injuries...)
		r.s.npcs[stored.ID] = stored
	}
}

// load собирает сцену с NPC и их персонажами, как Preload в GORM. Вызывается под mu.
func (r *SceneRepo) load(scene entity.Scene) entity.Scene {
	scene.NPCs = nil
	for _, npc := range r.s.npcs {
		if npc.SceneID != scene.ID {
			continue
		}
		npc.Injuries = append(pq.StringArray{}, npc.Injuries...)
		if c, ok := r.s.characters[npc.CharacterID]; ok {
			c := c
			npc.Character = &c
		}
		scene.NPCs = append(scene.NPCs, npc)
	}
	sort.Slice(scene.NPCs, func(i, j int) bool { return scene.NPCs[i].ID < scene.NPCs[j].ID })
	scene.RewardItems = append(pq.StringArray{}, scene.RewardItems...)
	return scene
}

func (r *SceneRepo) deleteNPCs(sceneID uint) {
	for id, npc := range r.s.npcs {
		if npc.SceneID == sceneID {
			delete(r.s.npcs, id)
		}
	}
}

func (r *SceneRepo) Create(scene *entity.Scene) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSceneID++
	now := time.Now()
	scene.ID = r.s.nextSceneID
	scene.CreatedAt = now
	scene.UpdatedAt = now
	r.insertNPCs(scene.ID, scene.NPCs)

	stored := *scene
	stored.NPCs = nil
	r.s.scenes[scene.ID] = stored
	return nil
}

func (r *SceneRepo) GetByID(userID, id uint) (*entity.Scene, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	scene, ok := r.s.scenes[id]
	if !ok || scene.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	loaded := r.load(scene)
	return &loaded, nil
}

func (r *SceneRepo) ListByUser(userID uint) ([]entity.Scene, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Scene
	for _, scene := range r.s.scenes {
		if scene.UserID == userID {
			out = append(out, r.load(scene))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SceneRepo) Update(scene *entity.Scene) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.scenes[scene.ID]
	if !ok || existing.UserID != scene.UserID {
		return apperrors.ErrNotFound
	}
	r.deleteNPCs(scene.ID)
	r.insertNPCs(scene.ID, scene.NPCs)

	stored := *scene
	stored.NPCs = nil
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	r.s.scenes[scene.ID] = stored
	return nil
}

func (r *SceneRepo) Delete(userID, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	scene, ok := r.s.scenes[id]
	if !ok || scene.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(r.s.scenes, id)
	r.deleteNPCs(id)
	return nil
}

func (r *SceneRepo) AddNPC(npc *entity.SceneNPC) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.scenes[npc.SceneID]; !ok {
		return apperrors.ErrNotFound
	}
	npcs := []entity.SceneNPC{*npc}
	r.insertNPCs(npc.SceneID, npcs)
	npc.ID = npcs[0].ID
	return nil
}

func (r *SceneRepo) AddNPCInjury(sceneID, npcID uint, injury string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	npc, ok := r.s.npcs[npcID]
	if !ok || npc.SceneID != sceneID || npc.HasInjury(injury) {
		return false, nil
	}
	npc.Injuries = append(append(pq.StringArray{}, npc.Injuries...), injury)
	r.s.npcs[npcID] = npc
	return true, nil
}
