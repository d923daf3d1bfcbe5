package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/domain/repository"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

// SceneNPCInput - NPC, добавляемый в сцену
type SceneNPCInput struct {
	CharacterID uint
	Injuries    []string
}

// SceneInput - данные для создания или замены сцены
type SceneInput struct {
	Title       string
	Description string
	NPCs        []SceneNPCInput
	RewardItems []string
	RewardXP    int
}

// SceneService управляет сценами и назначением NPC
type SceneService struct {
	scenes     repository.SceneRepository
	characters repository.CharacterRepository
}

func NewSceneService(scenes repository.SceneRepository, characters repository.CharacterRepository) (*SceneService, error) {
	if scenes == nil || characters == nil {
		return nil, fmt.Errorf("scene and character repositories are required")
	}
	return &SceneService{scenes: scenes, characters: characters}, nil
}

// cleanList обрезает пробелы и выбрасывает пустые строки и дубликаты
func cleanList(items []string) pq.StringArray {
	out := pq.StringArray{}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// buildScene проверяет ввод и владение персонажами
func (s *SceneService) buildScene(userID uint, input SceneInput) (*entity.Scene, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if len(input.NPCs) == 0 {
		return nil, fmt.Errorf("%w: at least one npc is required", apperrors.ErrValidation)
	}
	if input.RewardXP < 0 {
		return nil, fmt.Errorf("%w: reward xp must not be negative", apperrors.ErrValidation)
	}

	ids := make([]uint, 0, len(input.NPCs))
	seen := make(map[uint]bool, len(input.NPCs))
	npcs := make([]entity.SceneNPC, 0, len(input.NPCs))
	for _, npc := range input.NPCs {
		if npc.CharacterID == 0 {
			return nil, fmt.Errorf("%w: npc character is required", apperrors.ErrValidation)
		}
		if seen[npc.CharacterID] {
			return nil, fmt.Errorf("%w: character %d is listed twice", apperrors.ErrValidation, npc.CharacterID)
		}
		seen[npc.CharacterID] = true
		ids = append(ids, npc.CharacterID)
		npcs = append(npcs, entity.SceneNPC{CharacterID: npc.CharacterID, Injuries: cleanList(npc.Injuries)})
	}

	owned, err := s.characters.CountOwned(userID, ids)
	if err != nil {
		return nil, err
	}
	if owned != int64(len(ids)) {
		return nil, fmt.Errorf("%w: unknown character in npc list", apperrors.ErrValidation)
	}

	return &entity.Scene{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		NPCs:        npcs,
		RewardItems: cleanList(input.RewardItems),
		RewardXP:    input.RewardXP,
	}, nil
}

func (s *SceneService) List(userID uint) ([]entity.Scene, error) {
	return s.scenes.ListByUser(userID)
}

func (s *SceneService) Get(userID, id uint) (*entity.Scene, error) {
	return s.scenes.GetByID(userID, id)
}

func (s *SceneService) Create(userID uint, input SceneInput) (*entity.Scene, error) {
	scene, err := s.buildScene(userID, input)
	if err != nil {
		return nil, err
	}
	if err := s.scenes.Create(scene); err != nil {
		return nil, err
	}
	return s.scenes.GetByID(userID, scene.ID)
}

// Update заменяет поля сцены и весь список NPC
func (s *SceneService) Update(userID, id uint, input SceneInput) (*entity.Scene, error) {
	scene, err := s.buildScene(userID, input)
	if err != nil {
		return nil, err
	}
	scene.ID = id
	if err := s.scenes.Update(scene); err != nil {
		return nil, err
	}
	return s.scenes.GetByID(userID, id)
}

func (s *SceneService) Delete(userID, id uint) error {
	return s.scenes.Delete(userID, id)
}

// AssignNPC добавляет персонажа в сцену. Повторное назначение ничего не меняет.
func (s *SceneService) AssignNPC(userID, sceneID, characterID uint, injuries []string) (*entity.Scene, error) {
	scene, err := s.scenes.GetByID(userID, sceneID)
	if err != nil {
		return nil, err
	}
	if characterID == 0 {
		return nil, fmt.Errorf("%w: character_id is required", apperrors.ErrValidation)
	}
	if _, err := s.characters.GetByID(userID, characterID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown character", apperrors.ErrValidation)
		}
		return nil, err
	}
	if scene.HasCharacter(characterID) {
		return scene, nil
	}

	npc := &entity.SceneNPC{SceneID: sceneID, CharacterID: characterID, Injuries: cleanList(injuries)}
	if err := s.scenes.AddNPC(npc); err != nil {
		return nil, err
	}
	return s.scenes.GetByID(userID, sceneID)
}

// AddInjury добавляет травму NPC сцены. Дубликаты игнорируются.
func (s *SceneService) AddInjury(userID, sceneID, npcID uint, injury string) (*entity.Scene, error) {
	injury = strings.TrimSpace(injury)
	if injury == "" {
		return nil, fmt.Errorf("%w: injury is required", apperrors.ErrValidation)
	}

	scene, err := s.scenes.GetByID(userID, sceneID)
	if err != nil {
		return nil, err
	}

	var target *entity.SceneNPC
	for i := range scene.NPCs {
		if scene.NPCs[i].ID == npcID {
			target = &scene.NPCs[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: npc not found in scene", apperrors.ErrNotFound)
	}
	if target.HasInjury(injury) {
		return scene, nil
	}

	// Проверка дубликата повторяется в самом UPDATE
	if _, err := s.scenes.AddNPCInjury(sceneID, npcID, injury); err != nil {
		return nil, err
	}
	return s.scenes.GetByID(userID, sceneID)
}
