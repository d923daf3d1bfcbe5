package helper

import (
	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/handler/dto"
	"github.com/yourusername/redweb-api/internal/service"
)

// nonNil возвращает пустой срез вместо nil, чтобы в JSON был [] а не null
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// ConvertScene преобразует сцену в ответ API
func ConvertScene(scene *entity.Scene) dto.SceneResponse {
	npcs := make([]dto.SceneNPCResponse, len(scene.NPCs))
	for i, npc := range scene.NPCs {
		name := ""
		if npc.Character != nil {
			name = npc.Character.Name
		}
		npcs[i] = dto.SceneNPCResponse{
			ID:          npc.ID,
			CharacterID: npc.CharacterID,
			Name:        name,
			Injuries:    nonNil(npc.Injuries),
		}
	}
	return dto.SceneResponse{
		ID:          scene.ID,
		Title:       scene.Title,
		Description: scene.Description,
		NPCs:        npcs,
		Rewards:     dto.RewardsDTO{Items: nonNil(scene.RewardItems), XP: scene.RewardXP},
		CreatedAt:   scene.CreatedAt,
		UpdatedAt:   scene.UpdatedAt,
	}
}

// ConvertScenes преобразует список сцен
func ConvertScenes(scenes []entity.Scene) []dto.SceneResponse {
	out := make([]dto.SceneResponse, len(scenes))
	for i := range scenes {
		out[i] = ConvertScene(&scenes[i])
	}
	return out
}

// SceneInput преобразует запрос в ввод сервиса
func SceneInput(req dto.SceneRequest) service.SceneInput {
	npcs := make([]service.SceneNPCInput, len(req.NPCs))
	for i, npc := range req.NPCs {
		npcs[i] = service.SceneNPCInput{CharacterID: npc.CharacterID, Injuries: npc.Injuries}
	}
	return service.SceneInput{
		Title:       req.Title,
		Description: req.Description,
		NPCs:        npcs,
		RewardItems: req.Rewards.Items,
		RewardXP:    req.Rewards.XP,
	}
}

// ConvertUser возвращает публичные данные пользователя
func ConvertUser(user *entity.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email}
}

// ConvertProfile возвращает профиль пользователя
func ConvertProfile(user *entity.User) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	}
}
