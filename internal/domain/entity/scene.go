package entity

import (
	"time"

	"github.com/lib/pq"
)

// Scene - игровая сцена мастера с набором NPC и наградами
type Scene struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"-"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text;not null;default:''" json:"description"`
	NPCs        []SceneNPC     `gorm:"foreignKey:SceneID;constraint:OnDelete:CASCADE" json:"npcs"`
	RewardItems pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"reward_items"`
	RewardXP    int            `gorm:"not null;default:0" json:"reward_xp"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Scene) TableName() string {
	return "scenes"
}

// SceneNPC связывает персонажа со сценой и хранит его травмы
type SceneNPC struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SceneID     uint           `gorm:"not null;index" json:"scene_id"`
	CharacterID uint           `gorm:"not null;index" json:"character_id"`
	Character   *Character     `gorm:"foreignKey:CharacterID" json:"character,omitempty"`
	Injuries    pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"injuries"`
}

func (SceneNPC) TableName() string {
	return "scene_npcs"
}

// HasCharacter сообщает, участвует ли персонаж в сцене
func (s *Scene) HasCharacter(characterID uint) bool {
	for _, npc := range s.NPCs {
		if npc.CharacterID == characterID {
			return true
		}
	}
	return false
}

// HasInjury сообщает, есть ли у NPC такая травма
func (n *SceneNPC) HasInjury(injury string) bool {
	for _, existing := range n.Injuries {
		if existing == injury {
			return true
		}
	}
	return false
}
