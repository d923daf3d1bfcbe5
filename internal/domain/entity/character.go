package entity

import "time"

const (
	MinStatValue = 0
	MaxStatValue = 10
)

// Character - персонаж или NPC игрока
type Character struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"-"`
	Name     string `gorm:"size:100;not null" json:"name"`
	IntStat  int    `gorm:"not null;default:0" json:"int_stat"`
	LckStat  int    `gorm:"not null;default:0" json:"lck_stat"`
	TechStat int    `gorm:"not null;default:0" json:"tech_stat"`
	ReaStat  int    `gorm:"not null;default:0" json:"rea_stat"`
	LuckStat int    `gorm:"not null;default:0" json:"luck_stat"`
	ChaStat  int    `gorm:"not null;default:0" json:"cha_stat"`
	WillStat int    `gorm:"not null;default:0" json:"will_stat"`
	MoveStat int    `gorm:"not null;default:0" json:"move_stat"`
	BodyStat int    `gorm:"not null;default:0" json:"body_stat"`
	EmpStat  int    `gorm:"not null;default:0" json:"emp_stat"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Character) TableName() string {
	return "characters"
}

// StatNames задает порядок характеристик в экспорте и при валидации
var StatNames = []string{
	"int_stat", "lck_stat", "tech_stat", "rea_stat", "luck_stat",
	"cha_stat", "will_stat", "move_stat", "body_stat", "emp_stat",
}

// Stats возвращает значения характеристик в порядке StatNames
func (c *Character) Stats() []int {
	return []int{
		c.IntStat, c.LckStat, c.TechStat, c.ReaStat, c.LuckStat,
		c.ChaStat, c.WillStat, c.MoveStat, c.BodyStat, c.EmpStat,
	}
}

// InvalidStats возвращает имена характеристик вне диапазона 0..10
func (c *Character) InvalidStats() []string {
	var invalid []string
	for i, v := range c.Stats() {
		if v < MinStatValue || v > MaxStatValue {
			invalid = append(invalid, StatNames[i])
		}
	}
	return invalid
}
