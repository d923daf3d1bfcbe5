package dto

import "github.com/yourusername/redweb-api/internal/domain/entity"

// CharacterRequest - данные персонажа от клиента
type CharacterRequest struct {
	Name     string `json:"name" binding:"required"`
	IntStat  int    `json:"int_stat"`
	LckStat  int    `json:"lck_stat"`
	TechStat int    `json:"tech_stat"`
	ReaStat  int    `json:"rea_stat"`
	LuckStat int    `json:"luck_stat"`
	ChaStat  int    `json:"cha_stat"`
	WillStat int    `json:"will_stat"`
	MoveStat int    `json:"move_stat"`
	BodyStat int    `json:"body_stat"`
	EmpStat  int    `json:"emp_stat"`
}

// ToEntity преобразует запрос в сущность без владельца и ID
func (r CharacterRequest) ToEntity() *entity.Character {
	return &entity.Character{
		Name:     r.Name,
		IntStat:  r.IntStat,
		LckStat:  r.LckStat,
		TechStat: r.TechStat,
		ReaStat:  r.ReaStat,
		LuckStat: r.LuckStat,
		ChaStat:  r.ChaStat,
		WillStat: r.WillStat,
		MoveStat: r.MoveStat,
		BodyStat: r.BodyStat,
		EmpStat:  r.EmpStat,
	}
}
