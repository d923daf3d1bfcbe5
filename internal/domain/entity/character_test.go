package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacter_InvalidStats(t *testing.T) {
	t.Run("все в диапазоне", func(t *testing.T) {
		c := &Character{Name: "Jackie", IntStat: 0, BodyStat: 10, EmpStat: 5}
		assert.Empty(t, c.InvalidStats())
	})

	t.Run("выход за границы", func(t *testing.T) {
		c := &Character{Name: "Adam", BodyStat: 11, LckStat: -1}
		assert.Equal(t, []string{"lck_stat", "body_stat"}, c.InvalidStats())
	})
}

func TestCharacter_StatsOrder(t *testing.T) {
	c := &Character{IntStat: 1, LckStat: 2, TechStat: 3, ReaStat: 4, LuckStat: 5, ChaStat: 6, WillStat: 7, MoveStat: 8, BodyStat: 9, EmpStat: 10}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, c.Stats())
	assert.Len(t, StatNames, len(c.Stats()), "Имена и значения характеристик должны совпадать по длине")
}
