package entity

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestScene_HasCharacter(t *testing.T) {
	scene := &Scene{NPCs: []SceneNPC{{CharacterID: 1}, {CharacterID: 3}}}

	assert.True(t, scene.HasCharacter(3))
	assert.False(t, scene.HasCharacter(2))
}

func TestSceneNPC_HasInjury(t *testing.T) {
	npc := &SceneNPC{Injuries: pq.StringArray{"Сломанная рука"}}

	assert.True(t, npc.HasInjury("Сломанная рука"))
	assert.False(t, npc.HasInjury("Сотрясение"))
}
