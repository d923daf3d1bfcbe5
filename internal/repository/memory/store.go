// Package memory содержит реализации репозиториев в памяти процесса.
// Используется в режиме database.driver=memory и в тестах обработчиков.
package memory

import (
	"sync"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

// Store - общее хранилище всех таблиц под одной блокировкой,
// чтобы каскадное удаление и проверки владельца были согласованы.
type Store struct {
	mu sync.Mutex

	users         map[uint]entity.User
	codes         map[string]entity.VerificationCode
	characters    map[uint]entity.Character
	scenes        map[uint]entity.Scene
	npcs          map[uint]entity.SceneNPC
	nextUserID    uint
	nextCharID    uint
	nextSceneID   uint
	nextSceneNPCs uint
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uint]entity.User),
		codes:      make(map[string]entity.VerificationCode),
		characters: make(map[uint]entity.Character),
		scenes:     make(map[uint]entity.Scene),
		npcs:       make(map[uint]entity.SceneNPC),
	}
}
